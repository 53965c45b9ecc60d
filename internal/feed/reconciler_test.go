package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephealth-lab/community/internal/models"
)

func TestOpenDetailShowsSummaryThenFullPost(t *testing.T) {
	srv := newFakeServer("U")
	srv.setPages([]models.Post{srv.addPost("P", time.Now())})
	eng := setupEngine(t, srv, "U")
	ctx := context.Background()

	// Server grows a comment the summary does not carry yet.
	_, err := srv.AddComment(ctx, "P", "hidden in summary", nil)
	require.NoError(t, err)

	placeholder := eng.OpenDetail("P")
	require.NotNil(t, placeholder)
	assert.Empty(t, placeholder.Comments)

	detail, loading := eng.Detail()
	require.NotNil(t, detail)
	assert.True(t, loading)

	applied, err := eng.ResolveDetail(ctx, "P")
	require.NoError(t, err)
	assert.True(t, applied)

	detail, loading = eng.Detail()
	require.NotNil(t, detail)
	assert.False(t, loading)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "hidden in summary", detail.Comments[0].Content)
}

func TestDeepLinkDetailHasNoPlaceholder(t *testing.T) {
	srv := newFakeServer("U")
	srv.setPages(nil)
	srv.addPost("HIDDEN", time.Now())
	eng := NewEngine(srv, "U", 10)

	placeholder := eng.OpenDetail("HIDDEN")
	assert.Nil(t, placeholder)

	_, loading := eng.Detail()
	assert.True(t, loading)

	applied, err := eng.ResolveDetail(context.Background(), "HIDDEN")
	require.NoError(t, err)
	assert.True(t, applied)

	detail, _ := eng.Detail()
	require.NotNil(t, detail)
	assert.Equal(t, "HIDDEN", detail.ID)
}

func TestCloseDiscardsLateResponse(t *testing.T) {
	srv := newFakeServer("U")
	srv.setPages([]models.Post{srv.addPost("P", time.Now())})
	eng := setupEngine(t, srv, "U")

	eng.OpenDetail("P")
	eng.CloseDetail()

	applied, err := eng.ResolveDetail(context.Background(), "P")
	require.NoError(t, err)
	assert.False(t, applied)

	detail, loading := eng.Detail()
	assert.Nil(t, detail)
	assert.False(t, loading)
}

func TestSwitchingPostsDiscardsPreviousResponse(t *testing.T) {
	srv := newFakeServer("U")
	now := time.Now()
	srv.setPages([]models.Post{srv.addPost("A", now), srv.addPost("B", now)})
	eng := setupEngine(t, srv, "U")
	ctx := context.Background()

	eng.OpenDetail("A")
	eng.OpenDetail("B") // user clicked through before A resolved

	applied, err := eng.ResolveDetail(ctx, "A")
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = eng.ResolveDetail(ctx, "B")
	require.NoError(t, err)
	assert.True(t, applied)

	detail, _ := eng.Detail()
	require.NotNil(t, detail)
	assert.Equal(t, "B", detail.ID)
}

func TestReplaceIfOpenKeepsLoadedComments(t *testing.T) {
	srv := newFakeServer("U")
	srv.setPages([]models.Post{srv.addPost("P", time.Now())})
	eng := setupEngine(t, srv, "U")
	ctx := context.Background()

	require.NoError(t, eng.AddComment(ctx, "P", "keep me", nil))

	eng.OpenDetail("P")
	_, err := eng.ResolveDetail(ctx, "P")
	require.NoError(t, err)

	// A summary-shaped replacement (no comments) must not wipe the loaded
	// comment list.
	summary, _, ok := eng.acc.Get("P")
	require.True(t, ok)
	summary.Comments = nil
	eng.detail.ReplaceIfOpen(summary)

	detail, _ := eng.Detail()
	require.NotNil(t, detail)
	assert.Len(t, detail.Comments, 1)
}
