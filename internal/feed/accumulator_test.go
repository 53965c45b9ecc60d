package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephealth-lab/community/internal/models"
)

func TestAccumulatorOverlappingPagesDeduplicate(t *testing.T) {
	srv := newFakeServer("u1")
	now := time.Now()
	a := srv.addPost("A", now)
	b := srv.addPost("B", now.Add(-time.Minute))
	c := srv.addPost("C", now.Add(-2*time.Minute))
	srv.setPages(
		[]models.Post{a, b},
		[]models.Post{b, c}, // B repeats across the page boundary
	)

	acc := NewAccumulator(srv, 2)
	ctx := context.Background()

	loaded, err := acc.LoadNext(ctx)
	require.NoError(t, err)
	require.True(t, loaded)
	loaded, err = acc.LoadNext(ctx)
	require.NoError(t, err)
	require.True(t, loaded)

	assert.Equal(t, []string{"A", "B", "C"}, postIDs(acc.Posts()))
	assert.False(t, acc.HasMore())
}

func TestAccumulatorNoOpWhenExhausted(t *testing.T) {
	srv := newFakeServer("u1")
	srv.setPages([]models.Post{srv.addPost("A", time.Now())})

	acc := NewAccumulator(srv, 10)
	ctx := context.Background()

	_, err := acc.LoadNext(ctx)
	require.NoError(t, err)
	require.False(t, acc.HasMore())

	loaded, err := acc.LoadNext(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, 1, srv.feedCalls)
}

func TestAccumulatorFailedPageIsRetryable(t *testing.T) {
	srv := newFakeServer("u1")
	srv.setPages([]models.Post{srv.addPost("A", time.Now())})
	srv.feedErr = errors.New("boom")

	acc := NewAccumulator(srv, 10)
	ctx := context.Background()

	_, err := acc.LoadNext(ctx)
	require.Error(t, err)
	assert.True(t, acc.HasMore())
	assert.Zero(t, acc.Len())

	// Same page again once the transient failure clears.
	srv.feedErr = nil
	loaded, err := acc.LoadNext(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, []string{"A"}, postIDs(acc.Posts()))
}

func TestAccumulatorResetDiscardsStalePage(t *testing.T) {
	srv := newFakeServer("u1")
	srv.setPages([]models.Post{srv.addPost("A", time.Now())})

	acc := NewAccumulator(srv, 10)
	ctx := context.Background()

	// Reset lands while the first page request is on the wire; its result
	// belongs to the old filter state and must be dropped.
	srv.beforeFeed = func() {
		srv.beforeFeed = nil
		acc.Reset(SortPopular, FilterMine)
	}

	loaded, err := acc.LoadNext(ctx)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Zero(t, acc.Len())
	assert.True(t, acc.HasMore())

	// The next load starts from page one under the new modes.
	loaded, err = acc.LoadNext(ctx)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, []string{"A"}, postIDs(acc.Posts()))
	assert.Equal(t, SortPopular, srv.lastSort)
	assert.Equal(t, FilterMine, srv.lastFilter)
}

func TestAccumulatorPrependLocal(t *testing.T) {
	srv := newFakeServer("u1")
	now := time.Now()
	srv.setPages([]models.Post{srv.addPost("A", now)})

	acc := NewAccumulator(srv, 10)
	_, err := acc.LoadNext(context.Background())
	require.NoError(t, err)

	mine := srv.addPost("MINE", now.Add(time.Minute))
	acc.PrependLocal(mine)

	assert.Equal(t, []string{"MINE", "A"}, postIDs(acc.Posts()))

	// A second prepend of the same id is ignored.
	acc.PrependLocal(mine)
	assert.Equal(t, 2, acc.Len())
}

func TestAccumulatorRevisionGuard(t *testing.T) {
	srv := newFakeServer("u1")
	p := srv.addPost("A", time.Now())
	srv.setPages([]models.Post{p})

	acc := NewAccumulator(srv, 10)
	_, err := acc.LoadNext(context.Background())
	require.NoError(t, err)

	rev1, ok := acc.Mutate("A", func(p *models.Post) { p.Likes = []string{"u1"} })
	require.True(t, ok)
	rev2, ok := acc.Mutate("A", func(p *models.Post) { p.Likes = nil })
	require.True(t, ok)

	server := p
	server.Likes = []string{"u1"}

	// The response issued against rev1 was superseded by rev2.
	assert.False(t, acc.ApplyIfCurrent("A", rev1, server))
	assert.True(t, acc.ApplyIfCurrent("A", rev2, server))

	got, _, ok := acc.Get("A")
	require.True(t, ok)
	assert.Equal(t, []string{"u1"}, got.Likes)
}

func TestAccumulatorReplaceBumpsRevision(t *testing.T) {
	srv := newFakeServer("u1")
	p := srv.addPost("A", time.Now())
	srv.setPages([]models.Post{p})

	acc := NewAccumulator(srv, 10)
	_, err := acc.LoadNext(context.Background())
	require.NoError(t, err)

	rev, ok := acc.Touch("A")
	require.True(t, ok)
	require.True(t, acc.Replace("A", p))

	// The resync overwrite invalidates the older in-flight response.
	assert.False(t, acc.ApplyIfCurrent("A", rev, p))
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
