package feed

import (
	"context"
	"strings"

	"github.com/deephealth-lab/community/internal/models"
)

// DefaultPageSize matches the page size the community dashboard requests.
const DefaultPageSize = 10

// Engine is the façade the UI talks to: the accumulated post list, per-post
// actions, the open/close detail pair and the load-more trigger. One engine
// serves one signed-in user.
type Engine struct {
	client Client
	userID string

	acc     *Accumulator
	detail  *Reconciler
	coord   *Coordinator
	trigger *Trigger
}

func NewEngine(client Client, userID string, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	acc := NewAccumulator(client, pageSize)
	detail := NewReconciler(client, acc)
	return &Engine{
		client:  client,
		userID:  userID,
		acc:     acc,
		detail:  detail,
		coord:   NewCoordinator(client, acc, detail, userID),
		trigger: NewTrigger(acc),
	}
}

// UserID returns the id the engine mutates on behalf of.
func (e *Engine) UserID() string { return e.userID }

// Posts returns a snapshot of the accumulated feed.
func (e *Engine) Posts() []models.Post { return e.acc.Posts() }

// HasMore reports whether more pages are available, for rendering the
// sentinel.
func (e *Engine) HasMore() bool { return e.acc.HasMore() }

// Loading reports whether a page load is in flight.
func (e *Engine) Loading() bool { return e.acc.InFlight() }

// Reset rewinds the feed to the first page under new sort/filter modes.
func (e *Engine) Reset(sort SortMode, filter FilterMode) { e.acc.Reset(sort, filter) }

// LoadMore is the sentinel callback.
func (e *Engine) LoadMore(ctx context.Context) (bool, error) {
	return e.trigger.SentinelVisible(ctx)
}

// CreatePost publishes a new post and prepends the server's copy to the
// head of the feed, independent of pagination state.
func (e *Engine) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	post, err := e.client.CreatePost(ctx, content)
	if err != nil {
		return nil, err
	}
	e.acc.PrependLocal(*post)
	return post, nil
}

// ToggleLike likes (or un-likes) a post for the engine's user.
func (e *Engine) ToggleLike(ctx context.Context, postID string) error {
	return e.coord.ToggleLike(ctx, postID)
}

// ToggleDislike dislikes (or un-dislikes) a post for the engine's user.
func (e *Engine) ToggleDislike(ctx context.Context, postID string) error {
	return e.coord.ToggleDislike(ctx, postID)
}

// AddComment comments on a post; parentID selects the comment being
// replied to, nil for a root comment.
func (e *Engine) AddComment(ctx context.Context, postID, content string, parentID *string) error {
	return e.coord.AddComment(ctx, postID, content, parentID)
}

// OpenDetail shows the cached summary for postID immediately and returns
// it; ResolveDetail fetches the full post behind it.
func (e *Engine) OpenDetail(postID string) *models.Post { return e.detail.Open(postID) }

// ResolveDetail completes the background detail fetch started by OpenDetail.
func (e *Engine) ResolveDetail(ctx context.Context, postID string) (bool, error) {
	return e.detail.Resolve(ctx, postID)
}

// CloseDetail dismisses the detail view; any in-flight resolve becomes a
// no-op.
func (e *Engine) CloseDetail() { e.detail.Close() }

// OpenDetailID returns the id of the open post, "" when no detail is open.
func (e *Engine) OpenDetailID() string { return e.detail.OpenID() }

// Detail returns the currently open post and whether its full fetch is
// still outstanding.
func (e *Engine) Detail() (*models.Post, bool) { return e.detail.Detail() }
