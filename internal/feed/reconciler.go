package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/deephealth-lab/community/internal/models"
)

// Reconciler presents a post detail view: the cached feed summary shows
// instantly while the full post (complete comment list) loads behind it.
// Results are keyed by the post id that was open when the fetch was issued;
// closing the view, or opening another post, turns a late response into a
// no-op.
type Reconciler struct {
	mu      sync.Mutex
	client  Client
	store   *Accumulator
	openID  string
	detail  *models.Post
	loading bool
}

func NewReconciler(client Client, store *Accumulator) *Reconciler {
	return &Reconciler{client: client, store: store}
}

// Open marks postID as the current detail target and returns the cached
// summary as a placeholder. The placeholder is nil when the post has not
// been paginated in (a deep link); callers show a loading state until
// Resolve lands.
func (r *Reconciler) Open(postID string) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openID = postID
	r.loading = true
	r.detail = nil
	if p, _, ok := r.store.Get(postID); ok {
		r.detail = &p
	}
	return r.detail
}

// Resolve fetches the full post and installs it if the view is still open
// on the same id. It reports whether the result was applied.
func (r *Reconciler) Resolve(ctx context.Context, postID string) (bool, error) {
	full, err := r.client.FetchPostDetail(ctx, postID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openID != postID {
		// View closed or moved on; discard.
		return false, nil
	}
	r.loading = false
	if err != nil {
		return false, fmt.Errorf("load post detail %s: %w", postID, err)
	}
	r.detail = full
	return true, nil
}

// Close clears the detail target. Any in-flight Resolve for the previously
// open post will be discarded.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openID = ""
	r.detail = nil
	r.loading = false
}

// Detail returns the currently rendered post (which may still be the
// summary placeholder) and whether the full fetch is outstanding.
func (r *Reconciler) Detail() (*models.Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.detail == nil {
		return nil, r.loading
	}
	p := *r.detail
	return &p, r.loading
}

// OpenID returns the id of the open post, or "" when the view is closed.
func (r *Reconciler) OpenID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openID
}

// ReplaceIfOpen overwrites the rendered detail when it targets this post.
// Used by the mutation coordinator to keep the open view in step with the
// feed list.
func (r *Reconciler) ReplaceIfOpen(p models.Post) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openID != p.ID {
		return false
	}
	// Keep the fully loaded comment list if the replacement is only a
	// summary; count and reactions still refresh.
	if len(p.Comments) == 0 && r.detail != nil && len(r.detail.Comments) > 0 {
		p.Comments = r.detail.Comments
	}
	r.detail = &p
	return true
}
