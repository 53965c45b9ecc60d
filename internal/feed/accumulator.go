package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/deephealth-lab/community/internal/models"
)

// Accumulator owns the append-only, duplicate-free post list built from
// consecutive feed pages. It is the single writer for feed state; network
// completions land on other goroutines, so every transition is a locked
// section.
type Accumulator struct {
	mu       sync.Mutex
	client   Client
	pageSize int

	sort   SortMode
	filter FilterMode

	posts []*models.Post
	seen  map[string]bool
	revs  map[string]uint64

	page       int
	totalPages int
	hasMore    bool
	inFlight   bool

	// epoch changes on every Reset; a page fetched under an older epoch is
	// discarded instead of leaking into the new filter's list.
	epoch uint64
}

func NewAccumulator(client Client, pageSize int) *Accumulator {
	a := &Accumulator{client: client, pageSize: pageSize}
	a.resetLocked(SortLatest, FilterAll)
	return a
}

func (a *Accumulator) resetLocked(sort SortMode, filter FilterMode) {
	a.sort = sort
	a.filter = filter
	a.posts = nil
	a.seen = make(map[string]bool)
	a.revs = make(map[string]uint64)
	a.page = 0
	a.totalPages = 0
	a.hasMore = true
	a.epoch++
}

// Reset clears all accumulated state and rewinds the cursor to the first
// page under the given sort and filter.
func (a *Accumulator) Reset(sort SortMode, filter FilterMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked(sort, filter)
}

// LoadNext fetches the next feed page and appends the posts not already
// present. It is a no-op while a load is in flight or once the server has
// reported the last page. A failed fetch leaves the cursor untouched so the
// same page can be retried.
//
// The returned bool reports whether a page was actually requested.
func (a *Accumulator) LoadNext(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if a.inFlight || !a.hasMore {
		a.mu.Unlock()
		return false, nil
	}
	a.inFlight = true
	page := a.page + 1
	sortMode, filterMode, size, epoch := a.sort, a.filter, a.pageSize, a.epoch
	a.mu.Unlock()

	fp, err := a.client.FetchFeed(ctx, page, size, sortMode, filterMode)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false

	if err != nil {
		return false, fmt.Errorf("load feed page %d: %w", page, err)
	}
	if epoch != a.epoch {
		// Reset happened while the request was out; the page belongs to the
		// old filter state.
		return false, nil
	}

	for i := range fp.Items {
		p := fp.Items[i]
		if a.seen[p.ID] {
			continue
		}
		a.seen[p.ID] = true
		a.posts = append(a.posts, &p)
	}
	a.page = page
	a.totalPages = fp.Pages
	a.hasMore = page < fp.Pages
	return true, nil
}

// PrependLocal puts a freshly created post at the head of the list without
// touching the pagination cursor.
func (a *Accumulator) PrependLocal(post models.Post) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.seen[post.ID] {
		return
	}
	a.seen[post.ID] = true
	a.posts = append([]*models.Post{&post}, a.posts...)
}

// Posts returns a snapshot copy of the accumulated list.
func (a *Accumulator) Posts() []models.Post {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Post, len(a.posts))
	for i, p := range a.posts {
		out[i] = *p
	}
	return out
}

// Get returns a copy of the post plus its current local revision.
func (a *Accumulator) Get(postID string) (models.Post, uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.posts {
		if p.ID == postID {
			return *p, a.revs[postID], true
		}
	}
	return models.Post{}, 0, false
}

// Mutate applies an optimistic edit to the stored post and bumps its
// revision. The returned revision identifies the state the caller's server
// request was issued against.
func (a *Accumulator) Mutate(postID string, fn func(*models.Post)) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.posts {
		if p.ID == postID {
			fn(p)
			a.revs[postID]++
			return a.revs[postID], true
		}
	}
	return 0, false
}

// Touch bumps a post's revision without editing it, marking any older
// in-flight server response as stale.
func (a *Accumulator) Touch(postID string) (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.seen[postID] {
		return 0, false
	}
	a.revs[postID]++
	return a.revs[postID], true
}

// ApplyIfCurrent overwrites the stored post with the server's version, but
// only when no newer optimistic edit happened since rev was issued. It
// reports whether the write was applied.
func (a *Accumulator) ApplyIfCurrent(postID string, rev uint64, server models.Post) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.revs[postID] != rev {
		return false
	}
	return a.replaceLocked(postID, server)
}

// Replace unconditionally overwrites the stored post and bumps its revision
// so any response still in flight becomes stale. Unknown ids are ignored.
func (a *Accumulator) Replace(postID string, server models.Post) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.replaceLocked(postID, server) {
		return false
	}
	a.revs[postID]++
	return true
}

func (a *Accumulator) replaceLocked(postID string, server models.Post) bool {
	for i, p := range a.posts {
		if p.ID == postID {
			server.ID = p.ID
			a.posts[i] = &server
			return true
		}
	}
	return false
}

// HasMore reports whether the server still has pages beyond the cursor.
func (a *Accumulator) HasMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hasMore
}

// InFlight reports whether a page load is currently out.
func (a *Accumulator) InFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Len returns the number of accumulated posts.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.posts)
}

// Modes returns the active sort and filter.
func (a *Accumulator) Modes() (SortMode, FilterMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sort, a.filter
}
