package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deephealth-lab/community/internal/models"
)

// fakeServer is an in-memory Client with real toggle/comment semantics,
// canned feed pages and injectable failures.
type fakeServer struct {
	mu    sync.Mutex
	pages []models.FeedPage
	posts map[string]models.Post

	userID string

	feedErr    error
	detailErr  error
	likeErr    error
	dislikeErr error
	commentErr error

	feedCalls   int
	detailCalls int

	lastSort   SortMode
	lastFilter FilterMode

	// called mid-request, before the response is produced; lets tests
	// interleave a competing mutation or reset.
	beforeToggle func()
	beforeFeed   func()
}

func newFakeServer(userID string) *fakeServer {
	return &fakeServer{posts: make(map[string]models.Post), userID: userID}
}

func (f *fakeServer) addPost(id string, created time.Time) models.Post {
	p := models.Post{
		ID:         id,
		AuthorID:   uuid.NewString(),
		AuthorName: "Author " + id,
		Content:    "post " + id,
		Likes:      []string{},
		Dislikes:   []string{},
		CreatedAt:  created,
	}
	f.posts[id] = p
	return p
}

func (f *fakeServer) setPages(pages ...[]models.Post) {
	f.pages = f.pages[:0]
	for i, items := range pages {
		f.pages = append(f.pages, models.FeedPage{
			Items: items,
			Page:  i + 1,
			Pages: len(pages),
		})
	}
}

func (f *fakeServer) FetchFeed(ctx context.Context, page, pageSize int, sort SortMode, filter FilterMode) (models.FeedPage, error) {
	if hook := f.beforeFeed; hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedCalls++
	f.lastSort, f.lastFilter = sort, filter
	if f.feedErr != nil {
		return models.FeedPage{}, f.feedErr
	}
	if page < 1 || page > len(f.pages) {
		return models.FeedPage{Page: page, Pages: len(f.pages)}, nil
	}
	fp := f.pages[page-1]
	fp.Pages = len(f.pages)
	return fp, nil
}

func (f *fakeServer) FetchPostDetail(ctx context.Context, postID string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	p, ok := f.posts[postID]
	if !ok {
		return nil, context.Canceled
	}
	cp := clonePost(p)
	return &cp, nil
}

func (f *fakeServer) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Post{
		ID:        uuid.NewString(),
		AuthorID:  f.userID,
		Content:   content,
		Likes:     []string{},
		Dislikes:  []string{},
		CreatedAt: time.Now(),
	}
	f.posts[p.ID] = p
	cp := clonePost(p)
	return &cp, nil
}

func (f *fakeServer) ToggleLike(ctx context.Context, postID string) (*models.Post, error) {
	return f.toggle(postID, true, f.likeErr)
}

func (f *fakeServer) ToggleDislike(ctx context.Context, postID string) (*models.Post, error) {
	return f.toggle(postID, false, f.dislikeErr)
}

func (f *fakeServer) toggle(postID string, like bool, injected error) (*models.Post, error) {
	if hook := f.beforeToggle; hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if injected != nil {
		return nil, injected
	}
	p := f.posts[postID]
	applyToggle(&p, f.userID, like)
	f.posts[postID] = p
	cp := clonePost(p)
	return &cp, nil
}

func (f *fakeServer) AddComment(ctx context.Context, postID, content string, parentID *string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	p := f.posts[postID]
	p.Comments = append(p.Comments, models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		ParentID:  parentID,
		AuthorID:  f.userID,
		Content:   content,
		CreatedAt: time.Now(),
	})
	p.CommentsCount = len(p.Comments)
	f.posts[postID] = p
	cp := clonePost(p)
	return &cp, nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]string(nil), p.Likes...)
	p.Dislikes = append([]string(nil), p.Dislikes...)
	p.Comments = append([]models.Comment(nil), p.Comments...)
	return p
}
