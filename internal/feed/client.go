package feed

import (
	"context"

	"github.com/deephealth-lab/community/internal/models"
)

// SortMode selects the feed ordering.
type SortMode string

// FilterMode restricts which posts the feed returns.
type FilterMode string

const (
	SortLatest  SortMode = "latest"
	SortPopular SortMode = "popular"

	FilterAll  FilterMode = "all"
	FilterMine FilterMode = "mine"
)

// Client is the remote API boundary the engine is built on. Every mutation
// returns the full authoritative post; the engine treats that response as
// the only source of truth and overwrites its local copy wholesale.
type Client interface {
	FetchFeed(ctx context.Context, page, pageSize int, sort SortMode, filter FilterMode) (models.FeedPage, error)
	FetchPostDetail(ctx context.Context, postID string) (*models.Post, error)
	CreatePost(ctx context.Context, content string) (*models.Post, error)
	ToggleLike(ctx context.Context, postID string) (*models.Post, error)
	ToggleDislike(ctx context.Context, postID string) (*models.Post, error)
	AddComment(ctx context.Context, postID, content string, parentID *string) (*models.Post, error)
}
