package handlers

import (
	"github.com/deephealth-lab/community/internal/cache"
	"github.com/deephealth-lab/community/internal/database"
)

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	Community *CommunityHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db database.Service, feedCache *cache.FeedCache) *Handler {
	gormDB := db.GetDB()

	return &Handler{
		Auth:      NewAuthHandler(gormDB),
		Community: NewCommunityHandler(gormDB, feedCache),
	}
}
