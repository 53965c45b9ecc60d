package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a community feed entry. Likes and Dislikes carry user ids and are
// derived from Reaction rows; a user id appears in at most one of the two.
type Post struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID      string    `gorm:"type:uuid;index" json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorEmail   string    `json:"author_email"`
	Content       string    `gorm:"not null" json:"content"`
	Likes         []string  `gorm:"-" json:"likes"`
	Dislikes      []string  `gorm:"-" json:"dislikes"`
	CommentsCount int       `gorm:"-" json:"comments_count"`
	Comments      []Comment `gorm:"-" json:"comments,omitempty"` // present only on detail responses
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type CreatePostRequest struct {
	Content string `json:"content" binding:"required"`
}

// FeedPage is one server window of the paginated feed.
type FeedPage struct {
	Items []Post `json:"items"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int64  `json:"total"`
}
