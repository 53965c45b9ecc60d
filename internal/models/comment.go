package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	PostID     string    `gorm:"type:uuid;index" json:"post_id"`
	ParentID   *string   `gorm:"type:uuid" json:"parent_id,omitempty"` // nil means root-level
	AuthorID   string    `gorm:"type:uuid" json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `gorm:"not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type CreateCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id,omitempty"`
}
