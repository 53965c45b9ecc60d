package models

import "time"

// Reaction values.
const (
	ReactionLike    = 1
	ReactionDislike = -1
)

// Reaction model - tracks individual user likes/dislikes on posts.
// At most one row per (user, post); the value decides which set the user
// lands in when the post is serialized.
type Reaction struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    string    `gorm:"type:uuid;uniqueIndex:idx_user_post" json:"post_id"`
	Value     int       `json:"value"` // ReactionLike or ReactionDislike
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
