package models

import (
	"time"
)

// ReactionKind distinguishes the two uniqueness-constrained reaction tables.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionRetweet ReactionKind = "retweet"
)

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique; rows are hard-deleted
// on toggle-off.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Retweet represents a user's retweet of a post, keyed like Like.
type Retweet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_retweet_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_retweet_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
