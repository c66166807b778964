package models

import (
	"time"
)

// Comment represents a reply to a post. The feed only consumes the
// denormalized comment_count, but the table exists so the count and the
// comments change channel are backed by real rows.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Username   string    `gorm:"not null" json:"username"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ParentID   *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
