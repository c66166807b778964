package models

import (
	"time"
)

// Post types mirror what the composer can produce.
const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeGif   = "gif"
	PostTypeLink  = "link"
)

// Moderation status values. Only approved posts are visible in the feed.
const (
	PostStatusApproved = "approved"
	PostStatusPending  = "pending"
	PostStatusRejected = "rejected"
)

// Post represents a post in the AnimeZ feed.
//
// The author's username and avatar are denormalized onto the row, as are the
// reaction counters. Counters are maintained in the same transaction as their
// reaction rows so that like_count/retweet_count always equal the number of
// corresponding rows.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	Username   string `gorm:"not null" json:"username"`
	UserAvatar string `json:"user_avatar"`
	Content    string `gorm:"type:text;not null" json:"content"`
	PostType   string `gorm:"not null;default:text" json:"post_type"`
	MediaURL   string `json:"media_url"`
	LinkURL    string `json:"link_url"`
	LinkTitle  string `json:"link_title"`

	// Optional related-anime metadata attached at authoring time.
	AnimeID    string `json:"anime_id"`
	AnimeTitle string `json:"anime_title"`
	AnimeImage string `json:"anime_image"`

	LikeCount    int `gorm:"not null;default:0" json:"like_count"`
	RetweetCount int `gorm:"not null;default:0" json:"retweet_count"`
	CommentCount int `gorm:"not null;default:0" json:"comment_count"`

	Status         string `gorm:"not null;default:approved;index" json:"status"`
	OriginalPostID *uint  `gorm:"index" json:"original_post_id,omitempty"`

	// Viewer annotations, merged in by the feed synchronizer; never persisted.
	IsLiked     bool `gorm:"-" json:"is_liked"`
	IsRetweeted bool `gorm:"-" json:"is_retweeted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
