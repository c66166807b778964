package models

import (
	"time"
)

// Poll is attached one-to-one to a post at authoring time.
// TotalVotes counts distinct voters, not vote events; it always equals the sum
// of the option vote counts.
type Poll struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	PostID     uint         `gorm:"not null;uniqueIndex" json:"post_id"`
	Title      string       `gorm:"not null" json:"title"`
	TotalVotes int          `gorm:"not null;default:0" json:"total_votes"`
	EndsAt     *time.Time   `json:"ends_at,omitempty"`
	Options    []PollOption `gorm:"foreignKey:PollID" json:"options"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Expired reports whether voting has closed, compared against now.
func (p *Poll) Expired(now time.Time) bool {
	return p.EndsAt != nil && p.EndsAt.Before(now)
}

// PollOption is one of the 2-4 choices of a poll. OptionOrder is assigned at
// creation and fixes the display order regardless of how tallies move.
type PollOption struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	PollID      uint   `gorm:"not null;index" json:"poll_id"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	VoteCount   int    `gorm:"not null;default:0" json:"vote_count"`
	OptionOrder int    `gorm:"not null" json:"option_order"`
}

// Percentage returns this option's share of the poll's total votes,
// and 0 when nobody has voted yet.
func (o *PollOption) Percentage(totalVotes int) float64 {
	if totalVotes <= 0 {
		return 0
	}
	return float64(o.VoteCount) / float64(totalVotes) * 100
}

// PollVote records a user's single live vote on a poll. The (poll_id, user_id)
// pair is unique; changing one's mind updates OptionID in place.
type PollVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_poll_voter" json:"poll_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poll_voter" json:"user_id"`
	OptionID  uint      `gorm:"not null" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
