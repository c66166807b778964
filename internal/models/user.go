// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the AnimeZ application. It combines the
// authentication identity (email, password hash) with the profile record
// (username, bio, avatar) that the rest of the app reads.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the viewer-editable slice of a User row.
type Profile struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	IsAdmin   bool   `json:"is_admin"`
}

// ProfileOf extracts the profile view of a user row.
func ProfileOf(u *User) *Profile {
	if u == nil {
		return nil
	}
	return &Profile{
		UserID:    u.ID,
		Username:  u.Username,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
	}
}
