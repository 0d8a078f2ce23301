// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a member of the Pulse feed. The ID is the caller-supplied
// external identity, not a database sequence, so user records can be created
// idempotently from the client identity.
type User struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	Username      string     `gorm:"not null" json:"username"`
	Avatar        string     `json:"avatar"`
	Points        int        `gorm:"not null;default:0" json:"points"`
	DailyStreak   int        `gorm:"not null;default:0" json:"daily_streak"`
	PostsToday    int        `gorm:"not null;default:0" json:"posts_today"`
	ReferralCount int        `gorm:"not null;default:0" json:"referral_count"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LastClaimAt   *time.Time `json:"last_claim_at,omitempty"`
	LastPostAt    *time.Time `json:"last_post_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserSnapshot is the denormalized author view embedded into posts and
// comments. It reflects the user at creation time and is never re-joined
// against the users table, so displayed usernames and avatars do not change
// retroactively.
type UserSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Snapshot captures the fields of u that posts and comments embed.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
