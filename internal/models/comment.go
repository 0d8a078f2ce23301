package models

import (
	"time"
)

// Comment is an append-only reply on a post. Like posts, it embeds an author
// snapshot rather than referencing the live user record. Comments are never
// edited or removed.
type Comment struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	PostID    string       `gorm:"not null;index;size:36" json:"post_id"`
	UserID    string       `gorm:"not null;size:64" json:"user_id"`
	Author    UserSnapshot `gorm:"serializer:json;not null" json:"user"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}
