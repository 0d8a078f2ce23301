// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Embed platforms supported by the resolver.
const (
	EmbedYouTube   = "youtube"
	EmbedInstagram = "instagram"
	EmbedTikTok    = "tiktok"
)

// Embed is structured metadata for rendering an external platform's content
// inline. Which optional fields are set depends on Type: YouTube carries
// VideoID+ThumbnailURL, Instagram PostID+EmbedURL, TikTok VideoID+EmbedURL.
type Embed struct {
	Type         string `json:"type"`
	URL          string `json:"url"`
	VideoID      string `json:"video_id,omitempty"`
	PostID       string `json:"post_id,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Post represents a feed post in the Pulse application.
//
// Author is a creation-time snapshot stored as a JSON column, not a foreign
// key join. LikesCount/CommentsCount/Liked are computed per query from the
// likes and comments tables; Liked is per viewer. PointsGifted is derived
// from the gifts table by the repository.
type Post struct {
	ID      string       `gorm:"primaryKey;size:36" json:"id"`
	UserID  string       `gorm:"not null;index;size:64" json:"user_id"`
	Author  UserSnapshot `gorm:"serializer:json;not null" json:"user"`
	Content string       `gorm:"type:text" json:"content"`
	// Image is an inline data URI; mutually exclusive with Embed for display,
	// Embed wins when both are set.
	Image   string `gorm:"type:text" json:"image,omitempty"`
	LinkURL string `json:"link_url,omitempty"`
	Feeling string `json:"feeling,omitempty"`
	Embed   *Embed `gorm:"serializer:json" json:"embed,omitempty"`
	Shares  int    `gorm:"not null;default:0" json:"shares"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked        bool           `gorm:"->" json:"is_liked"`
	Comments     []Comment      `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	PointsGifted map[string]int `gorm:"-" json:"points_gifted"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasBody reports whether the post carries at least one piece of content.
// A post with none of content/image/link/embed/feeling is empty and must be
// rejected before any store write.
func (p *Post) HasBody() bool {
	return p.Content != "" || p.Image != "" || p.LinkURL != "" || p.Embed != nil || p.Feeling != ""
}

// Like is a per-viewer like relationship: one row per (user, post) pair.
// A post's like count is the number of rows for it and a viewer's liked flag
// is a membership test, so the counter can never go negative.
type Like struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	PostID    string    `gorm:"primaryKey;size:36;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Gift accumulates the points one user has gifted to one post. Repeated
// gifts add onto Amount rather than inserting new rows.
type Gift struct {
	PostID    string    `gorm:"primaryKey;size:36;index" json:"post_id"`
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	Amount    int       `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
