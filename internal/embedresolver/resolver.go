// Package embedresolver classifies social media URLs and builds embed
// metadata for them. Everything here is pure string matching: no I/O, no
// state, same URL in, same embed out.
package embedresolver

import (
	"regexp"
	"strings"

	"pulse/internal/models"
)

var (
	youtubeIDPattern   = regexp.MustCompile(`^.*((youtu\.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)
	instagramIDPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?instagram\.com(?:/p/|/reel/)([^/?#&]+)`)
	tiktokIDPattern    = regexp.MustCompile(`(?:https?://)?(?:www\.)?tiktok\.com/@[^/]+/video/(\d+)`)
)

const youtubeIDLength = 11

// Classify detects the platform a URL belongs to. It returns one of the
// models.Embed* constants or "" when the URL matches no known platform.
func Classify(url string) string {
	switch {
	case strings.Contains(url, "youtube.com/watch") || strings.Contains(url, "youtu.be/"):
		return models.EmbedYouTube
	case strings.Contains(url, "instagram.com/"):
		return models.EmbedInstagram
	case strings.Contains(url, "tiktok.com/"):
		return models.EmbedTikTok
	default:
		return ""
	}
}

// Resolve builds embed metadata for a URL. The second return is false when
// the URL is unrecognized or its platform ID cannot be extracted; callers
// fall back to treating the URL as a plain link.
func Resolve(url string) (*models.Embed, bool) {
	switch Classify(url) {
	case models.EmbedYouTube:
		id, ok := youTubeVideoID(url)
		if !ok {
			return nil, false
		}
		return &models.Embed{
			Type:         models.EmbedYouTube,
			URL:          url,
			VideoID:      id,
			ThumbnailURL: youTubeThumbnail(id),
		}, true
	case models.EmbedInstagram:
		id, ok := instagramPostID(url)
		if !ok {
			return nil, false
		}
		return &models.Embed{
			Type:     models.EmbedInstagram,
			URL:      url,
			PostID:   id,
			EmbedURL: "https://www.instagram.com/p/" + id + "/embed",
		}, true
	case models.EmbedTikTok:
		id, ok := tikTokVideoID(url)
		if !ok {
			return nil, false
		}
		return &models.Embed{
			Type:     models.EmbedTikTok,
			URL:      url,
			VideoID:  id,
			EmbedURL: "https://www.tiktok.com/embed/v2/" + id,
		}, true
	default:
		return nil, false
	}
}

// youTubeVideoID extracts the video ID from watch, short, /v/, /embed/ and
// /u/<x>/ URL forms. IDs are always exactly 11 characters; anything else is
// a failed extraction.
func youTubeVideoID(url string) (string, bool) {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[7]) != youtubeIDLength {
		return "", false
	}
	return m[7], true
}

func youTubeThumbnail(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

func instagramPostID(url string) (string, bool) {
	m := instagramIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func tikTokVideoID(url string) (string, bool) {
	m := tiktokIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}
