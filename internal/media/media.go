// Package media validates inline post images supplied as data URIs.
package media

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"pulse/internal/models"

	"github.com/chai2010/webp"
)

const (
	// MaxImageBytes caps the decoded payload of an inline image.
	MaxImageBytes = 5 * 1024 * 1024
	// MaxImageDimension caps width and height in pixels.
	MaxImageDimension = 8192
)

// ImageInfo describes a validated inline image.
type ImageInfo struct {
	MIME   string
	Width  int
	Height int
	Bytes  int
}

// ValidateDataURI checks that uri is a well-formed base64 image data URI of
// an allowed type within size and dimension budgets. It returns a
// VALIDATION_ERROR AppError for anything malformed so callers can reject the
// payload before any store write.
func ValidateDataURI(uri string) (*ImageInfo, error) {
	mime, payload, ok := splitDataURI(uri)
	if !ok {
		return nil, models.NewValidationError("image must be a base64 data URI")
	}

	switch mime {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
	default:
		return nil, models.NewValidationError("unsupported image type: " + mime)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, models.NewValidationError("image payload is not valid base64")
	}
	if len(raw) > MaxImageBytes {
		return nil, models.NewValidationError("image exceeds maximum size")
	}

	var cfg image.Config
	if mime == "image/webp" {
		cfg, err = webp.DecodeConfig(bytes.NewReader(raw))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, models.NewValidationError("image payload is not a decodable image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		return nil, models.NewValidationError("image dimensions out of range")
	}

	return &ImageInfo{
		MIME:   mime,
		Width:  cfg.Width,
		Height: cfg.Height,
		Bytes:  len(raw),
	}, nil
}

// splitDataURI splits "data:<mime>;base64,<payload>" into its parts.
func splitDataURI(uri string) (mime, payload string, ok bool) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, "data:")
	head, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	if !strings.HasSuffix(head, ";base64") {
		return "", "", false
	}
	mime = strings.TrimSuffix(head, ";base64")
	if mime == "" {
		return "", "", false
	}
	return mime, payload, true
}
