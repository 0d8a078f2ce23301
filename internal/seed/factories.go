// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"pulse/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Post body templates handled by CreatePostWithTemplate.
const (
	PostTypeText    = "text"
	PostTypeImage   = "image"
	PostTypeLink    = "link"
	PostTypeVideo   = "video"
	PostTypeFeeling = "feeling"
)

var feelings = []string{
	"happy", "excited", "grateful", "thoughtful", "nostalgic",
	"motivated", "relaxed", "curious", "proud", "hungry",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for demo data
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	id := gofakeit.UUID()
	user := &models.User{
		ID:       id,
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", id),
		Points:   gofakeit.Number(0, 500),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePostWithTemplate creates a post for the given user of a specific
// body type (text, image, link, video, feeling) with the matching fields
// populated.
func (f *Factory) CreatePostWithTemplate(user *models.User, postType string, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Author:  user.Snapshot(),
		Content: gofakeit.Paragraph(1, 3, 8, "\n"),
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)

	switch postType {
	case PostTypeImage:
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	case PostTypeLink:
		post.LinkURL = gofakeit.URL()
	case PostTypeVideo:
		// curated public YouTube IDs so embeds render in the demo UI
		youtubeIDs := []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}
		id := youtubeIDs[f.rng.Intn(len(youtubeIDs))]
		post.Embed = &models.Embed{
			Type:         models.EmbedYouTube,
			URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
			VideoID:      id,
			ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id),
		}
	case PostTypeFeeling:
		post.Feeling = feelings[f.rng.Intn(len(feelings))]
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		ID:      uuid.NewString(),
		PostID:  post.ID,
		UserID:  user.ID,
		Author:  user.Snapshot(),
		Content: gofakeit.Sentence(8),
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post`. Duplicate likes are
// silently ignored, matching the live toggle semantics.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateGift persists a cumulative gift from `user` on `post` without
// touching balances. Seeded gifts are decorative, not part of the economy.
func (f *Factory) CreateGift(user *models.User, post *models.Post, amount int) error {
	gift := &models.Gift{
		PostID: post.ID,
		UserID: user.ID,
		Amount: amount,
	}
	return f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"amount": gorm.Expr("gifts.amount + ?", amount)}),
	}).Create(gift).Error
}
