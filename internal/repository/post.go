// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreateWithReward(ctx context.Context, post *models.Post, reward int) error
	GetByID(ctx context.Context, id string, viewerID string) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Post, error)
	IsLiked(ctx context.Context, userID, postID string) (bool, error)
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
	IncrementShares(ctx context.Context, postID string) error
	AddComment(ctx context.Context, comment *models.Comment) error
	GiftPoints(ctx context.Context, fromUserID, postID string, amount int) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// CreateWithReward inserts the post and applies the author's posting side
// effects (points reward, daily counter, last post time) in one transaction,
// so a failed insert never pays out.
func (r *postRepository) CreateWithReward(ctx context.Context, post *models.Post, reward int) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		result := tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			Updates(map[string]interface{}{
				"points":      gorm.Expr("points + ?", reward),
				"posts_today": gorm.Expr("posts_today + 1"),
				"last_post_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		// An absent author must roll back the post insert, not commit a post
		// with no reward applied.
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("User", post.UserID)
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, post.UserID)
	cache.InvalidateFeed(ctx)
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string, viewerID string) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.enrichGiftTotals(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns the feed newest first. The viewer's liked flag and the
// per-post counters are computed in the same query.
func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.enrichGiftTotals(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if viewerID != "" {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", viewerID)
	}

	return db.Select(selectQuery + ", false as liked")
}

// enrichGiftTotals fills PointsGifted from the gifts table for the given posts.
func (r *postRepository) enrichGiftTotals(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		p.PointsGifted = map[string]int{}
		ids = append(ids, p.ID)
	}

	var gifts []models.Gift
	if err := r.db.WithContext(ctx).
		Where("post_id IN ?", ids).
		Find(&gifts).Error; err != nil {
		return models.NewInternalError(err)
	}
	if len(gifts) == 0 {
		return nil
	}

	byPost := make(map[string][]models.Gift, len(posts))
	for _, g := range gifts {
		byPost[g.PostID] = append(byPost[g.PostID], g)
	}
	for _, p := range posts {
		for _, g := range byPost[p.ID] {
			p.PointsGifted[g.UserID] = g.Amount
		}
	}
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID string) error {
	// ON CONFLICT DO NOTHING keeps concurrent double taps idempotent.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, PostID: postID}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) IncrementShares(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Update("shares", gorm.Expr("shares + 1"))
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "add_comment")
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// GiftPoints debits the sender and records the cumulative gift on the post,
// all in one transaction. Gifted points accumulate on the post and leave
// circulation; the author's balance is untouched. The debit carries a
// balance guard in its WHERE clause so a concurrent spend cannot drive the
// sender negative.
func (r *postRepository) GiftPoints(ctx context.Context, fromUserID, postID string, amount int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		debit := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", fromUserID, amount).
			Update("points", gorm.Expr("points - ?", amount))
		if debit.Error != nil {
			return models.NewInternalError(debit.Error)
		}
		if debit.RowsAffected == 0 {
			var sender models.User
			if err := tx.First(&sender, "id = ?", fromUserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("User", fromUserID)
				}
				return models.NewInternalError(err)
			}
			return models.NewValidationError("Insufficient points")
		}

		gift := models.Gift{PostID: postID, UserID: fromUserID, Amount: amount}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount":     gorm.Expr("gifts.amount + ?", amount),
				"updated_at": time.Now(),
			}),
		}).Create(&gift).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
		return err
	}

	cache.InvalidateUser(ctx, fromUserID)
	cache.InvalidatePost(ctx, postID)
	return nil
}
