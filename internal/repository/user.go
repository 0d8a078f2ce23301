// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/cache"
	"pulse/internal/models"
	"pulse/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Ensure(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure creates the user record if it does not exist yet and stamps the
// last login time either way. Profile fields of an existing record are left
// untouched.
func (r *userRepository) Ensure(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.LastLoginAt = &now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_login_at": now}),
		}).
		Create(user).Error
	if err != nil {
		r.log.LogError(ctx, err, "ensure")
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, user.ID)

	var fresh models.User
	if err := r.db.WithContext(ctx).First(&fresh, "id = ?", user.ID).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"user_id": fresh.ID})
	return &fresh, nil
}

// Update merges the given fields into an existing user. Absent users are
// reported as not found rather than created.
func (r *userRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*models.User, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "update")
		return nil, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}

	cache.InvalidateUser(ctx, id)

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"user_id": id})
	return &user, nil
}
