package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/janmaslov/wishlist/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate resolves the provider id to a local user, creating the row on
// first sign-in. The display name is refreshed to whatever the provider
// currently reports.
func (r *UserRepository) GetOrCreate(ctx context.Context, jellyfinID, name string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("jellyfin_id = ?", jellyfinID).First(&user).Error
		if err == nil {
			if user.Name != name {
				user.Name = name
				return tx.Model(&user).Update("name", name).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up user: %w", err)
		}

		user = models.User{JellyfinID: jellyfinID, Name: name}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByJellyfinID(ctx context.Context, jellyfinID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("jellyfin_id = ?", jellyfinID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
