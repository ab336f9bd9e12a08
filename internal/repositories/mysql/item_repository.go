package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/janmaslov/wishlist/internal/models"

	"gorm.io/gorm"
)

var ErrItemNotFound = errors.New("item not found")

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id uint) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByView returns the items of one list, newest first. Archived items are
// those whose status is available or declined.
func (r *ItemRepository) FindByView(ctx context.Context, archived bool) ([]models.WishlistItem, error) {
	archivedStatuses := []models.ItemStatus{models.StatusAvailable, models.StatusDeclined}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if archived {
		query = query.Where("status IN ?", archivedStatuses)
	} else {
		query = query.Where("status NOT IN ?", archivedStatuses)
	}

	var items []models.WishlistItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *models.WishlistItem) error {
	result := r.db.WithContext(ctx).Save(item)
	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.WishlistItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
