package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"gorm.io/gorm"
)

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) domainRepo.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) GetByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *inventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Scopes(OwnedBy(item.UserID)).
		Select("name", "price", "stock").
		Updates(item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).Delete(&entity.InventoryItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) List(ctx context.Context, userID string, params *domainRepo.InventoryFilterParams) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).Scopes(OwnedBy(userID))
	if search := strings.TrimSpace(params.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Order("LOWER(name) ASC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Find(&items).Error
	return items, total, err
}

func (r *inventoryRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).Scopes(OwnedBy(userID)).Count(&n).Error
	return n, err
}

func (r *inventoryRepository) CountOutOfStock(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.InventoryItem{}).
		Scopes(OwnedBy(userID)).
		Where("stock <= 0").
		Count(&n).Error
	return n, err
}
