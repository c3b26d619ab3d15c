package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
)

// InventoryFilterParams holds filtering parameters for listing inventory
type InventoryFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}

// InventoryRepository defines the interface for inventory data access
type InventoryRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.InventoryItem, error)
	GetByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	List(ctx context.Context, userID string, params *InventoryFilterParams) ([]entity.InventoryItem, int64, error)
	Count(ctx context.Context, userID string) (int64, error)
	CountOutOfStock(ctx context.Context, userID string) (int64, error)
}
