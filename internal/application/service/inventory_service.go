package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService manages the items a business sells
type InventoryService struct {
	itemRepo repository.InventoryRepository
	log      *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(itemRepo repository.InventoryRepository, log *zap.Logger) *InventoryService {
	return &InventoryService{itemRepo: itemRepo, log: log}
}

// ItemInput holds the editable fields of an inventory item
type ItemInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

func validateItem(in ItemInput) []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Item name is required"})
	}
	if in.Price.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Price must not be negative"})
	}
	if in.Stock < 0 {
		errs = append(errs, apperror.FieldError{Field: "stock", Message: "Stock must not be negative"})
	}
	return errs
}

// CreateItem adds an item to the inventory
func (s *InventoryService) CreateItem(ctx context.Context, userID string, input ItemInput) (*entity.InventoryItem, error) {
	if errs := validateItem(input); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	item := &entity.InventoryItem{
		UserID: userID,
		Name:   strings.TrimSpace(input.Name),
		Price:  input.Price,
		Stock:  input.Stock,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.log.Error("failed to create item", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to create item")
	}
	return item, nil
}

// GetItem returns one item
func (s *InventoryService) GetItem(ctx context.Context, userID string, id uuid.UUID) (*entity.InventoryItem, error) {
	item, err := s.itemRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load item")
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}
	return item, nil
}

// UpdateItem replaces the editable fields of an item. Existing bills keep
// the name and price they were issued with.
func (s *InventoryService) UpdateItem(ctx context.Context, userID string, id uuid.UUID, input ItemInput) (*entity.InventoryItem, error) {
	if errs := validateItem(input); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	item, err := s.GetItem(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(input.Name)
	item.Price = input.Price
	item.Stock = input.Stock

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Item")
		}
		s.log.Error("failed to update item", zap.String("item_id", id.String()), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to update item")
	}
	return item, nil
}

// DeleteItem removes an item from the inventory
func (s *InventoryService) DeleteItem(ctx context.Context, userID string, id uuid.UUID) error {
	err := s.itemRepo.Delete(ctx, userID, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NewNotFoundError("Item")
	case err != nil:
		return apperror.Wrap(err, "Failed to delete item")
	}
	return nil
}

// ListItems returns a page of items ordered by name
func (s *InventoryService) ListItems(ctx context.Context, userID string, params *repository.InventoryFilterParams) (*pagination.PaginatedResult[entity.InventoryItem], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	items, total, err := s.itemRepo.List(ctx, userID, params)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to list items")
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, p), nil
}
