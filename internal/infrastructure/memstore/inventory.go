package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
)

type inventoryRepository struct {
	s *Store
}

func (r *inventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := r.s.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	m, ok := r.s.items[item.UserID]
	if !ok {
		m = make(map[uuid.UUID]*entity.InventoryItem)
		r.s.items[item.UserID] = m
	}
	cp := *item
	m[item.ID] = &cp
	return nil
}

func (r *inventoryRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[userID][id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *inventoryRepository) GetByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []entity.InventoryItem
	for _, id := range ids {
		if it, ok := r.s.items[userID][id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.items[item.UserID][item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.s.now()
	cp := *item
	r.s.items[item.UserID][item.ID] = &cp
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[userID][id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.items[userID], id)
	return nil
}

func (r *inventoryRepository) List(ctx context.Context, userID string, params *repository.InventoryFilterParams) ([]entity.InventoryItem, int64, error) {
	params.Pagination.Validate()
	search := strings.ToLower(strings.TrimSpace(params.Search))

	r.s.mu.RLock()
	var matched []entity.InventoryItem
	for _, it := range r.s.items[userID] {
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		matched = append(matched, *it)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func (r *inventoryRepository) Count(ctx context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.items[userID])), nil
}

func (r *inventoryRepository) CountOutOfStock(ctx context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, it := range r.s.items[userID] {
		if it.Stock <= 0 {
			n++
		}
	}
	return n, nil
}
