// Package memstore is an in-process implementation of the repositories. It
// honours the same transaction contract as the postgres store and backs
// STORE_DRIVER=memory and the tests.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
)

type counterKey struct {
	userID string
	month  string
}

type idempotencyKey struct {
	userID string
	key    string
}

// Store keeps every collection in memory behind one lock.
type Store struct {
	mu          sync.RWMutex
	bills       map[string]map[uuid.UUID]*entity.Bill
	counters    map[counterKey]*entity.BillCounter
	items       map[string]map[uuid.UUID]*entity.InventoryItem
	settings    map[string]*entity.InvoiceSettings
	idempotency map[idempotencyKey]*entity.IdempotencyKey

	policy txretry.Policy
	now    func() time.Time
}

// New creates an empty store whose transactions retry under policy.
func New(policy txretry.Policy) *Store {
	return &Store{
		bills:       make(map[string]map[uuid.UUID]*entity.Bill),
		counters:    make(map[counterKey]*entity.BillCounter),
		items:       make(map[string]map[uuid.UUID]*entity.InventoryItem),
		settings:    make(map[string]*entity.InvoiceSettings),
		idempotency: make(map[idempotencyKey]*entity.IdempotencyKey),
		policy:      policy,
		now:         time.Now,
	}
}

// Bills returns the bill repository view of the store.
func (s *Store) Bills() repository.BillRepository {
	return &billRepository{s: s}
}

// Inventory returns the inventory repository view of the store.
func (s *Store) Inventory() repository.InventoryRepository {
	return &inventoryRepository{s: s}
}

// Settings returns the settings repository view of the store.
func (s *Store) Settings() repository.SettingsRepository {
	return &settingsRepository{s: s}
}

// Idempotency returns the idempotency repository view of the store.
func (s *Store) Idempotency() repository.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}
