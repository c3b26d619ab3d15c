package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
)

type idempotencyRepository struct {
	s *Store
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID string) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ik, ok := r.s.idempotency[idempotencyKey{userID, key}]
	if !ok {
		return nil, nil
	}
	cp := *ik
	return &cp, nil
}

func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idempotencyKey{ikey.UserID, ikey.Key}
	if existing, ok := r.s.idempotency[k]; ok && !existing.IsExpired() {
		return false, nil
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	ikey.CreatedAt = r.s.now()
	cp := *ikey
	r.s.idempotency[k] = &cp
	return true, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.idempotency[idempotencyKey{ikey.UserID, ikey.Key}]
	if !ok {
		return fmt.Errorf("memstore: idempotency key %q is not reserved", ikey.Key)
	}
	stored.ResponseCode = ikey.ResponseCode
	stored.ResponseBody = ikey.ResponseBody
	stored.ExpiresAt = ikey.ExpiresAt
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idempotencyKey{userID, key}
	if ik, ok := r.s.idempotency[k]; ok && ik.IsPending() {
		delete(r.s.idempotency, k)
	}
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, ik := range r.s.idempotency {
		if ik.IsExpired() {
			delete(r.s.idempotency, k)
		}
	}
	return nil
}
