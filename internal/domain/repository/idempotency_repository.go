package repository

import (
	"context"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and user ID
	GetByKey(ctx context.Context, key string, userID string) (*entity.IdempotencyKey, error)
	// Reserve inserts ikey as a pending record unless a live record already
	// holds the same user and key. It reports whether the caller now owns it.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the response on a reserved key.
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a pending reservation so the key can be retried.
	Release(ctx context.Context, key string, userID string) error
	// DeleteExpired removes expired idempotency keys
	DeleteExpired(ctx context.Context) error
}
