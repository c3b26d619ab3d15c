package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"gorm.io/gorm"
)

// OwnedBy returns a GORM scope limiting a query to one user's documents.
// Queries without a user match nothing.
func OwnedBy(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", userID)
	}
}

// Postgres error codes that mean the transaction lost a race and can be re-run.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isRetryable(err error) bool {
	if errors.Is(err, domainRepo.ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}
