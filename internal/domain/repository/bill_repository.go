package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillFilterParams holds filtering parameters for listing bills
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
}

// BillSummary aggregates the bills issued in a period.
type BillSummary struct {
	Count   int64
	Revenue decimal.Decimal
}

// BillTx is the view of the store inside a bill transaction. Reads are
// tracked; the transaction only commits if nothing it read changed.
type BillTx interface {
	// GetCounter returns the counter for month, or nil if none exists yet.
	GetCounter(ctx context.Context, month string) (*entity.BillCounter, error)
	SaveCounter(ctx context.Context, counter *entity.BillCounter) error
	CreateBill(ctx context.Context, bill *entity.Bill) error
}

// BillRepository defines the interface for bill data access. Bills are never
// updated or deleted once created.
type BillRepository interface {
	// RunInTransaction runs fn atomically for one user's documents. fn is
	// called again from scratch after a conflict, until it commits or the
	// retry budget is exhausted.
	RunInTransaction(ctx context.Context, userID string, fn func(tx BillTx) error) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.Bill, error)
	List(ctx context.Context, userID string, params *BillFilterParams) ([]entity.Bill, int64, error)
	// Import stores documents as given, without numbering them.
	Import(ctx context.Context, userID string, bills []*entity.Bill) error
	GetCounter(ctx context.Context, userID, month string) (*entity.BillCounter, error)
	Summarize(ctx context.Context, userID string, from, to time.Time) (*BillSummary, error)
}
