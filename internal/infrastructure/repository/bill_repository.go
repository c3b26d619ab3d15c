package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errUnreadCounter = errors.New("repository: counter must be read in the transaction before it is written")

type billRepository struct {
	db     *gorm.DB
	policy txretry.Policy
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB, policy txretry.Policy) domainRepo.BillRepository {
	return &billRepository{db: db, policy: policy}
}

func (r *billRepository) RunInTransaction(ctx context.Context, userID string, fn func(tx domainRepo.BillTx) error) error {
	return txretry.Do(ctx, r.policy, isRetryable, func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&billTx{db: tx, userID: userID, versions: make(map[string]int64)})
		})
	})
}

func (r *billRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, userID string, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).Scopes(OwnedBy(userID))

	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(bill_number) LIKE ? OR LOWER(customer->>'name') LIKE ? OR customer->>'phone' LIKE ?",
			like, like, "%"+search+"%",
		)
	}
	if params.StartDate != nil {
		query = query.Where("timestamp >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("timestamp <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Order("timestamp DESC").
		Offset(params.Pagination.Offset()).
		Limit(params.Pagination.PerPage).
		Find(&bills).Error
	return bills, total, err
}

func (r *billRepository) Import(ctx context.Context, userID string, bills []*entity.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	for _, b := range bills {
		b.UserID = userID
	}
	return r.db.WithContext(ctx).CreateInBatches(bills, 100).Error
}

func (r *billRepository) GetCounter(ctx context.Context, userID, month string) (*entity.BillCounter, error) {
	var counter entity.BillCounter
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).Where("month = ?", month).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func (r *billRepository) Summarize(ctx context.Context, userID string, from, to time.Time) (*domainRepo.BillSummary, error) {
	var row struct {
		Count   int64
		Revenue decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Scopes(OwnedBy(userID)).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue").
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &domainRepo.BillSummary{Count: row.Count, Revenue: row.Revenue}, nil
}

// billTx is a gorm transaction with optimistic checks on counter rows.
// versions holds the version each counter had when read, zero if absent.
type billTx struct {
	db       *gorm.DB
	userID   string
	versions map[string]int64
}

func (t *billTx) GetCounter(ctx context.Context, month string) (*entity.BillCounter, error) {
	var counter entity.BillCounter
	err := t.db.WithContext(ctx).Scopes(OwnedBy(t.userID)).Where("month = ?", month).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t.versions[month] = 0
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.versions[month] = counter.Version
	return &counter, nil
}

func (t *billTx) SaveCounter(ctx context.Context, counter *entity.BillCounter) error {
	seen, ok := t.versions[counter.Month]
	if !ok {
		return errUnreadCounter
	}
	counter.UserID = t.userID
	counter.Version = seen + 1

	db := t.db.WithContext(ctx)
	var res *gorm.DB
	if seen == 0 {
		// A concurrent first bill of the month wins the insert; we retry.
		res = db.Clauses(clause.OnConflict{DoNothing: true}).Create(counter)
	} else {
		res = db.Model(&entity.BillCounter{}).
			Where("user_id = ? AND month = ? AND version = ?", t.userID, counter.Month, seen).
			Updates(map[string]interface{}{
				"last_sequence": counter.LastSequence,
				"last_updated":  counter.LastUpdated,
				"version":       counter.Version,
			})
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrConflict
	}
	t.versions[counter.Month] = counter.Version
	return nil
}

func (t *billTx) CreateBill(ctx context.Context, bill *entity.Bill) error {
	bill.UserID = t.userID
	return t.db.WithContext(ctx).Create(bill).Error
}
