package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
	"github.com/shopspring/decimal"
)

var errUnreadCounter = errors.New("memstore: counter must be read in the transaction before it is written")

type billRepository struct {
	s *Store
}

func isConflict(err error) bool {
	return errors.Is(err, repository.ErrConflict)
}

func (r *billRepository) RunInTransaction(ctx context.Context, userID string, fn func(tx repository.BillTx) error) error {
	return txretry.Do(ctx, r.s.policy, isConflict, func() error {
		tx := &billTx{
			s:        r.s,
			userID:   userID,
			reads:    make(map[string]int64),
			counters: make(map[string]*entity.BillCounter),
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.commit()
	})
}

func (r *billRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bills[userID][id]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (r *billRepository) List(ctx context.Context, userID string, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	params.Pagination.Validate()
	search := strings.ToLower(strings.TrimSpace(params.Search))

	r.s.mu.RLock()
	var matched []entity.Bill
	for _, b := range r.s.bills[userID] {
		if params.StartDate != nil && b.Timestamp.Before(*params.StartDate) {
			continue
		}
		if params.EndDate != nil && b.Timestamp.After(*params.EndDate) {
			continue
		}
		if search != "" && !matchesSearch(b, search) {
			continue
		}
		matched = append(matched, *b.Clone())
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	start, end := params.Pagination.Window(len(matched))
	return matched[start:end], int64(len(matched)), nil
}

func matchesSearch(b *entity.Bill, search string) bool {
	if b.BillNumber != nil && strings.Contains(strings.ToLower(*b.BillNumber), search) {
		return true
	}
	return strings.Contains(strings.ToLower(b.Customer.Name), search) ||
		strings.Contains(b.Customer.Phone, search)
}

func (r *billRepository) Import(ctx context.Context, userID string, bills []*entity.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	userBills := r.s.userBills(userID)
	for _, b := range bills {
		if b.ID != uuid.Nil {
			if _, exists := userBills[b.ID]; exists {
				return fmt.Errorf("memstore: bill %s already exists", b.ID)
			}
		}
	}
	for _, b := range bills {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.UserID = userID
		b.CreatedAt = r.s.now()
		userBills[b.ID] = b.Clone()
	}
	return nil
}

func (r *billRepository) GetCounter(ctx context.Context, userID, month string) (*entity.BillCounter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.counters[counterKey{userID, month}]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *billRepository) Summarize(ctx context.Context, userID string, from, to time.Time) (*repository.BillSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	summary := &repository.BillSummary{Revenue: decimal.Zero}
	for _, b := range r.s.bills[userID] {
		if b.Timestamp.Before(from) || !b.Timestamp.Before(to) {
			continue
		}
		summary.Count++
		summary.Revenue = summary.Revenue.Add(b.Total)
	}
	return summary, nil
}

// userBills must be called with the write lock held.
func (s *Store) userBills(userID string) map[uuid.UUID]*entity.Bill {
	m, ok := s.bills[userID]
	if !ok {
		m = make(map[uuid.UUID]*entity.Bill)
		s.bills[userID] = m
	}
	return m
}

// billTx buffers writes until commit. reads holds the counter version seen
// by the transaction, zero for a counter that did not exist.
type billTx struct {
	s        *Store
	userID   string
	reads    map[string]int64
	counters map[string]*entity.BillCounter
	bills    []*entity.Bill
}

func (t *billTx) GetCounter(ctx context.Context, month string) (*entity.BillCounter, error) {
	if c, ok := t.counters[month]; ok {
		cp := *c
		return &cp, nil
	}

	t.s.mu.RLock()
	c, ok := t.s.counters[counterKey{t.userID, month}]
	var cp entity.BillCounter
	if ok {
		cp = *c
	}
	t.s.mu.RUnlock()

	if !ok {
		t.reads[month] = 0
		return nil, nil
	}
	t.reads[month] = cp.Version
	return &cp, nil
}

func (t *billTx) SaveCounter(ctx context.Context, counter *entity.BillCounter) error {
	seen, ok := t.reads[counter.Month]
	if !ok {
		return errUnreadCounter
	}
	cp := *counter
	cp.UserID = t.userID
	cp.Version = seen + 1
	t.counters[cp.Month] = &cp
	return nil
}

func (t *billTx) CreateBill(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.UserID = t.userID
	t.bills = append(t.bills, bill.Clone())
	return nil
}

func (t *billTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for month, seen := range t.reads {
		var current int64
		if c, ok := t.s.counters[counterKey{t.userID, month}]; ok {
			current = c.Version
		}
		if current != seen {
			return repository.ErrConflict
		}
	}

	userBills := t.s.userBills(t.userID)
	for _, b := range t.bills {
		if _, exists := userBills[b.ID]; exists {
			return fmt.Errorf("memstore: bill %s already exists", b.ID)
		}
		if b.BillNumber != nil {
			for _, other := range userBills {
				if other.BillNumber != nil && *other.BillNumber == *b.BillNumber {
					return fmt.Errorf("memstore: bill number %s already issued", *b.BillNumber)
				}
			}
		}
	}

	for month, c := range t.counters {
		t.s.counters[counterKey{t.userID, month}] = c
	}
	now := t.s.now()
	for _, b := range t.bills {
		b.CreatedAt = now
		userBills[b.ID] = b
	}
	return nil
}
