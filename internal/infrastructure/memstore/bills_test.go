package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/memstore"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uid = "uid-1"

var generous = txretry.Policy{MaxAttempts: 1000, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func increment(ctx context.Context, tx repository.BillTx, month string) (int, error) {
	c, err := tx.GetCounter(ctx, month)
	if err != nil {
		return 0, err
	}
	next := 1
	if c != nil {
		next = c.LastSequence + 1
	}
	return next, tx.SaveCounter(ctx, &entity.BillCounter{Month: month, LastSequence: next, LastUpdated: time.Now()})
}

func TestTransactionCommitsCounterAndBillTogether(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	bill := &entity.Bill{Customer: entity.Customer{Name: "Asha", Phone: "9000000000"}, Timestamp: time.Now()}

	err := bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
		if _, err := increment(ctx, tx, "2026-01"); err != nil {
			return err
		}
		return tx.CreateBill(ctx, bill)
	})
	require.NoError(t, err)

	c, err := bills.GetCounter(ctx, uid, "2026-01")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 1, c.LastSequence)

	stored, err := bills.GetByID(ctx, uid, bill.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Asha", stored.Customer.Name)
}

func TestFailedTransactionLeavesCounterUnchanged(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	require.NoError(t, bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
		_, err := increment(ctx, tx, "2026-01")
		return err
	}))

	boom := errors.New("bill insert failed")
	err := bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
		if _, err := increment(ctx, tx, "2026-01"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, err := bills.GetCounter(ctx, uid, "2026-01")
	require.NoError(t, err)
	assert.Equal(t, 1, c.LastSequence)
}

func TestConcurrentIncrementsAreSerialised(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()

	const n = 40
	results := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got int
			err := bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
				next, err := increment(ctx, tx, "2026-03")
				got = next
				return err
			})
			if assert.NoError(t, err) {
				results <- got
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for seq := range results {
		assert.False(t, seen[seq], "sequence %d issued twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[i], "sequence %d missing", i)
	}
}

func TestStaleReadConflicts(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(txretry.Policy{MaxAttempts: 1}).Bills()

	err := bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
		if _, err := tx.GetCounter(ctx, "2026-04"); err != nil {
			return err
		}
		// Another writer commits between our read and our commit.
		inner := bills.RunInTransaction(ctx, uid, func(other repository.BillTx) error {
			_, err := increment(ctx, other, "2026-04")
			return err
		})
		require.NoError(t, inner)
		return tx.SaveCounter(ctx, &entity.BillCounter{Month: "2026-04", LastSequence: 1})
	})

	assert.ErrorIs(t, err, repository.ErrRetriesExhausted)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestSaveCounterRequiresRead(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()

	err := bills.RunInTransaction(ctx, uid, func(tx repository.BillTx) error {
		return tx.SaveCounter(ctx, &entity.BillCounter{Month: "2026-05", LastSequence: 7})
	})
	assert.Error(t, err)

	c, err := bills.GetCounter(ctx, uid, "2026-05")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCountersAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	for _, user := range []string{"a", "b", "a"} {
		require.NoError(t, bills.RunInTransaction(ctx, user, func(tx repository.BillTx) error {
			_, err := increment(ctx, tx, "2026-06")
			return err
		}))
	}

	a, _ := bills.GetCounter(ctx, "a", "2026-06")
	b, _ := bills.GetCounter(ctx, "b", "2026-06")
	assert.Equal(t, 2, a.LastSequence)
	assert.Equal(t, 1, b.LastSequence)
}

func TestListNewestFirstWithFilters(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	number := "FEB-26-002"
	docs := []*entity.Bill{
		{Customer: entity.Customer{Name: "Asha Rao", Phone: "9000000001"}, Total: decimal.NewFromInt(10), Timestamp: base},
		{Customer: entity.Customer{Name: "Vikram", Phone: "9000000002"}, Total: decimal.NewFromInt(20), Timestamp: base.Add(time.Hour), BillNumber: &number},
		{Customer: entity.Customer{Name: "Meera", Phone: "9111111111"}, Total: decimal.NewFromInt(30), Timestamp: base.Add(48 * time.Hour)},
	}
	require.NoError(t, bills.Import(ctx, uid, docs))

	all, total, err := bills.List(ctx, uid, &repository.BillFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "Meera", all[0].Customer.Name)
	assert.Equal(t, "Asha Rao", all[2].Customer.Name)

	byName, _, _ := bills.List(ctx, uid, &repository.BillFilterParams{Pagination: pagination.DefaultPagination(), Search: "asha"})
	require.Len(t, byName, 1)

	byNumber, _, _ := bills.List(ctx, uid, &repository.BillFilterParams{Pagination: pagination.DefaultPagination(), Search: "feb-26"})
	require.Len(t, byNumber, 1)
	assert.Equal(t, "Vikram", byNumber[0].Customer.Name)

	byPhone, _, _ := bills.List(ctx, uid, &repository.BillFilterParams{Pagination: pagination.DefaultPagination(), Search: "9111"})
	require.Len(t, byPhone, 1)

	end := base.Add(2 * time.Hour)
	ranged, _, _ := bills.List(ctx, uid, &repository.BillFilterParams{Pagination: pagination.DefaultPagination(), StartDate: &base, EndDate: &end})
	assert.Len(t, ranged, 2)

	summary, err := bills.Summarize(ctx, uid, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Count)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(30)))

	other, n, _ := bills.List(ctx, "someone-else", &repository.BillFilterParams{Pagination: pagination.DefaultPagination()})
	assert.Empty(t, other)
	assert.Zero(t, n)
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	id := uuid.New()

	require.NoError(t, bills.Import(ctx, uid, []*entity.Bill{{ID: id, Timestamp: time.Now()}}))
	assert.Error(t, bills.Import(ctx, uid, []*entity.Bill{{ID: id, Timestamp: time.Now()}}))
}

func TestStoredBillsAreCopies(t *testing.T) {
	ctx := context.Background()
	bills := memstore.New(generous).Bills()
	b := &entity.Bill{Customer: entity.Customer{Name: "Asha"}, Timestamp: time.Now()}
	require.NoError(t, bills.Import(ctx, uid, []*entity.Bill{b}))

	got, _ := bills.GetByID(ctx, uid, b.ID)
	got.Customer.Name = "changed"
	got.BusinessDetails = &entity.BusinessDetails{Name: "X"}

	again, _ := bills.GetByID(ctx, uid, b.ID)
	assert.Equal(t, "Asha", again.Customer.Name)
	assert.Nil(t, again.BusinessDetails)
}
