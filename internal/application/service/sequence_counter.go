package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
)

// SequenceCounter issues gap-free monthly bill sequences. The counter update
// and the bill write always commit together.
type SequenceCounter struct {
	bills repository.BillRepository
	now   func() time.Time
}

// NewSequenceCounter creates a counter backed by the bill store
func NewSequenceCounter(bills repository.BillRepository) *SequenceCounter {
	return &SequenceCounter{bills: bills, now: time.Now}
}

// NextSequence reads the month's counter inside tx and stages the increment.
// The first bill of a month gets sequence 1.
func NextSequence(ctx context.Context, tx repository.BillTx, month string, now time.Time) (int, error) {
	counter, err := tx.GetCounter(ctx, month)
	if err != nil {
		return 0, err
	}

	next := 1
	if counter != nil {
		next = counter.LastSequence + 1
	}

	err = tx.SaveCounter(ctx, &entity.BillCounter{
		Month:        month,
		LastSequence: next,
		LastUpdated:  now,
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// AssignNextBillNumber numbers bill with the next sequence of month and
// stores it in the same transaction. On error nothing is persisted and the
// bill keeps no numbering fields.
func (c *SequenceCounter) AssignNextBillNumber(ctx context.Context, userID, month string, bill *entity.Bill) (string, error) {
	if billing.FormatBillNumber(month, 1) == billing.InvalidBillNumber {
		return "", fmt.Errorf("invalid bill month %q", month)
	}

	err := c.bills.RunInTransaction(ctx, userID, func(tx repository.BillTx) error {
		seq, err := NextSequence(ctx, tx, month, c.now())
		if err != nil {
			return err
		}

		number := billing.FormatBillNumber(month, seq)
		m := month
		bill.BillNumber = &number
		bill.BillSequence = &seq
		bill.BillMonth = &m
		return tx.CreateBill(ctx, bill)
	})
	if err != nil {
		bill.BillNumber = nil
		bill.BillSequence = nil
		bill.BillMonth = nil
		return "", err
	}
	return *bill.BillNumber, nil
}
