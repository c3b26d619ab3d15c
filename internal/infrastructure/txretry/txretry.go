// Package txretry bounds how long a store keeps re-running a transaction that
// lost a race with a concurrent writer.
package txretry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
)

// DefaultMaxAttempts matches the attempt budget of common document stores.
const DefaultMaxAttempts = 5

// Policy is the retry budget of a transaction.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy returns the budget used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     DefaultMaxAttempts,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	// Attempts bound the budget, not wall time.
	b.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = DefaultMaxAttempts
	}
	if attempts == 1 {
		// WithMaxRetries treats zero as unlimited.
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx)
}

// Do runs op until it succeeds or fails with an error retryable rejects.
// When every attempt failed with a retryable error the last one is returned
// wrapped in repository.ErrRetriesExhausted.
func Do(ctx context.Context, p Policy, retryable func(error) bool, op func() error) error {
	attempts := 0
	err := backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx))

	if err != nil && retryable(err) {
		return fmt.Errorf("%w after %d attempts: %w", repository.ErrRetriesExhausted, attempts, err)
	}
	return err
}
