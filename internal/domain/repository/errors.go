package repository

import "errors"

var (
	// ErrConflict is returned by a transaction whose reads were invalidated by
	// a concurrent commit. The transaction is retried.
	ErrConflict = errors.New("repository: concurrent modification")
	// ErrRetriesExhausted wraps the last conflict once the retry budget is spent.
	// Nothing from the transaction was committed.
	ErrRetriesExhausted = errors.New("repository: transaction retries exhausted")
	// ErrNotFound is returned by writes that matched no document. Reads
	// report a missing document as a nil result instead.
	ErrNotFound = errors.New("repository: not found")
)
