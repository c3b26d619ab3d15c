package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const month = "2026-01"

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func counter(seq int) *entity.BillCounter {
	return &entity.BillCounter{Month: month, LastSequence: seq, LastUpdated: time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)}
}

func TestSaveCounterFirstInsert(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
		version  int64
	}{
		{"inserted", 1, nil, 1},
		{"lost the insert race", 0, domainRepo.ErrConflict, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tx := &billTx{db: db, userID: "uid-1", versions: map[string]int64{month: 0}}

			mock.ExpectExec(`INSERT INTO "bill_counters" .+ ON CONFLICT DO NOTHING`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			c := counter(1)
			err := tx.SaveCounter(context.Background(), c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "uid-1", c.UserID)
			}
			assert.Equal(t, tt.version, tx.versions[month])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSaveCounterVersionGuardedUpdate(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
		version  int64
	}{
		{"updated", 1, nil, 4},
		{"version moved on", 0, domainRepo.ErrConflict, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tx := &billTx{db: db, userID: "uid-1", versions: map[string]int64{month: 3}}

			mock.ExpectExec(`UPDATE "bill_counters" SET .+ WHERE user_id = .+ AND month = .+ AND version = .+`).
				WithArgs(5, sqlmock.AnyArg(), int64(4), "uid-1", month, int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := tx.SaveCounter(context.Background(), counter(5))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.version, tx.versions[month])
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSaveCounterRequiresRead(t *testing.T) {
	db, mock := newMockDB(t)
	tx := &billTx{db: db, userID: "uid-1", versions: map[string]int64{}}

	err := tx.SaveCounter(context.Background(), counter(1))
	assert.ErrorIs(t, err, errUnreadCounter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCounterPassesDriverErrors(t *testing.T) {
	db, mock := newMockDB(t)
	tx := &billTx{db: db, userID: "uid-1", versions: map[string]int64{month: 2}}

	mock.ExpectExec(`UPDATE "bill_counters"`).
		WillReturnError(&pgconn.PgError{Code: pgSerializationFailure})

	err := tx.SaveCounter(context.Background(), counter(3))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainRepo.ErrConflict)
	assert.True(t, isRetryable(err))
	assert.Equal(t, int64(2), tx.versions[month], "a failed write keeps the read version")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict", domainRepo.ErrConflict, true},
		{"wrapped conflict", fmt.Errorf("save counter: %w", domainRepo.ErrConflict), true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"not found", domainRepo.ErrNotFound, false},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}
