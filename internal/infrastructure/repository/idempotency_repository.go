package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).Where("key = ?", key).First(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

// Reserve relies on the unique (user_id, key) index: of two concurrent
// inserts exactly one affects a row.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.Scopes(OwnedBy(ikey.UserID)).
		Where("key = ? AND expires_at < ?", ikey.Key, time.Now()).
		Delete(&entity.IdempotencyKey{}).Error; err != nil {
		return false, err
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(ikey)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	res := r.db.WithContext(ctx).Model(&entity.IdempotencyKey{}).
		Scopes(OwnedBy(ikey.UserID)).
		Where("key = ?", ikey.Key).
		Updates(map[string]interface{}{
			"response_code": ikey.ResponseCode,
			"response_body": ikey.ResponseBody,
			"expires_at":    ikey.ExpiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID string) error {
	return r.db.WithContext(ctx).Scopes(OwnedBy(userID)).
		Where("key = ? AND response_code = 0", key).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{}).Error
}
