package repository

import (
	"context"
	"errors"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/cheeta-billing/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) domainRepo.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID string) (*entity.InvoiceSettings, error) {
	var settings entity.InvoiceSettings
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID)).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.InvoiceSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name", "address", "phone", "email", "gstin",
			"cgst_rate", "sgst_rate", "settings_completed", "updated_at",
		}),
	}).Create(settings).Error
}
