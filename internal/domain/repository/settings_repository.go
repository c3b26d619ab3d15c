package repository

import (
	"context"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
)

// SettingsRepository defines the interface for invoice settings data access
type SettingsRepository interface {
	// GetByUserID returns nil when the user has never saved settings.
	GetByUserID(ctx context.Context, userID string) (*entity.InvoiceSettings, error)
	Save(ctx context.Context, settings *entity.InvoiceSettings) error
}
