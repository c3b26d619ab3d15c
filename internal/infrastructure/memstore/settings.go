package memstore

import (
	"context"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
)

type settingsRepository struct {
	s *Store
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID string) (*entity.InvoiceSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.settings[userID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entity.InvoiceSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.settings[settings.UserID]; ok {
		settings.CreatedAt = existing.CreatedAt
	} else {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	cp := *settings
	r.s.settings[settings.UserID] = &cp
	return nil
}
