package service

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

const minPhoneLength = 10

// SettingsService manages the invoice settings of a business
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	log          *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, log *zap.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, log: log}
}

// UpdateSettingsInput is the full set of invoice settings
type UpdateSettingsInput struct {
	BusinessName string
	Address      string
	Phone        string
	Email        string
	GSTIN        string
	CGSTRate     decimal.Decimal
	SGSTRate     decimal.Decimal
}

// GetSettings returns the user's settings, or the defaults if none were saved
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*entity.InvoiceSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load invoice settings")
	}
	if settings == nil {
		return entity.DefaultInvoiceSettings(userID), nil
	}
	return settings, nil
}

// UpdateSettings validates and stores the settings and marks them completed
func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, input UpdateSettingsInput) (*entity.InvoiceSettings, error) {
	input = normalizeSettings(input)
	if errs := ValidateSettings(input); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings.BusinessName = input.BusinessName
	settings.Address = input.Address
	settings.Phone = input.Phone
	settings.Email = input.Email
	settings.GSTIN = input.GSTIN
	settings.CGSTRate = input.CGSTRate
	settings.SGSTRate = input.SGSTRate
	settings.SettingsCompleted = true

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		s.log.Error("failed to save invoice settings", zap.String("user_id", userID), zap.Error(err))
		return nil, apperror.Wrap(err, "Failed to save invoice settings")
	}
	return settings, nil
}

func normalizeSettings(in UpdateSettingsInput) UpdateSettingsInput {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.GSTIN = strings.ToUpper(strings.TrimSpace(in.GSTIN))
	return in
}

// ValidateSettings returns every rule the input breaks
func ValidateSettings(in UpdateSettingsInput) []apperror.FieldError {
	var errs []apperror.FieldError

	if in.BusinessName == "" {
		errs = append(errs, apperror.FieldError{Field: "business_name", Message: "Business name is required"})
	}

	switch {
	case in.Phone == "":
		errs = append(errs, apperror.FieldError{Field: "phone", Message: "Phone number is required"})
	case utf8.RuneCountInString(in.Phone) < minPhoneLength:
		errs = append(errs, apperror.FieldError{Field: "phone", Message: "Phone number must be at least 10 digits"})
	}

	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			errs = append(errs, apperror.FieldError{Field: "email", Message: "Email must be a valid email address"})
		}
	}

	if in.GSTIN != "" && !gstinPattern.MatchString(in.GSTIN) {
		errs = append(errs, apperror.FieldError{Field: "gstin", Message: "GSTIN must be 15 characters (format: 22AAAAA0000A1Z5)"})
	}

	if !billing.ValidRate(in.CGSTRate) {
		errs = append(errs, apperror.FieldError{Field: "cgst_rate", Message: "GST rate must be between 0% and 28%"})
	}
	if !billing.ValidRate(in.SGSTRate) {
		errs = append(errs, apperror.FieldError{Field: "sgst_rate", Message: "GST rate must be between 0% and 28%"})
	}

	return errs
}
