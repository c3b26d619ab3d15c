package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) GetByUserID(ctx context.Context, userID string) (*entity.InvoiceSettings, error) {
	args := m.Called(ctx, userID)
	settings, _ := args.Get(0).(*entity.InvoiceSettings)
	return settings, args.Error(1)
}

func (m *mockSettingsRepository) Save(ctx context.Context, settings *entity.InvoiceSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func TestGetSettingsDefaults(t *testing.T) {
	f := newFixture(t)

	settings, err := f.settings.GetSettings(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultBusinessName, settings.BusinessName)
	assert.True(t, settings.CGSTRate.Equal(dec("9")))
	assert.True(t, settings.SGSTRate.Equal(dec("9")))
	assert.False(t, settings.SettingsCompleted)
	assert.False(t, settings.HasMinimumSettings())
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	input := validSettings()
	input.GSTIN = "  27abcde1234f1z5 "
	input.BusinessName = "  Sharma Stores "

	saved, err := f.settings.UpdateSettings(context.Background(), testUser, input)
	require.NoError(t, err)
	assert.Equal(t, "27ABCDE1234F1Z5", saved.GSTIN)
	assert.Equal(t, "Sharma Stores", saved.BusinessName)
	assert.True(t, saved.SettingsCompleted)

	loaded, err := f.settings.GetSettings(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, loaded.HasMinimumSettings())
	assert.True(t, loaded.TotalGSTRate().Equal(dec("18")))
}

func TestUpdateSettingsAllowsEmptyOptionalFields(t *testing.T) {
	f := newFixture(t)
	input := validSettings()
	input.GSTIN = ""
	input.Email = ""
	input.Address = ""
	input.CGSTRate = dec("0")
	input.SGSTRate = dec("28")

	_, err := f.settings.UpdateSettings(context.Background(), testUser, input)
	assert.NoError(t, err)
}

func TestUpdateSettingsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UpdateSettingsInput)
		field  string
		msg    string
	}{
		{"missing name", func(in *UpdateSettingsInput) { in.BusinessName = " " }, "business_name", "Business name is required"},
		{"missing phone", func(in *UpdateSettingsInput) { in.Phone = "" }, "phone", "Phone number is required"},
		{"short phone", func(in *UpdateSettingsInput) { in.Phone = "98765" }, "phone", "Phone number must be at least 10 digits"},
		{"bad gstin", func(in *UpdateSettingsInput) { in.GSTIN = "22AAAAA0000A1" }, "gstin", "GSTIN must be 15 characters (format: 22AAAAA0000A1Z5)"},
		{"gstin without Z", func(in *UpdateSettingsInput) { in.GSTIN = "22AAAAA0000A1X5" }, "gstin", "GSTIN must be 15 characters (format: 22AAAAA0000A1Z5)"},
		{"bad email", func(in *UpdateSettingsInput) { in.Email = "not-an-email" }, "email", "Email must be a valid email address"},
		{"cgst too high", func(in *UpdateSettingsInput) { in.CGSTRate = dec("28.5") }, "cgst_rate", "GST rate must be between 0% and 28%"},
		{"sgst negative", func(in *UpdateSettingsInput) { in.SGSTRate = dec("-1") }, "sgst_rate", "GST rate must be between 0% and 28%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			input := validSettings()
			tt.mutate(&input)

			_, err := f.settings.UpdateSettings(context.Background(), testUser, input)
			appErr := requireAppError(t, err, http.StatusUnprocessableEntity, "Validation failed")
			require.Len(t, appErr.Errors, 1)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
			assert.Equal(t, tt.msg, appErr.Errors[0].Message)

			settings, err := f.settings.GetSettings(context.Background(), testUser)
			require.NoError(t, err)
			assert.False(t, settings.SettingsCompleted)
		})
	}
}

func TestUpdateSettingsReportsAllErrors(t *testing.T) {
	errs := ValidateSettings(UpdateSettingsInput{GSTIN: "BAD", CGSTRate: dec("30"), SGSTRate: dec("9")})

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"business_name", "phone", "gstin", "cgst_rate"}, fields)
}

func TestUpdateSettingsStoreFailure(t *testing.T) {
	repo := new(mockSettingsRepository)
	repo.On("GetByUserID", mock.Anything, testUser).Return(nil, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(s *entity.InvoiceSettings) bool {
		return s.UserID == testUser && s.SettingsCompleted
	})).Return(errors.New("connection reset"))

	svc := NewSettingsService(repo, zap.NewNop())
	_, err := svc.UpdateSettings(context.Background(), testUser, validSettings())

	requireAppError(t, err, http.StatusInternalServerError, "Failed to save invoice settings")
	repo.AssertExpectations(t)
}

func TestGetSettingsStoreFailure(t *testing.T) {
	repo := new(mockSettingsRepository)
	repo.On("GetByUserID", mock.Anything, testUser).Return(nil, errors.New("timeout"))

	_, err := NewSettingsService(repo, zap.NewNop()).GetSettings(context.Background(), testUser)
	assert.True(t, apperror.IsAppError(err))
	requireAppError(t, err, http.StatusInternalServerError, "Failed to load invoice settings")
}
