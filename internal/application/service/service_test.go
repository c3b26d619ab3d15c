package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/memstore"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/render"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testUser = "uid-42"

var (
	marchTenth = time.Date(2026, time.March, 10, 11, 30, 0, 0, time.UTC)
	generous   = txretry.Policy{MaxAttempts: 1000, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store     *memstore.Store
	settings  *SettingsService
	inventory *InventoryService
	bills     *BillService
	invoices  *InvoiceService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memstore.New(generous))
}

func newFixtureWithStore(t *testing.T, store *memstore.Store) *fixture {
	t.Helper()
	log := zap.NewNop()
	clock := func() time.Time { return marchTenth }

	settings := NewSettingsService(store.Settings(), log)
	bills := NewBillService(store.Bills(), store.Inventory(), settings, NewSequenceCounter(store.Bills()), time.UTC, log).
		WithClock(clock)

	return &fixture{
		store:     store,
		settings:  settings,
		inventory: NewInventoryService(store.Inventory(), log),
		bills:     bills,
		invoices:  NewInvoiceService(bills, settings, render.NewDefaultRegistry(time.UTC, 32), log),
		dashboard: NewDashboardService(store.Bills(), store.Inventory(), settings, time.UTC).WithClock(clock),
	}
}

func validSettings() UpdateSettingsInput {
	return UpdateSettingsInput{
		BusinessName: "Sharma Stores",
		Address:      "12 MG Road, Pune",
		Phone:        "9123456780",
		Email:        "billing@sharma.example",
		GSTIN:        "27ABCDE1234F1Z5",
		CGSTRate:     dec("9"),
		SGSTRate:     dec("9"),
	}
}

func (f *fixture) configure(t *testing.T) {
	t.Helper()
	_, err := f.settings.UpdateSettings(context.Background(), testUser, validSettings())
	require.NoError(t, err)
}

func (f *fixture) addItem(t *testing.T, name, price string, stock int) *entity.InventoryItem {
	t.Helper()
	item, err := f.inventory.CreateItem(context.Background(), testUser, ItemInput{Name: name, Price: dec(price), Stock: stock})
	require.NoError(t, err)
	return item
}

func (f *fixture) billFor(t *testing.T, items ...BillItemInput) *CreatedBill {
	t.Helper()
	created, err := f.bills.CreateBill(context.Background(), testUser, CreateBillInput{
		Customer: entity.Customer{Name: "Ravi Kumar", Phone: "9876543210"},
		Items:    items,
	})
	require.NoError(t, err)
	return created
}

func requireAppError(t *testing.T, err error, code int, message string) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Equal(t, code, appErr.Code, appErr.Error())
	if message != "" {
		require.Equal(t, message, appErr.Message)
	}
	return appErr
}
