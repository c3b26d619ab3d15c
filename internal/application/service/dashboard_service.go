package service

import (
	"context"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DashboardService handles dashboard statistics
type DashboardService struct {
	billRepo repository.BillRepository
	itemRepo repository.InventoryRepository
	settings *SettingsService
	now      func() time.Time
	location *time.Location
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(billRepo repository.BillRepository, itemRepo repository.InventoryRepository, settings *SettingsService, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		billRepo: billRepo,
		itemRepo: itemRepo,
		settings: settings,
		now:      time.Now,
		location: loc,
	}
}

// WithClock replaces the service clock
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// DashboardStats represents the dashboard statistics
type DashboardStats struct {
	SettingsCompleted  bool            `json:"settings_completed"`
	HasMinimumSettings bool            `json:"has_minimum_settings"`
	BillMonth          string          `json:"bill_month"`
	MonthBills         int64           `json:"month_bills"`
	MonthRevenue       decimal.Decimal `json:"month_revenue"`
	TotalBills         int64           `json:"total_bills"`
	InventoryItems     int64           `json:"inventory_items"`
	OutOfStockItems    int64           `json:"out_of_stock_items"`
	LastBillNumber     string          `json:"last_bill_number,omitempty"`
}

// GetStats returns the dashboard for the current bill month
func (s *DashboardService) GetStats(ctx context.Context, userID string) (*DashboardStats, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	month := billing.BillMonthOf(now)

	stats := &DashboardStats{
		SettingsCompleted:  settings.SettingsCompleted,
		HasMinimumSettings: settings.HasMinimumSettings(),
		BillMonth:          month,
	}

	monthly, err := s.billRepo.Summarize(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load bill summary")
	}
	stats.MonthBills = monthly.Count
	stats.MonthRevenue = monthly.Revenue

	all, err := s.billRepo.Summarize(ctx, userID, time.Time{}, now.AddDate(100, 0, 0))
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load bill summary")
	}
	stats.TotalBills = all.Count

	if stats.InventoryItems, err = s.itemRepo.Count(ctx, userID); err != nil {
		return nil, apperror.Wrap(err, "Failed to count items")
	}
	if stats.OutOfStockItems, err = s.itemRepo.CountOutOfStock(ctx, userID); err != nil {
		return nil, apperror.Wrap(err, "Failed to count items")
	}

	counter, err := s.billRepo.GetCounter(ctx, userID, month)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load bill counter")
	}
	if counter != nil && counter.LastSequence > 0 {
		stats.LastBillNumber = billing.FormatBillNumber(month, counter.LastSequence)
	}

	return stats, nil
}
