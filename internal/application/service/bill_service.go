package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/sangkips/cheeta-billing/internal/domain/repository"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/sangkips/cheeta-billing/pkg/pagination"
	"go.uber.org/zap"
)

// IncompleteSettingsWarning is returned with bills created before the
// business entered a name and phone number.
const IncompleteSettingsWarning = "Invoice settings are incomplete. Business details will be taken from your settings when the invoice is generated."

// BillService creates and reads bills
type BillService struct {
	billRepo repository.BillRepository
	itemRepo repository.InventoryRepository
	settings *SettingsService
	counter  *SequenceCounter
	log      *zap.Logger
	now      func() time.Time
	location *time.Location
}

// NewBillService creates a new bill service. Bill months are taken in loc.
func NewBillService(
	billRepo repository.BillRepository,
	itemRepo repository.InventoryRepository,
	settings *SettingsService,
	counter *SequenceCounter,
	loc *time.Location,
	log *zap.Logger,
) *BillService {
	if loc == nil {
		loc = time.Local
	}
	return &BillService{
		billRepo: billRepo,
		itemRepo: itemRepo,
		settings: settings,
		counter:  counter,
		log:      log,
		now:      time.Now,
		location: loc,
	}
}

// WithClock replaces the service clock
func (s *BillService) WithClock(now func() time.Time) *BillService {
	s.now = now
	s.counter.now = now
	return s
}

// BillItemInput is one requested line of a new bill
type BillItemInput struct {
	ItemID   uuid.UUID
	Quantity int
}

// CreateBillInput represents input for creating a bill
type CreateBillInput struct {
	Customer entity.Customer
	Items    []BillItemInput
}

// CreatedBill is a stored bill and anything the caller should be told about it
type CreatedBill struct {
	Bill     *entity.Bill `json:"bill"`
	Warnings []string     `json:"warnings,omitempty"`
}

// BillView is a stored bill with its rendering readiness
type BillView struct {
	Bill                *entity.Bill             `json:"bill"`
	CompatibilityStatus enum.CompatibilityStatus `json:"compatibility_status"`
	NeedsMigration      bool                     `json:"needs_migration"`
}

func validateBill(in *CreateBillInput) error {
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	in.Customer.Email = strings.TrimSpace(in.Customer.Email)

	if in.Customer.Name == "" || in.Customer.Phone == "" {
		return apperror.NewFieldError("customer", "Customer name and phone are required")
	}
	if len(in.Items) == 0 {
		return apperror.NewFieldError("items", "Add at least one item")
	}
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return apperror.NewFieldError(fmt.Sprintf("items[%d].quantity", i), "Quantity must be greater than 0")
		}
	}
	return nil
}

// CreateBill snapshots the requested items and the current settings into a
// new bill and numbers it.
func (s *BillService) CreateBill(ctx context.Context, userID string, input CreateBillInput) (*CreatedBill, error) {
	if err := validateBill(&input); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.ItemID)
	}
	found, err := s.itemRepo.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load items")
	}
	byID := make(map[uuid.UUID]entity.InventoryItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	lines := make([]entity.BillLineItem, 0, len(input.Items))
	for i, it := range input.Items {
		item, ok := byID[it.ItemID]
		if !ok {
			return nil, apperror.NewFieldError(fmt.Sprintf("items[%d].item_id", i), "Item not found")
		}
		lines = append(lines, entity.NewBillLineItem(item.ID.String(), item.Name, item.Price, it.Quantity))
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	totals := billing.Calculate(lines, settings.CGSTRate, settings.SGSTRate)
	bill := &entity.Bill{
		ID:        uuid.New(),
		Customer:  input.Customer,
		Items:     lines,
		Subtotal:  totals.Subtotal,
		CGST:      totals.CGST,
		SGST:      totals.SGST,
		Total:     totals.Total,
		CGSTRate:  settings.CGSTRate,
		SGSTRate:  settings.SGSTRate,
		Timestamp: now,
	}

	result := &CreatedBill{Bill: bill}
	if settings.HasMinimumSettings() {
		bill.BusinessDetails = settings.ToBusinessDetails()
	} else {
		result.Warnings = append(result.Warnings, IncompleteSettingsWarning)
	}

	month := billing.BillMonthOf(now.In(s.location))
	number, err := s.counter.AssignNextBillNumber(ctx, userID, month, bill)
	if err != nil {
		s.log.Error("failed to save bill",
			zap.String("user_id", userID),
			zap.String("month", month),
			zap.Error(err),
		)
		return nil, apperror.NewSaveFailedError("Failed to save bill", err, errors.Is(err, repository.ErrRetriesExhausted))
	}

	s.log.Info("bill created",
		zap.String("user_id", userID),
		zap.String("bill_number", number),
		zap.String("total", billing.FormatAmount(bill.Total)),
	)
	return result, nil
}

// GetBill returns a stored bill as it was written, with its compatibility status
func (s *BillService) GetBill(ctx context.Context, userID string, id uuid.UUID) (*BillView, error) {
	bill, err := s.loadBill(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BillView{
		Bill:                bill,
		CompatibilityStatus: billing.CompatibilityStatus(bill, settings),
		NeedsMigration:      billing.NeedsMigration(bill),
	}, nil
}

func (s *BillService) loadBill(ctx context.Context, userID string, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to load bill")
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// ListBills returns bills newest first
func (s *BillService) ListBills(ctx context.Context, userID string, params *repository.BillFilterParams) (*pagination.PaginatedResult[entity.Bill], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	params.Search = strings.TrimSpace(params.Search)

	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, apperror.NewBadRequestError("End date must not be before start date")
	}

	bills, total, err := s.billRepo.List(ctx, userID, params)
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to list bills")
	}

	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, p), nil
}

// ImportBills stores documents written by older clients. They are kept as
// given and reconciled only when an invoice is generated.
func (s *BillService) ImportBills(ctx context.Context, userID string, bills []*entity.Bill) (int, error) {
	if len(bills) == 0 {
		return 0, apperror.NewFieldError("bills", "Provide at least one bill to import")
	}

	for i, b := range bills {
		field := fmt.Sprintf("bills[%d]", i)
		switch {
		case b == nil:
			return 0, apperror.NewFieldError(field, "Bill is empty")
		case b.BillNumber != nil || b.BillSequence != nil || b.BillMonth != nil:
			return 0, apperror.NewFieldError(field, "Numbered bills cannot be imported")
		case b.Timestamp.UnixMilli() <= 0:
			return 0, apperror.NewFieldError(field+".timestamp", "Timestamp is required")
		case b.Total.IsNegative():
			return 0, apperror.NewFieldError(field+".total", "Total must not be negative")
		}
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		for j := range b.Items {
			if b.Items[j].Price.IsPositive() {
				b.Items[j].SetQuantity(b.Items[j].Quantity)
			}
		}
	}

	if err := s.billRepo.Import(ctx, userID, bills); err != nil {
		s.log.Error("failed to import bills", zap.String("user_id", userID), zap.Int("count", len(bills)), zap.Error(err))
		return 0, apperror.NewSaveFailedError("Failed to import bills", err, false)
	}

	s.log.Info("bills imported", zap.String("user_id", userID), zap.Int("count", len(bills)))
	return len(bills), nil
}
