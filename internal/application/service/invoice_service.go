package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/render"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"go.uber.org/zap"
)

// InvoiceService renders stored bills. Legacy bills are reconciled against
// the current settings on a copy; the stored bill is never changed.
type InvoiceService struct {
	bills     *BillService
	settings  *SettingsService
	renderers *render.Registry
	log       *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(bills *BillService, settings *SettingsService, renderers *render.Registry, log *zap.Logger) *InvoiceService {
	return &InvoiceService{bills: bills, settings: settings, renderers: renderers, log: log}
}

// Invoice is a rendered document
type Invoice struct {
	Format   enum.InvoiceFormat
	Number   string
	Filename string
	Content  []byte
	Warnings []string
	Notes    []billing.Note
}

// PrepareBill loads a bill and reconciles a copy of it for rendering.
func (s *InvoiceService) PrepareBill(ctx context.Context, userID string, billID uuid.UUID) (*entity.Bill, billing.Reconciliation, error) {
	stored, err := s.bills.loadBill(ctx, userID, billID)
	if err != nil {
		return nil, billing.Reconciliation{}, err
	}
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, billing.Reconciliation{}, err
	}

	bill := stored.Clone()
	rec := billing.Reconcile(bill, settings)
	if !rec.OK {
		s.log.Warn("invoice blocked",
			zap.String("user_id", userID),
			zap.String("bill_id", billID.String()),
			zap.Stringer("status", billing.CompatibilityStatus(stored, settings)),
		)
		return nil, rec, apperror.ErrCompatibilityBlocked
	}
	return bill, rec, nil
}

// Render produces the invoice for a bill in the requested format
func (s *InvoiceService) Render(ctx context.Context, userID string, billID uuid.UUID, format enum.InvoiceFormat) (*Invoice, error) {
	renderer, ok := s.renderers.Get(format)
	if !ok {
		return nil, apperror.NewBadRequestError("Unsupported invoice format")
	}

	bill, rec, err := s.PrepareBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	content, err := renderer.Render(ctx, bill)
	if err != nil {
		if errors.Is(err, render.ErrNotRenderable) {
			return nil, apperror.ErrCompatibilityBlocked
		}
		s.log.Error("failed to render invoice",
			zap.String("bill_id", billID.String()),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return nil, apperror.Wrap(err, "Failed to generate invoice")
	}

	inv := &Invoice{
		Format:   format,
		Number:   bill.DisplayNumber(),
		Filename: "Invoice_" + bill.DisplayNumber() + format.Extension(),
		Content:  content,
		Notes:    rec.Notes,
	}
	if rec.Has(billing.NoteBusinessDetailsFromSettings) {
		inv.Warnings = append(inv.Warnings, billing.LegacyBillWarning)
	}
	return inv, nil
}
