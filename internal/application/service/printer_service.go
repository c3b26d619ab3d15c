package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/sangkips/cheeta-billing/pkg/apperror"
	"github.com/sangkips/cheeta-billing/pkg/printer"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

var errNoPrinter = apperror.NewAppError(http.StatusServiceUnavailable, "No printer is configured")

// PrinterService sends receipts to the configured thermal printer.
type PrinterService struct {
	printer  printer.Printer
	invoices *InvoiceService
	log      *zap.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, invoices *InvoiceService, log *zap.Logger) *PrinterService {
	return &PrinterService{printer: p, invoices: invoices, log: log}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Error      string `json:"error,omitempty"`
}

// PrintResult describes a receipt sent to the printer
type PrintResult struct {
	BillNumber string   `json:"bill_number"`
	Bytes      int      `json:"bytes"`
	Warnings   []string `json:"warnings,omitempty"`
}

// GetStatus reports whether the printer can be reached.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	status := &PrinterStatus{
		Configured: s.printer.Type() != printer.TypeNone,
		Type:       s.printer.Type(),
	}
	if !status.Configured {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.printer.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Connected = true
	return status
}

// PrintBill renders the receipt for a bill and prints it.
func (s *PrinterService) PrintBill(ctx context.Context, userID string, billID uuid.UUID) (*PrintResult, error) {
	if s.printer.Type() == printer.TypeNone {
		return nil, errNoPrinter
	}

	inv, err := s.invoices.Render(ctx, userID, billID, enum.InvoiceFormatReceipt)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, inv.Content); err != nil {
		s.log.Error("print failed",
			zap.String("bill_id", billID.String()),
			zap.String("printer", s.printer.Type()),
			zap.Error(err),
		)
		if errors.Is(err, printer.ErrNotConfigured) {
			return nil, errNoPrinter
		}
		return nil, &apperror.AppError{Code: http.StatusBadGateway, Message: "Printer is not responding", Err: err}
	}

	return &PrintResult{BillNumber: inv.Number, Bytes: len(inv.Content), Warnings: inv.Warnings}, nil
}
