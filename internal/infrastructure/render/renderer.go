package render

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/billing"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
)

// dateLayout is how bill timestamps appear on every invoice format.
const dateLayout = "02 Jan 2006, 03:04 PM"

// ErrNotRenderable is returned for bills without a valid business snapshot.
// Legacy bills must be reconciled before they are rendered.
var ErrNotRenderable = errors.New("render: bill has no valid business details")

// Renderer turns a reconciled bill into an invoice document.
type Renderer interface {
	Format() enum.InvoiceFormat
	Render(ctx context.Context, bill *entity.Bill) ([]byte, error)
}

// Registry looks renderers up by format
type Registry struct {
	renderers map[enum.InvoiceFormat]Renderer
}

// NewRegistry registers rs. A later renderer replaces an earlier one of the
// same format.
func NewRegistry(rs ...Renderer) *Registry {
	m := make(map[enum.InvoiceFormat]Renderer, len(rs))
	for _, r := range rs {
		m[r.Format()] = r
	}
	return &Registry{renderers: m}
}

// NewDefaultRegistry registers every renderer the service ships with.
func NewDefaultRegistry(loc *time.Location, receiptWidth int) *Registry {
	return NewRegistry(
		NewPDFRenderer(loc),
		NewHTMLRenderer(loc),
		NewReceiptRenderer(loc, receiptWidth),
		NewPNGRenderer(loc),
	)
}

func (r *Registry) Get(format enum.InvoiceFormat) (Renderer, bool) {
	rr, ok := r.renderers[format]
	return rr, ok
}

// invoiceView is a bill with every value formatted for display.
type invoiceView struct {
	Business  entity.BusinessDetails
	Number    string
	Date      string
	Customer  entity.Customer
	Lines     []lineView
	Currency  string
	Subtotal  string
	CGSTLabel string
	CGST      string
	SGSTLabel string
	SGST      string
	Total     string
}

type lineView struct {
	Name     string
	Quantity int
	Price    string
	Subtotal string
}

func newInvoiceView(bill *entity.Bill, loc *time.Location, currency string) (*invoiceView, error) {
	if bill == nil || !bill.BusinessDetails.IsValid() {
		return nil, ErrNotRenderable
	}
	if loc == nil {
		loc = time.Local
	}

	v := &invoiceView{
		Business:  *bill.BusinessDetails,
		Number:    bill.DisplayNumber(),
		Date:      bill.Timestamp.In(loc).Format(dateLayout),
		Customer:  bill.Customer,
		Currency:  currency,
		Subtotal:  billing.FormatAmount(bill.Subtotal),
		CGSTLabel: "CGST (" + billing.FormatRate(bill.CGSTRate) + "%)",
		CGST:      billing.FormatAmount(bill.CGST),
		SGSTLabel: "SGST (" + billing.FormatRate(bill.SGSTRate) + "%)",
		SGST:      billing.FormatAmount(bill.SGST),
		Total:     billing.FormatAmount(bill.Total),
	}
	for _, it := range bill.Items {
		sub := it.Subtotal
		if sub.IsZero() {
			sub = billing.LineSubtotal(it.Price, it.Quantity)
		}
		v.Lines = append(v.Lines, lineView{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    billing.FormatAmount(it.Price),
			Subtotal: billing.FormatAmount(sub),
		})
	}
	return v, nil
}

func (v *invoiceView) money(amount string) string {
	return v.Currency + " " + amount
}
