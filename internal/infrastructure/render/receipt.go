package render

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/sangkips/cheeta-billing/pkg/printer"
)

const receiptCurrency = "Rs."

// ReceiptRenderer renders an ESC/POS stream for thermal printers
type ReceiptRenderer struct {
	loc   *time.Location
	width int
}

// NewReceiptRenderer renders for paper of width characters per line.
func NewReceiptRenderer(loc *time.Location, width int) *ReceiptRenderer {
	if width <= 0 {
		width = printer.Width58mm
	}
	return &ReceiptRenderer{loc: loc, width: width}
}

func (r *ReceiptRenderer) Format() enum.InvoiceFormat { return enum.InvoiceFormatReceipt }

func (r *ReceiptRenderer) Render(ctx context.Context, bill *entity.Bill) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := newInvoiceView(bill, r.loc, receiptCurrency)
	if err != nil {
		return nil, err
	}

	rc := printer.NewReceipt(r.width)

	rc.Align(printer.AlignCenter).Bold(true).Size(printer.SizeDouble).
		Line(v.Business.Name).
		Size(printer.SizeNormal).Bold(false)
	if v.Business.Address != "" {
		rc.Line(v.Business.Address)
	}
	rc.Line("Tel: " + v.Business.Phone)
	if v.Business.GSTIN != "" {
		rc.Line("GSTIN: " + v.Business.GSTIN)
	}
	rc.Rule('=')
	rc.Bold(true).Line("INVOICE").Bold(false)

	rc.Align(printer.AlignLeft).
		Line("Bill #" + v.Number).
		Line(v.Date).
		Rule('-').
		Line("Customer: " + v.Customer.Name).
		Line("Phone: " + v.Customer.Phone)
	if v.Customer.Email != "" {
		rc.Line("Email: " + v.Customer.Email)
	}
	rc.Rule('-')

	for _, l := range v.Lines {
		rc.Columns(l.Name, v.money(l.Subtotal))
		rc.Line(fmt.Sprintf("  %d x %s", l.Quantity, v.money(l.Price)))
	}
	rc.Rule('-')

	rc.Columns("Subtotal", v.money(v.Subtotal)).
		Columns(v.CGSTLabel, v.money(v.CGST)).
		Columns(v.SGSTLabel, v.money(v.SGST)).
		Bold(true).
		Columns("TOTAL", v.money(v.Total)).
		Bold(false).
		Rule('=')

	rc.Align(printer.AlignCenter).Line("Thank you!").Cut()
	return rc.Bytes(), nil
}
