package render

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
)

// The core PDF fonts have no rupee glyph.
const pdfCurrency = "Rs."

const (
	pdfMargin     = 15.0
	pdfLineHeight = 6.0
)

// PDFRenderer renders an A4 invoice with the core Helvetica fonts
type PDFRenderer struct {
	loc      *time.Location
	compress bool
}

func NewPDFRenderer(loc *time.Location) *PDFRenderer {
	return &PDFRenderer{loc: loc, compress: true}
}

func (r *PDFRenderer) Format() enum.InvoiceFormat { return enum.InvoiceFormatPDF }

func (r *PDFRenderer) Render(ctx context.Context, bill *entity.Bill) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := newInvoiceView(bill, r.loc, pdfCurrency)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetTitle("Invoice "+v.Number, true)
	pdf.SetAuthor(v.Business.Name, true)
	pdf.SetCreationDate(bill.Timestamp)
	pdf.SetModificationDate(bill.Timestamp)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*pdfMargin

	writeBusinessHeader(pdf, tr, v, width)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(width, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width/2, pdfLineHeight, tr("Bill #"+v.Number), "", 0, "L", false, 0, "")
	pdf.CellFormat(width/2, pdfLineHeight, v.Date, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(width, pdfLineHeight, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(width, pdfLineHeight, tr(v.Customer.Name), "", 1, "L", false, 0, "")
	pdf.CellFormat(width, pdfLineHeight, tr(v.Customer.Phone), "", 1, "L", false, 0, "")
	if v.Customer.Email != "" {
		pdf.CellFormat(width, pdfLineHeight, tr(v.Customer.Email), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	writeItemTable(pdf, tr, v, width)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeBusinessHeader(pdf *fpdf.Fpdf, tr func(string) string, v *invoiceView, width float64) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(width, 9, tr(v.Business.Name), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if v.Business.Address != "" {
		pdf.MultiCell(width, 5, tr(v.Business.Address), "", "L", false)
	}
	pdf.CellFormat(width, 5, tr("Tel: "+v.Business.Phone), "", 1, "L", false, 0, "")
	if v.Business.Email != "" {
		pdf.CellFormat(width, 5, tr(v.Business.Email), "", 1, "L", false, 0, "")
	}
	if v.Business.GSTIN != "" {
		pdf.CellFormat(width, 5, "GSTIN: "+v.Business.GSTIN, "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	y := pdf.GetY()
	pdf.SetLineWidth(0.5)
	pdf.Line(pdfMargin, y, pdfMargin+width, y)
	pdf.SetLineWidth(0.2)
	pdf.Ln(4)
}

func writeItemTable(pdf *fpdf.Fpdf, tr func(string) string, v *invoiceView, width float64) {
	cols := []float64{width * 0.46, width * 0.12, width * 0.21, width * 0.21}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(229, 231, 235)
	for i, h := range []string{"Item", "Qty", "Price", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range v.Lines {
		pdf.CellFormat(cols[0], 7, tr(l.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, strconv.Itoa(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, v.money(l.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, v.money(l.Subtotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	labelW := cols[0] + cols[1] + cols[2]
	total := func(label, amount string) {
		pdf.CellFormat(labelW, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, v.money(amount), "", 1, "R", false, 0, "")
	}
	total("Subtotal", v.Subtotal)
	total(v.CGSTLabel, v.CGST)
	total(v.SGSTLabel, v.SGST)

	pdf.SetFont("Helvetica", "B", 12)
	total("Total", v.Total)
}
