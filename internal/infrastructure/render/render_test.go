package render

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleBill() *entity.Bill {
	number := "JAN-26-001"
	return &entity.Bill{
		ID:         uuid.MustParse("7d4f3c1e-8a9b-4c2d-9e0f-1a2b3c4d5e6f"),
		BillNumber: &number,
		Customer:   entity.Customer{Name: "Ravi Kumar", Phone: "9876543210", Email: "ravi@example.com"},
		Items: []entity.BillLineItem{
			entity.NewBillLineItem("item-1", "Basmati Rice", dec("50"), 2),
		},
		Subtotal: dec("100"),
		CGST:     dec("9"),
		SGST:     dec("9"),
		Total:    dec("118"),
		CGSTRate: dec("9"),
		SGSTRate: dec("9"),
		BusinessDetails: &entity.BusinessDetails{
			Name:    "Sharma Stores",
			Address: "12 MG Road, Pune",
			Phone:   "9123456780",
			GSTIN:   "27ABCDE1234F1Z5",
		},
		Timestamp: time.Date(2026, time.January, 5, 15, 4, 0, 0, time.UTC),
	}
}

func TestHTMLRenderer(t *testing.T) {
	out, err := NewHTMLRenderer(time.UTC).Render(context.Background(), sampleBill())
	require.NoError(t, err)

	html := string(out)
	for _, want := range []string{
		"Sharma Stores",
		"12 MG Road, Pune",
		"Tel: 9123456780",
		"GSTIN: 27ABCDE1234F1Z5",
		"INVOICE",
		"Bill #JAN-26-001",
		"05 Jan 2026, 03:04 PM",
		"Ravi Kumar",
		"ravi@example.com",
		"Basmati Rice",
		"₹100.00",
		"CGST (9.0%)",
		"SGST (9.0%)",
		"₹118.00",
	} {
		assert.Contains(t, html, want)
	}
}

func TestHTMLRendererEscapesContent(t *testing.T) {
	bill := sampleBill()
	bill.Customer.Name = "<script>alert(1)</script>"

	out, err := NewHTMLRenderer(time.UTC).Render(context.Background(), bill)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>")
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestLegacyBillShowsDocumentID(t *testing.T) {
	bill := sampleBill()
	bill.BillNumber = nil

	out, err := NewHTMLRenderer(time.UTC).Render(context.Background(), bill)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Bill #7d4f3c1e-8a9b-4c2d-9e0f-1a2b3c4d5e6f")
}

func TestDateUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	out, err := NewHTMLRenderer(loc).Render(context.Background(), sampleBill())
	require.NoError(t, err)
	assert.Contains(t, string(out), "05 Jan 2026, 08:34 PM")
}

func TestRenderersRejectUnreconciledBills(t *testing.T) {
	registry := NewDefaultRegistry(time.UTC, 32)

	for _, f := range []enum.InvoiceFormat{enum.InvoiceFormatPDF, enum.InvoiceFormatHTML, enum.InvoiceFormatReceipt, enum.InvoiceFormatPNG} {
		r, ok := registry.Get(f)
		require.True(t, ok, f)

		legacy := sampleBill()
		legacy.BusinessDetails = nil
		_, err := r.Render(context.Background(), legacy)
		assert.ErrorIs(t, err, ErrNotRenderable, f)

		invalid := sampleBill()
		invalid.BusinessDetails.Phone = ""
		_, err = r.Render(context.Background(), invalid)
		assert.ErrorIs(t, err, ErrNotRenderable, f)
	}
}

func TestRenderersHonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	registry := NewDefaultRegistry(time.UTC, 32)
	for _, f := range []enum.InvoiceFormat{enum.InvoiceFormatPDF, enum.InvoiceFormatHTML, enum.InvoiceFormatReceipt, enum.InvoiceFormatPNG} {
		r, _ := registry.Get(f)
		_, err := r.Render(ctx, sampleBill())
		assert.ErrorIs(t, err, context.Canceled, f)
	}
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer(time.UTC)
	r.compress = false

	out, err := r.Render(context.Background(), sampleBill())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	for _, want := range []string{
		"Sharma Stores",
		"Tel: 9123456780",
		"GSTIN: 27ABCDE1234F1Z5",
		"INVOICE",
		"Bill #JAN-26-001",
		"05 Jan 2026, 03:04 PM",
		"Rs. 118.00",
	} {
		assert.Contains(t, string(out), want)
	}
}

func TestPDFRendererCompressed(t *testing.T) {
	out, err := NewPDFRenderer(time.UTC).Render(context.Background(), sampleBill())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.HasSuffix(bytes.TrimSpace(out), []byte("%%EOF")))
}

func TestReceiptRenderer(t *testing.T) {
	out, err := NewReceiptRenderer(time.UTC, 32).Render(context.Background(), sampleBill())
	require.NoError(t, err)

	receipt := string(out)
	for _, want := range []string{
		"Sharma Stores",
		"Tel: 9123456780",
		"INVOICE",
		"Bill #JAN-26-001",
		"Customer: Ravi Kumar",
		"  2 x Rs. 50.00",
		"Rs. 118.00",
		"CGST (9.0%)",
	} {
		assert.Contains(t, receipt, want)
	}
	assert.NotContains(t, receipt, "₹")
}

func TestPNGRenderer(t *testing.T) {
	r := NewPNGRenderer(time.UTC)
	assert.Equal(t, enum.InvoiceFormatPNG, r.Format())

	out, err := r.Render(context.Background(), sampleBill())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")))

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, pngWidth, img.Bounds().Dx())

	// The header fill behind the item table is drawn in grey.
	var grey int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if c := color.RGBAModel.Convert(img.At(pngWidth-pngMargin-2, y)).(color.RGBA); c == headerFill {
			grey++
		}
	}
	assert.Positive(t, grey)

	longer := sampleBill()
	for i := 0; i < 10; i++ {
		longer.Items = append(longer.Items, entity.NewBillLineItem("item-x", "Toor Dal with a very long descriptive product name", dec("120"), 1))
	}
	more, err := r.Render(context.Background(), longer)
	require.NoError(t, err)
	tall, err := png.Decode(bytes.NewReader(more))
	require.NoError(t, err)
	assert.Greater(t, tall.Bounds().Dy(), img.Bounds().Dy())
}

func TestFitText(t *testing.T) {
	require.NoError(t, loadPNGFonts())
	faces, err := newPNGFaces()
	require.NoError(t, err)
	defer faces.close()

	assert.Equal(t, "Rice", fitText(faces.body, "Rice", 300))

	fitted := fitText(faces.body, "Basmati Rice Premium Long Grain Extra Aged", 120)
	assert.True(t, strings.HasSuffix(fitted, "..."))
	assert.LessOrEqual(t, font.MeasureString(faces.body, fitted).Ceil(), 120)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(NewHTMLRenderer(time.UTC))

	_, ok := registry.Get(enum.InvoiceFormatHTML)
	assert.True(t, ok)
	_, ok = registry.Get(enum.InvoiceFormatPDF)
	assert.False(t, ok)
}
