package billing

import (
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// MaxGSTRate is the highest CGST or SGST percentage accepted by settings.
	MaxGSTRate = decimal.NewFromInt(28)
)

// Totals is the GST breakdown of a bill at full precision.
type Totals struct {
	Subtotal decimal.Decimal
	CGST     decimal.Decimal
	SGST     decimal.Decimal
	Total    decimal.Decimal
}

// Calculate sums the line items and applies both GST rates. Rates are trusted;
// they are range checked where settings are saved.
func Calculate(items []entity.BillLineItem, cgstRate, sgstRate decimal.Decimal) Totals {
	return FromSubtotal(SumSubtotals(items), cgstRate, sgstRate)
}

// FromSubtotal applies both GST rates to an already known subtotal.
func FromSubtotal(subtotal, cgstRate, sgstRate decimal.Decimal) Totals {
	cgst := Tax(subtotal, cgstRate)
	sgst := Tax(subtotal, sgstRate)
	return Totals{
		Subtotal: subtotal,
		CGST:     cgst,
		SGST:     sgst,
		Total:    subtotal.Add(cgst).Add(sgst),
	}
}

// SumSubtotals adds up the line subtotals. A line stored without a subtotal
// contributes price times quantity.
func SumSubtotals(items []entity.BillLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sub := it.Subtotal
		if sub.IsZero() {
			sub = LineSubtotal(it.Price, it.Quantity)
		}
		sum = sum.Add(sub)
	}
	return sum
}

// LineSubtotal is price times quantity.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Tax returns rate percent of amount.
func Tax(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// BackCalculateSubtotal recovers the pre-tax amount from a GST inclusive total:
// total / (1 + (cgstRate+sgstRate)/100). It is exact only when the total was
// computed with the same rates.
func BackCalculateSubtotal(total, cgstRate, sgstRate decimal.Decimal) decimal.Decimal {
	return total.Mul(hundred).Div(hundred.Add(cgstRate).Add(sgstRate))
}

// ValidRate reports whether rate lies within [0, 28].
func ValidRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(MaxGSTRate)
}

// Round2 rounds half away from zero to two decimal places. It is used for
// display only; stored amounts keep full precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders an amount rounded to two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatRate renders a percentage with one decimal place, e.g. "9.0".
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(1)
}
