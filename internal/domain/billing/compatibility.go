package billing

import (
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
)

// LegacyBillWarning is shown whenever an invoice is rendered with business
// details taken from the current settings.
const LegacyBillWarning = "This bill was created before business details were stored. Current settings will be used for PDF/Image generation."

// Note names an approximation applied while reconciling a bill.
type Note string

const (
	NoteBusinessDetailsFromSettings Note = "business_details_from_current_settings"
	NoteRatesFromSettings           Note = "gst_rates_from_current_settings"
	NoteTaxRecomputed               Note = "gst_recomputed_from_subtotal"
	NoteSubtotalFromItems           Note = "subtotal_from_line_items"
	NoteSubtotalBackCalculated      Note = "subtotal_back_calculated_from_total"
)

// Reconciliation is the outcome of bringing a bill up to the current schema.
type Reconciliation struct {
	OK    bool
	Notes []Note
}

// Approximated reports whether any field was reconstructed.
func (r Reconciliation) Approximated() bool {
	return len(r.Notes) > 0
}

// Has reports whether note was applied.
func (r Reconciliation) Has(note Note) bool {
	for _, n := range r.Notes {
		if n == note {
			return true
		}
	}
	return false
}

// NeedsMigration reports whether the bill was stored without a business snapshot.
func NeedsMigration(bill *entity.Bill) bool {
	return bill != nil && bill.BusinessDetails == nil
}

// EnsureCompatibility fills the fields a legacy bill is missing so it can be
// rendered. Only the given value is modified. It returns false when the bill
// cannot be rendered with the current settings.
func EnsureCompatibility(bill *entity.Bill, settings *entity.InvoiceSettings) bool {
	return Reconcile(bill, settings).OK
}

// Reconcile behaves like EnsureCompatibility and also reports which fields
// were approximated.
func Reconcile(bill *entity.Bill, settings *entity.InvoiceSettings) Reconciliation {
	if bill == nil {
		return Reconciliation{}
	}
	// Snapshots are frozen, even invalid ones.
	if bill.BusinessDetails != nil {
		return Reconciliation{OK: bill.BusinessDetails.IsValid()}
	}
	if !settings.HasMinimumSettings() {
		return Reconciliation{}
	}

	r := Reconciliation{OK: true}
	bill.BusinessDetails = settings.ToBusinessDetails()
	r.Notes = append(r.Notes, NoteBusinessDetailsFromSettings)

	if bill.CGSTRate.IsZero() && bill.SGSTRate.IsZero() {
		bill.CGSTRate = settings.CGSTRate
		bill.SGSTRate = settings.SGSTRate
		r.Notes = append(r.Notes, NoteRatesFromSettings)
	}

	if taxMissing(bill) && bill.Subtotal.IsPositive() {
		applyTax(bill)
		r.Notes = append(r.Notes, NoteTaxRecomputed)
	}

	if bill.Subtotal.IsZero() {
		if sum := SumSubtotals(bill.Items); sum.IsPositive() {
			bill.Subtotal = sum
			r.Notes = append(r.Notes, NoteSubtotalFromItems)
			if taxMissing(bill) {
				applyTax(bill)
				r.Notes = append(r.Notes, NoteTaxRecomputed)
			}
		} else if bill.Total.IsPositive() {
			bill.Subtotal = BackCalculateSubtotal(bill.Total, bill.CGSTRate, bill.SGSTRate)
			bill.CGST = Tax(bill.Subtotal, bill.CGSTRate)
			bill.SGST = Tax(bill.Subtotal, bill.SGSTRate)
			r.Notes = append(r.Notes, NoteSubtotalBackCalculated)
		}
	}
	return r
}

// CompatibilityStatus classifies a bill without modifying it.
func CompatibilityStatus(bill *entity.Bill, settings *entity.InvoiceSettings) enum.CompatibilityStatus {
	switch {
	case bill == nil:
		return enum.CompatibilityInvalid
	case bill.BusinessDetails != nil:
		if bill.BusinessDetails.IsValid() {
			return enum.CompatibilityReady
		}
		return enum.CompatibilityInvalid
	case settings.HasMinimumSettings():
		return enum.CompatibilityLegacyRecoverable
	default:
		return enum.CompatibilityLegacyBlocked
	}
}

func taxMissing(bill *entity.Bill) bool {
	return bill.CGST.IsZero() && bill.SGST.IsZero()
}

// applyTax derives the GST split from the subtotal. A stored total is what the
// customer paid and is only filled in when missing.
func applyTax(bill *entity.Bill) {
	t := FromSubtotal(bill.Subtotal, bill.CGSTRate, bill.SGSTRate)
	bill.CGST = t.CGST
	bill.SGST = t.SGST
	if bill.Total.IsZero() {
		bill.Total = t.Total
	}
}
