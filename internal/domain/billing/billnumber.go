// Package billing holds the pure rules behind bill numbering, GST arithmetic
// and the reconciliation of bills written under older schemas.
package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InvalidBillNumber is returned instead of an error when a bill number cannot
// be formatted.
const InvalidBillNumber = "INVALID-00-000"

const monthLayout = "2006-01"

var monthNames = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// CurrentBillMonth returns the current month as YYYY-MM in the local calendar.
func CurrentBillMonth() string {
	return BillMonthOf(time.Now())
}

// BillMonthOf returns the YYYY-MM month t falls in, using t's location.
func BillMonthOf(t time.Time) string {
	return t.Format(monthLayout)
}

// FormatBillNumber renders a month and sequence as MMM-YY-###, e.g.
// ("2026-01", 1) -> "JAN-26-001". Sequences above 999 widen the last field.
func FormatBillNumber(month string, sequence int) string {
	t, err := time.Parse(monthLayout, month)
	if err != nil || t.Year() < 2000 || t.Year() > 2099 || sequence < 1 {
		return InvalidBillNumber
	}
	return fmt.Sprintf("%s-%02d-%03d", monthNames[t.Month()-1], t.Year()%100, sequence)
}

// ParseBillMonth returns the YYYY-MM month encoded in a bill number, or ""
// when the number is malformed.
func ParseBillMonth(billNumber string) string {
	month, yy, _, ok := splitBillNumber(billNumber)
	if !ok {
		return ""
	}
	return fmt.Sprintf("20%s-%02d", yy, month)
}

// ParseSequence returns the sequence encoded in a bill number, or -1 when the
// number is malformed.
func ParseSequence(billNumber string) int {
	_, _, seq, ok := splitBillNumber(billNumber)
	if !ok {
		return -1
	}
	return seq
}

func splitBillNumber(billNumber string) (month int, yy string, seq int, ok bool) {
	parts := strings.Split(billNumber, "-")
	if len(parts) != 3 {
		return 0, "", 0, false
	}
	for i, name := range monthNames {
		if parts[0] == name {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return 0, "", 0, false
	}
	if len(parts[1]) != 2 || !allDigits(parts[1]) {
		return 0, "", 0, false
	}
	if len(parts[2]) < 3 || !allDigits(parts[2]) {
		return 0, "", 0, false
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, "", 0, false
	}
	return month, parts[1], seq, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
