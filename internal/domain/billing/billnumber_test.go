package billing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBillNumber(t *testing.T) {
	tests := []struct {
		name     string
		month    string
		sequence int
		want     string
	}{
		{name: "first bill of january", month: "2026-01", sequence: 1, want: "JAN-26-001"},
		{name: "december", month: "2026-12", sequence: 42, want: "DEC-26-042"},
		{name: "three digits", month: "2030-07", sequence: 999, want: "JUL-30-999"},
		{name: "widens past 999", month: "2026-03", sequence: 1000, want: "MAR-26-1000"},
		{name: "year 2000", month: "2000-02", sequence: 5, want: "FEB-00-005"},
		{name: "malformed month", month: "bad", sequence: 1, want: InvalidBillNumber},
		{name: "month out of range", month: "2026-13", sequence: 1, want: InvalidBillNumber},
		{name: "single digit month", month: "2026-1", sequence: 1, want: InvalidBillNumber},
		{name: "year before 2000", month: "1999-12", sequence: 1, want: InvalidBillNumber},
		{name: "year after 2099", month: "2100-01", sequence: 1, want: InvalidBillNumber},
		{name: "zero sequence", month: "2026-01", sequence: 0, want: InvalidBillNumber},
		{name: "empty", month: "", sequence: 1, want: InvalidBillNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBillNumber(tt.month, tt.sequence))
		})
	}
}

func TestParseMalformedBillNumbers(t *testing.T) {
	inputs := []string{
		"",
		InvalidBillNumber,
		"JAN-26",
		"JAN-26-001-2",
		"jan-26-001",
		"XYZ-26-001",
		"JAN-2026-001",
		"JAN-26-01",
		"JAN-26-00a",
		"JAN-26-000",
		"JAN-2a-001",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, "", ParseBillMonth(in))
			assert.Equal(t, -1, ParseSequence(in))
		})
	}
}

func TestParseBillNumber(t *testing.T) {
	assert.Equal(t, "2026-12", ParseBillMonth("DEC-26-042"))
	assert.Equal(t, 42, ParseSequence("DEC-26-042"))
	assert.Equal(t, 1000, ParseSequence("MAR-26-1000"))
}

func TestBillNumberRoundTrip(t *testing.T) {
	sequences := []int{1, 7, 99, 999, 1000, 54321, 999999}
	for year := 2000; year <= 2099; year++ {
		for m := 1; m <= 12; m++ {
			month := fmt.Sprintf("%04d-%02d", year, m)
			for _, seq := range sequences {
				number := FormatBillNumber(month, seq)
				if !assert.Equal(t, month, ParseBillMonth(number), number) {
					return
				}
				if !assert.Equal(t, seq, ParseSequence(number), number) {
					return
				}
			}
		}
	}
}

func TestBillMonthOf(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 2026-01-31 20:00 UTC is already February in India.
	ts := time.Date(2026, time.January, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-01", BillMonthOf(ts))
	assert.Equal(t, "2026-02", BillMonthOf(ts.In(ist)))
	assert.Regexp(t, `^\d{4}-\d{2}$`, CurrentBillMonth())
}
