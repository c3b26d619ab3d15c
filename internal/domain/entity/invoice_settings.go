package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBusinessName is shown until the business enters its own name.
	DefaultBusinessName = "Your Business Name"
)

// DefaultGSTRate is the CGST and SGST rate used before the business sets its own.
var DefaultGSTRate = decimal.NewFromInt(9)

// InvoiceSettings is the business configuration printed on invoices.
type InvoiceSettings struct {
	UserID            string          `gorm:"primaryKey;size:128" json:"-"`
	BusinessName      string          `gorm:"size:255;not null" json:"business_name"`
	Address           string          `gorm:"type:text" json:"address"`
	Phone             string          `gorm:"size:32" json:"phone"`
	Email             string          `gorm:"size:255" json:"email"`
	GSTIN             string          `gorm:"column:gstin;size:15" json:"gstin"`
	CGSTRate          decimal.Decimal `gorm:"column:cgst_rate;type:numeric;not null" json:"cgst_rate"`
	SGSTRate          decimal.Decimal `gorm:"column:sgst_rate;type:numeric;not null" json:"sgst_rate"`
	SettingsCompleted bool            `gorm:"not null;default:false" json:"settings_completed"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName returns the table name for the InvoiceSettings model
func (InvoiceSettings) TableName() string {
	return "invoice_settings"
}

// DefaultInvoiceSettings returns the settings a business starts with.
func DefaultInvoiceSettings(userID string) *InvoiceSettings {
	return &InvoiceSettings{
		UserID:       userID,
		BusinessName: DefaultBusinessName,
		CGSTRate:     DefaultGSTRate,
		SGSTRate:     DefaultGSTRate,
	}
}

// HasMinimumSettings reports whether the settings can produce a valid
// business snapshot: a real business name and a phone number.
func (s *InvoiceSettings) HasMinimumSettings() bool {
	if s == nil {
		return false
	}
	return s.BusinessName != "" && s.BusinessName != DefaultBusinessName && s.Phone != ""
}

// TotalGSTRate is the combined CGST and SGST percentage.
func (s *InvoiceSettings) TotalGSTRate() decimal.Decimal {
	return s.CGSTRate.Add(s.SGSTRate)
}

// ToBusinessDetails freezes the settings into a bill snapshot.
func (s *InvoiceSettings) ToBusinessDetails() *BusinessDetails {
	return &BusinessDetails{
		Name:    s.BusinessName,
		Address: s.Address,
		Phone:   s.Phone,
		Email:   s.Email,
		GSTIN:   s.GSTIN,
	}
}
