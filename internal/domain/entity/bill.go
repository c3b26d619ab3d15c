package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Bill documents carry amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Customer is the buyer a bill was issued to. It is embedded in the bill and
// never changes after the bill is created.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// BusinessDetails is the copy of the invoice settings frozen into a bill when
// it was created.
type BusinessDetails struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GSTIN   string `json:"gstin"`
}

// IsValid reports whether the snapshot can head an invoice.
func (d *BusinessDetails) IsValid() bool {
	return d != nil && d.Name != "" && d.Phone != ""
}

// BillLineItem snapshots an inventory item's name and price at the moment it
// was added to a bill.
type BillLineItem struct {
	ItemID   string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewBillLineItem builds a line item with its subtotal in sync.
func NewBillLineItem(itemID, name string, price decimal.Decimal, quantity int) BillLineItem {
	li := BillLineItem{ItemID: itemID, Name: name, Price: price}
	li.SetQuantity(quantity)
	return li
}

// SetQuantity changes the quantity and recomputes the subtotal.
func (li *BillLineItem) SetQuantity(quantity int) {
	li.Quantity = quantity
	li.Subtotal = li.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Bill is an issued customer bill. Numbering fields and the business snapshot
// are nil on bills written by older clients.
type Bill struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID          string           `gorm:"size:128;not null;index:idx_bills_user_timestamp,priority:1;uniqueIndex:idx_bills_user_number,priority:1" json:"-"`
	BillNumber      *string          `gorm:"size:32;uniqueIndex:idx_bills_user_number,priority:2" json:"billNumber,omitempty"`
	BillSequence    *int             `json:"billSequence,omitempty"`
	BillMonth       *string          `gorm:"size:7;index" json:"billMonth,omitempty"`
	Customer        Customer         `gorm:"type:jsonb;serializer:json;not null" json:"customer"`
	Items           []BillLineItem   `gorm:"type:jsonb;serializer:json" json:"items"`
	Subtotal        decimal.Decimal  `gorm:"type:numeric;not null" json:"subtotal"`
	CGST            decimal.Decimal  `gorm:"column:cgst;type:numeric;not null" json:"cgst"`
	SGST            decimal.Decimal  `gorm:"column:sgst;type:numeric;not null" json:"sgst"`
	Total           decimal.Decimal  `gorm:"type:numeric;not null" json:"total"`
	CGSTRate        decimal.Decimal  `gorm:"column:cgst_rate;type:numeric;not null" json:"cgstRate"`
	SGSTRate        decimal.Decimal  `gorm:"column:sgst_rate;type:numeric;not null" json:"sgstRate"`
	BusinessDetails *BusinessDetails `gorm:"type:jsonb;serializer:json" json:"businessDetails,omitempty"`
	Timestamp       time.Time        `gorm:"not null;index:idx_bills_user_timestamp,priority:2" json:"timestamp"`
	CreatedAt       time.Time        `json:"-"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// DisplayNumber is the bill number, or the document id for unnumbered bills.
func (b *Bill) DisplayNumber() string {
	if b.BillNumber != nil && *b.BillNumber != "" {
		return *b.BillNumber
	}
	return b.ID.String()
}

// Clone returns a deep copy so callers can reconcile a bill without touching
// the stored value.
func (b *Bill) Clone() *Bill {
	c := *b
	if b.Items != nil {
		c.Items = append([]BillLineItem(nil), b.Items...)
	}
	if b.BusinessDetails != nil {
		d := *b.BusinessDetails
		c.BusinessDetails = &d
	}
	if b.BillNumber != nil {
		n := *b.BillNumber
		c.BillNumber = &n
	}
	if b.BillSequence != nil {
		s := *b.BillSequence
		c.BillSequence = &s
	}
	if b.BillMonth != nil {
		m := *b.BillMonth
		c.BillMonth = &m
	}
	return &c
}

// MarshalJSON writes the timestamp as epoch milliseconds.
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	return json.Marshal(&struct {
		Alias
		Timestamp int64 `json:"timestamp"`
	}{
		Alias:     Alias(b),
		Timestamp: b.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON reads documents in any of the historical shapes. Missing
// amounts decode as zero.
func (b *Bill) UnmarshalJSON(data []byte) error {
	type Alias Bill
	aux := &struct {
		*Alias
		Timestamp int64 `json:"timestamp"`
	}{Alias: (*Alias)(b)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	b.Timestamp = time.UnixMilli(aux.Timestamp)
	return nil
}
