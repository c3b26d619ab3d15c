package entity

import (
	"encoding/json"
	"time"
)

// BillCounter tracks the last sequence issued for one calendar month.
// Version increases on every write and is used to detect concurrent updates.
type BillCounter struct {
	UserID       string    `gorm:"primaryKey;size:128" json:"-"`
	Month        string    `gorm:"primaryKey;size:7" json:"month"`
	LastSequence int       `gorm:"not null" json:"lastSequence"`
	LastUpdated  time.Time `gorm:"not null" json:"lastUpdated"`
	Version      int64     `gorm:"not null" json:"-"`
}

// TableName returns the table name for the BillCounter model
func (BillCounter) TableName() string {
	return "bill_counters"
}

func (c BillCounter) MarshalJSON() ([]byte, error) {
	type Alias BillCounter
	return json.Marshal(&struct {
		Alias
		LastUpdated int64 `json:"lastUpdated"`
	}{
		Alias:       Alias(c),
		LastUpdated: c.LastUpdated.UnixMilli(),
	})
}
