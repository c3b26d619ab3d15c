package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/cheeta-billing/internal/domain/entity"
)

// CustomerRequest is the buyer of a new bill
type CustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// BillItemRequest is one line of a new bill
type BillItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// CreateBillRequest represents a bill creation request
type CreateBillRequest struct {
	Customer CustomerRequest   `json:"customer"`
	Items    []BillItemRequest `json:"items"`
}

// ImportBillsRequest carries bill documents written by older clients
type ImportBillsRequest struct {
	Bills []*entity.Bill `json:"bills" binding:"required"`
}

// BillFilterRequest represents bill filter parameters. Dates are YYYY-MM-DD
// and both ends are inclusive.
type BillFilterRequest struct {
	Search  string `form:"search"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
