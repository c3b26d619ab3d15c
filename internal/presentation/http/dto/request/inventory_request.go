package request

import "github.com/shopspring/decimal"

// ItemRequest creates or replaces an inventory item
type ItemRequest struct {
	Name  string           `json:"name" binding:"required,max=255"`
	Price *decimal.Decimal `json:"price" binding:"required"`
	Stock *int             `json:"stock" binding:"required"`
}

// ItemFilterRequest represents inventory filter parameters
type ItemFilterRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
