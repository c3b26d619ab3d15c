package request

import "github.com/shopspring/decimal"

// UpdateSettingsRequest replaces the invoice settings. Field rules are
// enforced by the settings service so every violation is reported at once.
type UpdateSettingsRequest struct {
	BusinessName string           `json:"business_name"`
	Address      string           `json:"address"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email"`
	GSTIN        string           `json:"gstin"`
	CGSTRate     *decimal.Decimal `json:"cgst_rate" binding:"required"`
	SGSTRate     *decimal.Decimal `json:"sgst_rate" binding:"required"`
}
