package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdateStockRequest body para PUT /api/inventory/:product_id.
type UpdateStockRequest struct {
	Stock         int              `json:"stock"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
}

// UpdateStockResponse resultado de la actualización. Si Allowed es false no se modificó nada.
type UpdateStockResponse struct {
	Allowed   bool               `json:"allowed"`
	Reason    string             `json:"reason,omitempty"`
	Violation *ViolationResponse `json:"violation,omitempty"`
	Inventory *InventoryResponse `json:"inventory,omitempty"`
	NotFound  bool               `json:"-"`
}
