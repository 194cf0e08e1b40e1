package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/products/:id/adjust.
// Quantity con signo: positivo entra, negativo sale. UnitCost solo aplica a entradas
// y recalcula el costo promedio ponderado.
type AdjustStockRequest struct {
	Quantity decimal.Decimal  `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes    string           `json:"notes" validate:"max=500"`
}

// MovementResponse movimiento de inventario.
type MovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Reference string          `json:"reference,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by"`
}

// AdjustStockResponse resultado del ajuste.
type AdjustStockResponse struct {
	Product  ProductResponse  `json:"product"`
	Movement MovementResponse `json:"movement"`
}
