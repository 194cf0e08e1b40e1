package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         = "IN"         // entrada
	MovementTypeOUT        = "OUT"        // salida
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual
)

// Origen del movimiento (a qué documento referencia Reference).
const (
	MovementSourceSale       = "sale"
	MovementSourceAnnulment  = "annulment"
	MovementSourceProduction = "production"
	MovementSourceManual     = "manual"
)

// InventoryMovement representa un movimiento de stock de un producto.
type InventoryMovement struct {
	ID        string
	CompanyID string
	ProductID string
	Type      string
	Source    string
	Reference string          // id de venta, lote de producción, etc.
	Quantity  decimal.Decimal // positivo entrada, negativo salida
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
	Notes     string
	CreatedAt time.Time
	CreatedBy string
}
