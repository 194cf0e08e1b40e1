package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionBatch registro de una producción: receta × lotes.
type ProductionBatch struct {
	ID               string
	CompanyID        string
	RecipeID         string
	ProductID        string
	Batches          decimal.Decimal
	QuantityProduced decimal.Decimal
	UnitCost         decimal.Decimal // costo de insumos por unidad producida
	Notes            string
	ProducedBy       string
	CreatedAt        time.Time
}
