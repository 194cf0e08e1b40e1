package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de medida de stock.
const (
	UnitKg       = "kg"
	UnitG        = "g"
	UnitL        = "L"
	UnitMl       = "ml"
	UnitUnidades = "unidades"
)

// Categorías de producto.
const (
	CategoryIngredient = "insumo"
	CategoryProduct    = "producto"
)

// Product insumo o producto terminado de la panadería.
// Cost es el costo por unidad de medida (promedio ponderado); Stock está en la misma unidad.
type Product struct {
	ID        string
	CompanyID string
	SKU       string // código único por empresa
	Name      string
	Category  string
	Unit      string
	Stock     decimal.Decimal
	MinStock  decimal.Decimal
	Cost      decimal.Decimal
	Price     decimal.Decimal // precio de venta (0 para insumos)
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLowStock informa si el stock está en o bajo el mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock)
}
