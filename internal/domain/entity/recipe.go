package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe receta de producción: cuántas unidades del producto de salida rinde un lote
// y qué insumos consume.
type Recipe struct {
	ID          string
	CompanyID   string
	Name        string
	ProductID   string          // producto terminado
	Yield       decimal.Decimal // unidades de ProductID por lote
	Notes       string
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient insumo consumido por lote. Unit puede diferir de la unidad del producto
// (ej. receta en g, stock en kg); se convierte al producir.
type RecipeIngredient struct {
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
}
