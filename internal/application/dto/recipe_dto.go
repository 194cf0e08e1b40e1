package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeIngredientRequest insumo de una receta. Unit puede diferir de la del insumo si son convertibles.
type RecipeIngredientRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit" validate:"required,oneof=kg g L ml unidades"`
}

// CreateRecipeRequest entrada para crear una receta.
type CreateRecipeRequest struct {
	Name        string                    `json:"name" validate:"required,min=1,max=200"`
	ProductID   string                    `json:"product_id" validate:"required"`
	Yield       decimal.Decimal           `json:"yield"`
	Notes       string                    `json:"notes" validate:"max=1000"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
}

// RecipeResponse receta con ingredientes.
type RecipeResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	ProductID   string                    `json:"product_id"`
	Yield       decimal.Decimal           `json:"yield"`
	Notes       string                    `json:"notes,omitempty"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// RegisterProductionRequest producción de N lotes de una receta.
type RegisterProductionRequest struct {
	RecipeID string          `json:"recipe_id" validate:"required"`
	Batches  decimal.Decimal `json:"batches"`
	Notes    string          `json:"notes" validate:"max=500"`
}

// ProductionResponse registro de producción.
type ProductionResponse struct {
	ID               string          `json:"id"`
	RecipeID         string          `json:"recipe_id"`
	ProductID        string          `json:"product_id"`
	Batches          decimal.Decimal `json:"batches"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	Notes            string          `json:"notes,omitempty"`
	ProducedBy       string          `json:"produced_by"`
	CreatedAt        time.Time       `json:"created_at"`
}
