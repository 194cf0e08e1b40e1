package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un insumo o producto.
type CreateProductRequest struct {
	SKU      string          `json:"sku" validate:"required,min=1,max=100"`
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Category string          `json:"category" validate:"required,oneof=insumo producto"`
	Unit     string          `json:"unit" validate:"required,oneof=kg g L ml unidades"`
	Stock    decimal.Decimal `json:"stock"`
	MinStock decimal.Decimal `json:"min_stock"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto. Stock no se edita aquí
// (ver AdjustStockRequest). Cambiar Unit convierte stock y costo.
type UpdateProductRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category *string          `json:"category" validate:"omitempty,oneof=insumo producto"`
	Unit     *string          `json:"unit" validate:"omitempty,oneof=kg g L ml unidades"`
	MinStock *decimal.Decimal `json:"min_stock"`
	Cost     *decimal.Decimal `json:"cost"`
	Price    *decimal.Decimal `json:"price"`
	Active   *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	LowStock  bool            `json:"low_stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
