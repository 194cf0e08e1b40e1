package repository

import (
	"context"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Category string
	LowStock bool // solo stock <= min_stock
	Limit    int
	Offset   int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// UpdateCost actualiza solo el costo (motor de inventario).
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	// IncrementStock suma qty al stock y devuelve el stock resultante.
	IncrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error)
	// DecrementStock resta qty. Devuelve domain.ErrInsufficientStock si el stock no alcanza.
	DecrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error)
}
