package repository

import (
	"context"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

// RecipeRepository recetas con sus ingredientes.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Recipe, error)
}

// ProductionRepository registros de producción.
type ProductionRepository interface {
	Create(ctx context.Context, batch *entity.ProductionBatch) error
	List(ctx context.Context, limit, offset int) ([]*entity.ProductionBatch, error)
}
