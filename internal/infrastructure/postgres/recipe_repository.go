package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var (
	_ repository.RecipeRepository     = (*RecipeRepo)(nil)
	_ repository.ProductionRepository = (*ProductionRepo)(nil)
)

// RecipeRepo recetas e ingredientes.
type RecipeRepo struct {
	q      Querier
	tenant string
}

// Create inserta la receta y sus ingredientes. Debe llamarse dentro de WithTx.
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipes (id, company_id, name, product_id, yield, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, r.tenant, rec.Name, rec.ProductID, rec.Yield, rec.Notes, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}
	for i, ing := range rec.Ingredients {
		_, err := r.q.Exec(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, position, product_id, quantity, unit)
			VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, i, ing.ProductID, ing.Quantity, ing.Unit,
		)
		if err != nil {
			return fmt.Errorf("insert recipe ingredient: %w", err)
		}
	}
	return nil
}

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var rec entity.Recipe
	err := row.Scan(&rec.ID, &rec.CompanyID, &rec.Name, &rec.ProductID, &rec.Yield, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const recipeColumns = `id, company_id, name, product_id, yield, notes, created_at, updated_at`

func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	rec, err := scanRecipe(r.q.QueryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1 AND company_id = $2`, id, r.tenant))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if err := r.loadIngredients(ctx, []*entity.Recipe{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// List ordenado por nombre.
func (r *RecipeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Recipe, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", r.tenant)
	query := w.paginate(`SELECT `+recipeColumns+` FROM recipes`+w.sql()+` ORDER BY name`, limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	var list []*entity.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if err := r.loadIngredients(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RecipeRepo) loadIngredients(ctx context.Context, recipes []*entity.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]string, len(recipes))
	byID := make(map[string]*entity.Recipe, len(recipes))
	for i, rec := range recipes {
		ids[i] = rec.ID
		byID[rec.ID] = rec
	}
	rows, err := r.q.Query(ctx, `
		SELECT recipe_id, product_id, quantity, unit
		FROM recipe_ingredients WHERE recipe_id = ANY($1) ORDER BY recipe_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list recipe ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID string
		var ing entity.RecipeIngredient
		if err := rows.Scan(&recipeID, &ing.ProductID, &ing.Quantity, &ing.Unit); err != nil {
			return fmt.Errorf("scan recipe ingredient: %w", err)
		}
		if rec, ok := byID[recipeID]; ok {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}
	return rows.Err()
}

// ProductionRepo registros de producción.
type ProductionRepo struct {
	q      Querier
	tenant string
}

func (r *ProductionRepo) Create(ctx context.Context, b *entity.ProductionBatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO production_batches (id, company_id, recipe_id, product_id, batches, quantity_produced,
			unit_cost, notes, produced_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, r.tenant, b.RecipeID, b.ProductID, b.Batches, b.QuantityProduced,
		b.UnitCost, b.Notes, b.ProducedBy, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert production batch: %w", err)
	}
	return nil
}

// List más recientes primero.
func (r *ProductionRepo) List(ctx context.Context, limit, offset int) ([]*entity.ProductionBatch, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", r.tenant)
	query := w.paginate(`
		SELECT id, company_id, recipe_id, product_id, batches, quantity_produced, unit_cost, notes, produced_by, created_at
		FROM production_batches`+w.sql()+` ORDER BY created_at DESC`, limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list production: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionBatch
	for rows.Next() {
		var b entity.ProductionBatch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.RecipeID, &b.ProductID, &b.Batches, &b.QuantityProduced,
			&b.UnitCost, &b.Notes, &b.ProducedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan production batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
