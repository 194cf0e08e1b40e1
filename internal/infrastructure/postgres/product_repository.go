package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, category, unit, stock, min_stock, cost, price, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q      Querier
	tenant string
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Category, &p.Unit,
		&p.Stock, &p.MinStock, &p.Cost, &p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. SKU repetido en la empresa -> ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, r.tenant, p.SKU, p.Name, p.Category, p.Unit,
		p.Stock, p.MinStock, p.Cost, p.Price, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) get(ctx context.Context, where string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `WHERE id = $1 AND company_id = $2`, id, r.tenant)
}

// GetBySKU búsqueda sin distinguir mayúsculas.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.get(ctx, `WHERE company_id = $1 AND lower(sku) = lower($2)`, r.tenant, sku)
}

// Update actualiza datos maestros, unidad, stock y costo (el cambio de unidad los convierte).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $3, name = $4, category = $5, unit = $6, stock = $7, min_stock = $8,
		       cost = $9, price = $10, active = $11, updated_at = $12
		WHERE id = $1 AND company_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, r.tenant, p.SKU, p.Name, p.Category, p.Unit, p.Stock, p.MinStock,
		p.Cost, p.Price, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ordenado por nombre.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", r.tenant)
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.LowStock {
		w.add("min_stock > 0 AND stock <= min_stock")
	}
	query := w.paginate(`SELECT `+productColumns+` FROM products`+w.sql()+` ORDER BY name`, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina un producto. Si una receta lo usa -> ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND company_id = $2`, id, r.tenant)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET cost = $3, updated_at = now() WHERE id = $1 AND company_id = $2`,
		id, r.tenant, cost,
	)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementStock suma qty y devuelve el stock resultante.
func (r *ProductRepo) IncrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.q.QueryRow(ctx,
		`UPDATE products SET stock = stock + $3, updated_at = now()
		 WHERE id = $1 AND company_id = $2 RETURNING stock`,
		id, r.tenant, qty,
	).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, fmt.Errorf("increment stock: %w", err)
	}
	return stock, nil
}

// DecrementStock resta qty solo si alcanza: la condición va en el mismo UPDATE,
// así dos ventas concurrentes no dejan el stock negativo.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	var stock decimal.Decimal
	err := r.q.QueryRow(ctx,
		`UPDATE products SET stock = stock - $3, updated_at = now()
		 WHERE id = $1 AND company_id = $2 AND stock >= $3 RETURNING stock`,
		id, r.tenant, qty,
	).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("decrement stock: %w", err)
	}
	current, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return decimal.Zero, gerr
	}
	if current == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return current.Stock, domain.ErrInsufficientStock
}
