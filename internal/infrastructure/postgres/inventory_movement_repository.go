package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, company_id, product_id, type, source, reference, quantity, unit_cost, total_cost, notes, created_at, created_by`

// InventoryMovementRepo kardex de la empresa. Solo se inserta; nunca se edita un movimiento.
type InventoryMovementRepo struct {
	q      Querier
	tenant string
}

// Create registra un movimiento.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, r.tenant, m.ProductID, m.Type, m.Source, m.Reference,
		m.Quantity, m.UnitCost, m.TotalCost, m.Notes, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByProduct más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", r.tenant)
	w.add("product_id = ?", productID)
	query := w.paginate(`SELECT `+movementColumns+` FROM inventory_movements`+w.sql()+` ORDER BY created_at DESC`, limit, offset)
	return r.list(ctx, query, w.args...)
}

// ListByReference movimientos generados por un documento (venta, anulación, lote).
func (r *InventoryMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements
		WHERE company_id = $1 AND reference = $2 ORDER BY created_at`
	return r.list(ctx, query, r.tenant, reference)
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	err := row.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Source, &m.Reference,
		&m.Quantity, &m.UnitCost, &m.TotalCost, &m.Notes, &m.CreatedAt, &m.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
