package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `s.id, s.company_id, s.cashier_id, s.client_ref, s.total, s.payment_method, s.document_type,
	s.customer_rut, s.customer_business_name, s.customer_activity, s.customer_address, s.customer_email,
	s.annulled, s.annulled_at, s.annulled_by, s.created_at, s.updated_at`

// SaleRepo ventas con sus ítems.
type SaleRepo struct {
	q      Querier
	tenant string
}

// Create inserta cabecera e ítems. Debe llamarse dentro de WithTx.
// client_ref repetido en la empresa -> ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	var c entity.SaleCustomer
	if s.Customer != nil {
		c = *s.Customer
	}
	query := `
		INSERT INTO sales (id, company_id, cashier_id, client_ref, total, payment_method, document_type,
			customer_rut, customer_business_name, customer_activity, customer_address, customer_email,
			annulled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, false, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, r.tenant, s.CashierID, nullString(s.ClientRef), s.Total, s.PaymentMethod, s.DocumentType,
		nullString(c.RUT), nullString(c.BusinessName), nullString(c.Activity), nullString(c.Address), nullString(c.Email),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, it := range s.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, position, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, s.ID, i, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var clientRef, rut, business, activity, address, email, annulledBy *string
	err := row.Scan(&s.ID, &s.CompanyID, &s.CashierID, &clientRef, &s.Total, &s.PaymentMethod, &s.DocumentType,
		&rut, &business, &activity, &address, &email,
		&s.Annulled, &s.AnnulledAt, &annulledBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.ClientRef = derefString(clientRef)
	s.AnnulledBy = derefString(annulledBy)
	if rut != nil {
		s.Customer = &entity.SaleCustomer{
			RUT:          *rut,
			BusinessName: derefString(business),
			Activity:     derefString(activity),
			Address:      derefString(address),
			Email:        derefString(email),
		}
	}
	return &s, nil
}

func (r *SaleRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales s `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Sale{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `WHERE s.id = $1 AND s.company_id = $2`, id, r.tenant)
}

func (r *SaleRepo) GetByClientRef(ctx context.Context, clientRef string) (*entity.Sale, error) {
	if clientRef == "" {
		return nil, nil
	}
	return r.getOne(ctx, `WHERE s.company_id = $1 AND s.client_ref = $2`, r.tenant, clientRef)
}

// List más recientes primero, con ítems. From inclusivo, To exclusivo.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	w := &whereBuilder{}
	w.add("s.company_id = ?", r.tenant)
	if f.CashierID != "" {
		w.add("s.cashier_id = ?", f.CashierID)
	}
	if f.From != nil {
		w.add("s.created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("s.created_at < ?", *f.To)
	}
	query := w.paginate(`SELECT `+saleColumns+` FROM sales s`+w.sql()+` ORDER BY s.created_at DESC`, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga los ítems de todas las ventas con una sola consulta.
func (r *SaleRepo) loadItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return rows.Err()
}

// MarkAnnulled solo cambia ventas vigentes; si ya estaba anulada -> ErrConflict.
func (r *SaleRepo) MarkAnnulled(ctx context.Context, id, by string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales SET annulled = true, annulled_at = $3, annulled_by = $4, updated_at = $3
		WHERE id = $1 AND company_id = $2 AND NOT annulled`,
		id, r.tenant, at, by,
	)
	if err != nil {
		return fmt.Errorf("annul sale: %w", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var annulled bool
	err = r.q.QueryRow(ctx, `SELECT annulled FROM sales WHERE id = $1 AND company_id = $2`, id, r.tenant).Scan(&annulled)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("annul sale: %w", err)
	}
	return domain.ErrConflict
}
