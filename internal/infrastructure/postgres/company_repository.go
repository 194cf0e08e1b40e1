package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo datos de la empresa del Store.
type CompanyRepo struct {
	q      Querier
	tenant string
}

// Get devuelve (nil, nil) si la empresa no existe.
func (r *CompanyRepo) Get(ctx context.Context) (*entity.Company, error) {
	query := `
		SELECT id, name, rut, address, phone, email, status, created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, r.tenant).Scan(
		&c.ID, &c.Name, &c.RUT, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// Update actualiza los datos editables. El id siempre es el del Store.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, rut = $3, address = $4, phone = $5, email = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, r.tenant, c.Name, c.RUT, c.Address, c.Phone, c.Email, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
