package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

//go:embed schema.sql
var schemaSQL string

// Schema devuelve el DDL embebido.
func Schema() string { return schemaSQL }

// Migrate aplica el esquema. Es idempotente.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}

// Bootstrap crea la empresa y su primer administrador en una sola transacción.
// Si el email ya existe devuelve domain.ErrEmailAlreadyExists y no crea nada.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, company *entity.Company, admin *entity.Profile) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO companies (id, name, rut, address, phone, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		company.ID, company.Name, company.RUT, company.Address, company.Phone, company.Email,
		company.Status, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	profiles := &ProfileRepo{q: tx, tenant: company.ID}
	if err := profiles.Create(ctx, admin); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
