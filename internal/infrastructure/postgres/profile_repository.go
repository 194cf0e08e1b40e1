package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

const profileColumns = `id, company_id, email, password_hash, full_name, role, active, created_at, updated_at`

// ProfileRepo perfiles de usuario de la empresa.
type ProfileRepo struct {
	q      Querier
	tenant string
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	var role string
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Email, &p.PasswordHash, &p.FullName, &role, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Role = permission.Role(role)
	return &p, nil
}

// findProfile busca un perfil con la cláusula where dada. (nil, nil) si no existe.
func findProfile(ctx context.Context, q Querier, where string, args ...any) (*entity.Profile, error) {
	p, err := scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Create persiste un perfil nuevo. Email repetido (en cualquier empresa) -> ErrEmailAlreadyExists.
func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, r.tenant, p.Email, p.PasswordHash, p.FullName, string(p.Role), p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return findProfile(ctx, r.q, `WHERE id = $1 AND company_id = $2`, id, r.tenant)
}

// List ordenado por email.
func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", r.tenant)
	query := w.paginate(`SELECT `+profileColumns+` FROM profiles`+w.sql()+` ORDER BY email`, limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, id string, role permission.Role) error {
	return r.exec(ctx, `UPDATE profiles SET role = $3, updated_at = $4 WHERE id = $1 AND company_id = $2`,
		id, r.tenant, string(role), time.Now())
}

func (r *ProfileRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE profiles SET active = $3, updated_at = $4 WHERE id = $1 AND company_id = $2`,
		id, r.tenant, active, time.Now())
}

func (r *ProfileRepo) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
