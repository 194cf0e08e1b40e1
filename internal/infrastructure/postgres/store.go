package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// Querier lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan con cualquiera.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ repository.StoreProvider    = (*Provider)(nil)
	_ repository.ProfileDirectory = (*Provider)(nil)
	_ repository.Store            = (*Store)(nil)
)

// Provider construye Stores por empresa sobre un pool compartido.
type Provider struct {
	pool *pgxpool.Pool
}

// NewProvider construye el proveedor.
func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// ForTenant devuelve un Store acotado a tenantID.
func (p *Provider) ForTenant(tenantID string) repository.Store {
	return &Store{pool: p.pool, q: p.pool, tenant: tenantID}
}

// GetProfile lectura sin tenant usada por la compuerta de autorización.
func (p *Provider) GetProfile(ctx context.Context, id string) (*entity.Profile, error) {
	return findProfile(ctx, p.pool, `WHERE id = $1`, id)
}

// GetProfileByEmail lectura sin tenant usada por el login.
func (p *Provider) GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return findProfile(ctx, p.pool, `WHERE lower(email) = lower($1)`, email)
}

// Store repositorios de una empresa. Dentro de WithTx q es la transacción.
type Store struct {
	pool   *pgxpool.Pool
	q      Querier
	tenant string
	inTx   bool
}

func (s *Store) TenantID() string { return s.tenant }

func (s *Store) Company() repository.CompanyRepository {
	return &CompanyRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Profiles() repository.ProfileRepository {
	return &ProfileRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Products() repository.ProductRepository {
	return &ProductRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Movements() repository.InventoryMovementRepository {
	return &InventoryMovementRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Sales() repository.SaleRepository {
	return &SaleRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Recipes() repository.RecipeRepository {
	return &RecipeRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Production() repository.ProductionRepository {
	return &ProductionRepo{q: s.q, tenant: s.tenant}
}

func (s *Store) Analytics() repository.AnalyticsRepository {
	return &AnalyticsRepo{q: s.q, tenant: s.tenant}
}

// WithTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{pool: s.pool, q: tx, tenant: s.tenant, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
