// Package memory implementa repository.Store en memoria. Lo usan los tests de casos de uso
// y el modo STORE_DRIVER=memory de desarrollo.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var (
	_ repository.StoreProvider    = (*DB)(nil)
	_ repository.ProfileDirectory = (*DB)(nil)
	_ repository.Store            = (*Store)(nil)
)

// DB estado compartido por todos los Store. Un único mutex serializa lecturas, escrituras y transacciones.
type DB struct {
	mu sync.Mutex
	st *state
}

type state struct {
	companies map[string]entity.Company
	profiles  map[string]entity.Profile
	products  map[string]entity.Product
	movements []entity.InventoryMovement
	sales     map[string]entity.Sale
	recipes   map[string]entity.Recipe
	batches   []entity.ProductionBatch
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{st: &state{
		companies: make(map[string]entity.Company),
		profiles:  make(map[string]entity.Profile),
		products:  make(map[string]entity.Product),
		sales:     make(map[string]entity.Sale),
		recipes:   make(map[string]entity.Recipe),
	}}
}

// ForTenant implementa repository.StoreProvider.
func (db *DB) ForTenant(tenantID string) repository.Store {
	return &Store{db: db, tenant: tenantID}
}

// GetProfile implementa repository.ProfileReader.
func (db *DB) GetProfile(_ context.Context, id string) (*entity.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.st.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetProfileByEmail búsqueda global por email (login).
func (db *DB) GetProfileByEmail(_ context.Context, email string) (*entity.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, p := range db.st.profiles {
		if strings.EqualFold(p.Email, email) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

// PutCompany registra (o reemplaza) una empresa. Para seed y tests.
func (db *DB) PutCompany(c entity.Company) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.companies[c.ID] = c
}

// PutProfile registra (o reemplaza) un perfil. Para seed y tests.
func (db *DB) PutProfile(p entity.Profile) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.profiles[p.ID] = p
}

// PutProduct registra (o reemplaza) un producto. Para seed y tests.
func (db *DB) PutProduct(p entity.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.products[p.ID] = p
}

func (st *state) clone() *state {
	out := &state{
		companies: make(map[string]entity.Company, len(st.companies)),
		profiles:  make(map[string]entity.Profile, len(st.profiles)),
		products:  make(map[string]entity.Product, len(st.products)),
		movements: append([]entity.InventoryMovement(nil), st.movements...),
		sales:     make(map[string]entity.Sale, len(st.sales)),
		recipes:   make(map[string]entity.Recipe, len(st.recipes)),
		batches:   append([]entity.ProductionBatch(nil), st.batches...),
	}
	for k, v := range st.companies {
		out.companies[k] = v
	}
	for k, v := range st.profiles {
		out.profiles[k] = v
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.sales {
		out.sales[k] = copySale(v)
	}
	for k, v := range st.recipes {
		out.recipes[k] = copyRecipe(v)
	}
	return out
}

// Store vista de una empresa sobre DB.
type Store struct {
	db     *DB
	tenant string
	inTx   bool // el mutex ya lo tiene WithTx
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *Store) TenantID() string { return s.tenant }

func (s *Store) Company() repository.CompanyRepository             { return companyRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository            { return profileRepo{s} }
func (s *Store) Products() repository.ProductRepository            { return productRepo{s} }
func (s *Store) Movements() repository.InventoryMovementRepository { return movementRepo{s} }
func (s *Store) Sales() repository.SaleRepository                  { return saleRepo{s} }
func (s *Store) Recipes() repository.RecipeRepository              { return recipeRepo{s} }
func (s *Store) Production() repository.ProductionRepository       { return productionRepo{s} }
func (s *Store) Analytics() repository.AnalyticsRepository         { return analyticsRepo{s} }

// WithTx toma el mutex durante toda la transacción y restaura una copia del estado si fn falla.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.st.clone()
	tx := &Store{db: s.db, tenant: s.tenant, inTx: true}
	if err := fn(tx); err != nil {
		s.db.st = snapshot
		return err
	}
	return nil
}

func (s *Store) checkTenant(companyID string) error {
	if companyID != s.tenant {
		return domain.ErrNotFound
	}
	return nil
}
