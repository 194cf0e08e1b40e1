package repository

import (
	"context"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

// Store agrupa los repositorios de una empresa (tenant). Toda lectura y escritura
// hecha a través de un Store queda restringida a TenantID.
type Store interface {
	TenantID() string

	Company() CompanyRepository
	Profiles() ProfileRepository
	Products() ProductRepository
	Movements() InventoryMovementRepository
	Sales() SaleRepository
	Recipes() RecipeRepository
	Production() ProductionRepository
	Analytics() AnalyticsRepository

	// WithTx ejecuta fn dentro de una transacción. Si fn devuelve error no queda nada escrito.
	// Llamar WithTx sobre un Store ya transaccional reutiliza la misma transacción.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// StoreProvider construye un Store acotado a una empresa. Se llama en cada request autorizado.
type StoreProvider interface {
	ForTenant(tenantID string) Store
}

// ProfileReader lectura de perfiles sin tenant: la compuerta de autorización aún no conoce la empresa.
// Devuelve (nil, nil) si no existe.
type ProfileReader interface {
	GetProfile(ctx context.Context, id string) (*entity.Profile, error)
}

// ProfileDirectory agrega la búsqueda por email que necesita el login.
type ProfileDirectory interface {
	ProfileReader
	GetProfileByEmail(ctx context.Context, email string) (*entity.Profile, error)
}
