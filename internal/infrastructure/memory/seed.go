package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
)

// IDs fijos del set de datos de demostración.
const (
	DemoCompanyID  = "00000000-0000-0000-0000-000000000001"
	DemoAdminID    = "00000000-0000-0000-0000-0000000000a1"
	DemoCajeroID   = "00000000-0000-0000-0000-0000000000c1"
	DemoPanaderoID = "00000000-0000-0000-0000-0000000000b1"

	DemoHarinaID      = "00000000-0000-0000-0000-000000000101"
	DemoMantequillaID = "00000000-0000-0000-0000-000000000102"
	DemoLecheID       = "00000000-0000-0000-0000-000000000103"
	DemoMarraquetaID  = "00000000-0000-0000-0000-000000000201"
	DemoQuequeID      = "00000000-0000-0000-0000-000000000202"
)

// SeedDemo carga una panadería con un usuario por rol y algunos productos.
// passwordHash es el hash bcrypt que se asigna a todos los usuarios (vacío = sin login).
func SeedDemo(db *DB, passwordHash string) {
	now := time.Now()
	db.PutCompany(entity.Company{
		ID: DemoCompanyID, Name: "Panadería La Espiga", RUT: "763543218",
		Address: "Av. Siempre Viva 742, Santiago", Status: "active", CreatedAt: now, UpdatedAt: now,
	})

	users := []struct {
		id, email, name string
		role            permission.Role
	}{
		{DemoAdminID, "admin@laespiga.cl", "Administradora", permission.RoleAdmin},
		{DemoCajeroID, "caja@laespiga.cl", "Cajero Turno Mañana", permission.RoleCajero},
		{DemoPanaderoID, "horno@laespiga.cl", "Maestro Panadero", permission.RolePanadero},
	}
	for _, u := range users {
		db.PutProfile(entity.Profile{
			ID: u.id, CompanyID: DemoCompanyID, Email: u.email, PasswordHash: passwordHash,
			FullName: u.name, Role: u.role, Active: true, CreatedAt: now, UpdatedAt: now,
		})
	}

	products := []entity.Product{
		{ID: DemoHarinaID, SKU: "INS-HARINA", Name: "Harina", Category: entity.CategoryIngredient, Unit: entity.UnitKg,
			Stock: decimal.NewFromInt(50), MinStock: decimal.NewFromInt(10), Cost: decimal.NewFromInt(900)},
		{ID: DemoMantequillaID, SKU: "INS-MANTEQ", Name: "Mantequilla", Category: entity.CategoryIngredient, Unit: entity.UnitKg,
			Stock: decimal.NewFromInt(8), MinStock: decimal.NewFromInt(2), Cost: decimal.NewFromInt(7500)},
		{ID: DemoLecheID, SKU: "INS-LECHE", Name: "Leche", Category: entity.CategoryIngredient, Unit: entity.UnitL,
			Stock: decimal.NewFromInt(20), MinStock: decimal.NewFromInt(5), Cost: decimal.NewFromInt(1100)},
		{ID: DemoMarraquetaID, SKU: "PAN-MARRAQ", Name: "Marraqueta", Category: entity.CategoryProduct, Unit: entity.UnitUnidades,
			Stock: decimal.NewFromInt(120), MinStock: decimal.NewFromInt(30), Cost: decimal.NewFromInt(80), Price: decimal.NewFromInt(250)},
		{ID: DemoQuequeID, SKU: "PAN-QUEQUE", Name: "Queque de vainilla", Category: entity.CategoryProduct, Unit: entity.UnitUnidades,
			Stock: decimal.NewFromInt(6), MinStock: decimal.NewFromInt(2), Cost: decimal.NewFromInt(2200), Price: decimal.NewFromInt(5990)},
	}
	for _, p := range products {
		p.CompanyID = DemoCompanyID
		p.Active = true
		p.CreatedAt, p.UpdatedAt = now, now
		db.PutProduct(p)
	}
}
