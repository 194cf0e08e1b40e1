// Package permission define los roles, los permisos y la tabla estática que los relaciona.
//
// La tabla es la única fuente de verdad: no se persiste ni se extiende en runtime.
// Un permiso que no está en la tabla no lo tiene nadie.
package permission

import "sort"

// Role clasificación gruesa del usuario. Conjunto cerrado.
type Role string

// Roles válidos.
const (
	RoleAdmin    Role = "admin"
	RoleCajero   Role = "cajero"
	RolePanadero Role = "panadero"
)

// Permission acción permitida sobre un recurso ("recurso.acción"). Conjunto cerrado.
type Permission string

// Inventario.
const (
	InventoryView        Permission = "inventory.view"
	InventoryCreate      Permission = "inventory.create"
	InventoryEdit        Permission = "inventory.edit"
	InventoryDelete      Permission = "inventory.delete"
	InventoryAdjustStock Permission = "inventory.adjust_stock"
)

// Ventas.
const (
	SalesCreate  Permission = "sales.create"
	SalesViewAll Permission = "sales.view_all"
	SalesViewOwn Permission = "sales.view_own"
	SalesAnnul   Permission = "sales.annul"
)

// Recetas y producción.
const (
	RecipesView      Permission = "recipes.view"
	RecipesManage    Permission = "recipes.manage"
	ProductionView   Permission = "production.view"
	ProductionManage Permission = "production.manage"
)

// Analítica, usuarios y configuración.
const (
	AnalyticsViewFull Permission = "analytics.view_full"
	AnalyticsViewOwn  Permission = "analytics.view_own"
	UsersView         Permission = "users.view"
	UsersManage       Permission = "users.manage"
	SettingsView      Permission = "settings.view"
)

var (
	adminOnly    = []Role{RoleAdmin}
	everyone     = []Role{RoleAdmin, RoleCajero, RolePanadero}
	adminCashier = []Role{RoleAdmin, RoleCajero}
	adminBaker   = []Role{RoleAdmin, RolePanadero}
)

// table Permission -> roles que lo tienen. Cada entrada debe tener al menos un rol.
var table = map[Permission][]Role{
	InventoryView:        everyone,
	InventoryCreate:      adminBaker,
	InventoryEdit:        adminBaker,
	InventoryDelete:      adminOnly,
	InventoryAdjustStock: adminBaker,

	SalesCreate:  adminCashier,
	SalesViewAll: adminOnly,
	SalesViewOwn: adminCashier,
	SalesAnnul:   adminOnly,

	RecipesView:      adminBaker,
	RecipesManage:    adminBaker,
	ProductionView:   adminBaker,
	ProductionManage: adminBaker,

	AnalyticsViewFull: adminOnly,
	AnalyticsViewOwn:  adminCashier,

	UsersView:    adminOnly,
	UsersManage:  adminOnly,
	SettingsView: adminOnly,
}

// ParseRole convierte un string en Role si pertenece al conjunto cerrado.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid informa si el rol pertenece al conjunto cerrado.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCajero, RolePanadero:
		return true
	}
	return false
}

// Roles devuelve los roles válidos.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCajero, RolePanadero}
}

// Valid informa si el permiso existe en la tabla.
func (p Permission) Valid() bool {
	_, ok := table[p]
	return ok
}

func (p Permission) String() string { return string(p) }

// HasPermission informa si role tiene p. Pura y total: un permiso fuera de la tabla
// devuelve false.
func HasPermission(role Role, p Permission) bool {
	roles, ok := table[p]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAllPermissions AND sobre ps. Con ps vacío devuelve true.
func HasAllPermissions(role Role, ps ...Permission) bool {
	for _, p := range ps {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// HasAnyPermission OR sobre ps. Con ps vacío devuelve false.
func HasAnyPermission(role Role, ps ...Permission) bool {
	for _, p := range ps {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// PermissionsFor lista (ordenados) los permisos del rol. Se usa para armar el menú del cliente.
func PermissionsFor(role Role) []Permission {
	out := make([]Permission, 0, len(table))
	for p := range table {
		if HasPermission(role, p) {
			out = append(out, p)
		}
	}
	sortPermissions(out)
	return out
}

// All devuelve todos los permisos definidos, ordenados.
func All() []Permission {
	out := make([]Permission, 0, len(table))
	for p := range table {
		out = append(out, p)
	}
	sortPermissions(out)
	return out
}

// RolesFor devuelve una copia de los roles que tienen p (nil si p no existe).
func RolesFor(p Permission) []Role {
	roles, ok := table[p]
	if !ok {
		return nil
	}
	return append([]Role(nil), roles...)
}

func sortPermissions(ps []Permission) {
	sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
}
