package entity

import (
	"time"

	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
)

// Profile perfil de un usuario autenticado: rol y empresa a la que pertenece.
// El rol solo cambia mediante una acción administrativa (users.manage).
type Profile struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         permission.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
