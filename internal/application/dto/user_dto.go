package dto

import "time"

// CreateUserRequest entrada para crear un usuario de la empresa (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=1,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin cajero panadero"`
}

// UpdateRoleRequest cambio de rol (acción administrativa).
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin cajero panadero"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token de sesión + usuario. El token también viaja en la cookie de sesión.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// SessionResponse perfil del usuario en sesión con sus permisos efectivos (para armar menús).
type SessionResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}
