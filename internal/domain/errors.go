package domain

import (
	"errors"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Errores de la compuerta de autorización.
	ErrUnauthenticated  = errors.New("sesión no válida")
	ErrProfileNotFound  = errors.New("el usuario no tiene perfil asociado")
	ErrPermissionDenied = errors.New("permiso denegado")
	ErrValidation       = errors.New("datos inválidos")
	ErrSelfDeactivation = errors.New("no puedes desactivar tu propia cuenta")
)

// PermissionDeniedError el perfil existe pero su rol no tiene el permiso requerido.
// errors.Is(err, ErrPermissionDenied) es verdadero.
type PermissionDeniedError struct {
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "permiso denegado: " + e.Permission
}

// Is permite comparar contra ErrPermissionDenied.
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ValidationError errores de validación por campo. Nunca se aplica parcialmente
// un payload que produce este error.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError crea un error con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add agrega (o reemplaza) el mensaje de un campo.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// HasErrors informa si hay al menos un campo con error.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

// Is permite comparar contra ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
