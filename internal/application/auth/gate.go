package auth

import (
	"context"
	"strings"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

// TokenVerifier valida la credencial de transporte y devuelve la identidad.
type TokenVerifier interface {
	Verify(token string) (*jwt.Identity, error)
}

// Context resultado de una autorización exitosa. Store queda acotado a la empresa del perfil.
type Context struct {
	Store    repository.Store
	CallerID string
	Profile  *entity.Profile
}

// Role atajo al rol del perfil.
func (c *Context) Role() permission.Role { return c.Profile.Role }

// Can informa si el llamador además tiene p (para decisiones dentro del use case, ej. view_all vs view_own).
func (c *Context) Can(p permission.Permission) bool {
	return permission.HasPermission(c.Profile.Role, p)
}

// Gate compuerta de autorización: identidad -> perfil -> permisos -> Store acotado.
// Sin caché ni estado: cada llamada relee el perfil, por lo que un cambio de rol o una
// desactivación rigen desde el request siguiente.
type Gate struct {
	verifier TokenVerifier
	profiles repository.ProfileReader
	stores   repository.StoreProvider
}

// NewGate construye la compuerta.
func NewGate(verifier TokenVerifier, profiles repository.ProfileReader, stores repository.StoreProvider) *Gate {
	return &Gate{verifier: verifier, profiles: profiles, stores: stores}
}

// ValidateRequest valida token y permisos requeridos (todos, AND).
//
// Errores: domain.ErrUnauthenticated si no hay sesión válida o el usuario está inactivo;
// domain.ErrProfileNotFound si la identidad no tiene perfil; *domain.PermissionDeniedError
// con el primer permiso faltante.
func (g *Gate) ValidateRequest(ctx context.Context, token string, required ...permission.Permission) (*Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	id, err := g.verifier.Verify(token)
	if err != nil || id == nil || id.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}

	profile, err := g.profiles.GetProfile(ctx, id.Subject)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	if !profile.Active {
		return nil, domain.ErrUnauthenticated
	}

	for _, p := range required {
		if !permission.HasPermission(profile.Role, p) {
			return nil, &domain.PermissionDeniedError{Permission: p.String()}
		}
	}

	return &Context{
		Store:    g.stores.ForTenant(profile.CompanyID),
		CallerID: profile.ID,
		Profile:  profile,
	}, nil
}

// ValidateAny exige al menos uno de los permisos (OR). Con lista vacía siempre deniega.
func (g *Gate) ValidateAny(ctx context.Context, token string, anyOf ...permission.Permission) (*Context, error) {
	ac, err := g.ValidateRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if !permission.HasAnyPermission(ac.Profile.Role, anyOf...) {
		name := ""
		if len(anyOf) > 0 {
			name = anyOf[0].String()
		}
		return nil, &domain.PermissionDeniedError{Permission: name}
	}
	return ac, nil
}
