package repository

import (
	"context"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
)

// ProfileRepository puerto de persistencia de perfiles de la empresa.
type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Profile, error)
	UpdateRole(ctx context.Context, id string, role permission.Role) error
	SetActive(ctx context.Context, id string, active bool) error
}
