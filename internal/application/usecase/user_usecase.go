package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
)

// UserUseCase administración de usuarios de la empresa (users.view / users.manage).
type UserUseCase struct {
	gate     *auth.Gate
	validate *validation.Validator
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(gate *auth.Gate, validate *validation.Validator) *UserUseCase {
	return &UserUseCase{gate: gate, validate: validate}
}

// List lista los usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, token string, page dto.PageRequest) ([]dto.UserResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.UsersView)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := ac.Store.Profiles().List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *auth.ToUserResponse(p))
	}
	return out, nil
}

// Create crea un usuario en la empresa del administrador. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *UserUseCase) Create(ctx context.Context, token string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.UsersManage)
	if err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	role, _ := permission.ParseRole(in.Role)
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	profile := &entity.Profile{
		ID:           uuid.New().String(),
		CompanyID:    ac.Store.TenantID(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := ac.Store.Profiles().Create(ctx, profile); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(profile), nil
}

// ChangeRole cambia el rol de un usuario. Rige desde su siguiente request.
func (uc *UserUseCase) ChangeRole(ctx context.Context, token, userID string, in dto.UpdateRoleRequest) (*dto.UserResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.UsersManage)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	role, _ := permission.ParseRole(in.Role)
	if userID == ac.CallerID && role != permission.RoleAdmin {
		// un admin no se quita a sí mismo la administración
		return nil, domain.NewValidationError("role", "no puedes quitarte el rol de administrador")
	}
	if err := ac.Store.Profiles().UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return uc.reload(ctx, ac, userID)
}

// Deactivate desactiva un usuario: pierde acceso en su siguiente request.
// Un usuario nunca puede desactivarse a sí mismo, tenga o no el permiso.
func (uc *UserUseCase) Deactivate(ctx context.Context, token, userID string) (*dto.UserResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	if userID == ac.CallerID {
		return nil, domain.ErrSelfDeactivation
	}
	if !ac.Can(permission.UsersManage) {
		return nil, &domain.PermissionDeniedError{Permission: permission.UsersManage.String()}
	}
	return uc.setActive(ctx, ac, userID, false)
}

// Reactivate reactiva un usuario.
func (uc *UserUseCase) Reactivate(ctx context.Context, token, userID string) (*dto.UserResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.UsersManage)
	if err != nil {
		return nil, err
	}
	return uc.setActive(ctx, ac, userID, true)
}

func (uc *UserUseCase) setActive(ctx context.Context, ac *auth.Context, userID string, active bool) (*dto.UserResponse, error) {
	if err := ac.Store.Profiles().SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return uc.reload(ctx, ac, userID)
}

func (uc *UserUseCase) reload(ctx context.Context, ac *auth.Context, userID string) (*dto.UserResponse, error) {
	p, err := ac.Store.Profiles().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return auth.ToUserResponse(p), nil
}
