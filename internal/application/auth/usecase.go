package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y sesión.
type AuthUseCase struct {
	profiles repository.ProfileDirectory
	gate     *Gate
	validate *validation.Validator
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(profiles repository.ProfileDirectory, gate *Gate, validate *validation.Validator, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{profiles: profiles, gate: gate, validate: validate, jwtCfg: jwtCfg}
}

// Login verifica email/password y emite el token de sesión.
// Email inexistente, password incorrecta y usuario inactivo responden igual (ErrUnauthenticated).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	profile, err := uc.profiles.GetProfileByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Active {
		return nil, domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, profile.ID, profile.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *ToUserResponse(profile),
	}, nil
}

// Session devuelve el perfil en sesión y sus permisos efectivos. Solo exige sesión válida.
func (uc *AuthUseCase) Session(ctx context.Context, token string) (*dto.SessionResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token)
	if err != nil {
		return nil, err
	}
	perms := permission.PermissionsFor(ac.Profile.Role)
	out := &dto.SessionResponse{
		User:        *ToUserResponse(ac.Profile),
		Permissions: make([]string, 0, len(perms)),
	}
	for _, p := range perms {
		out.Permissions = append(out.Permissions, p.String())
	}
	return out, nil
}

// HashPassword hashea con bcrypt (costo por defecto).
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ToUserResponse convierte el perfil en DTO (sin hash).
func ToUserResponse(p *entity.Profile) *dto.UserResponse {
	if p == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      string(p.Role),
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
