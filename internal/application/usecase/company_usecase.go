package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

// SettingsUseCase configuración de la empresa (settings.view).
type SettingsUseCase struct {
	gate     *auth.Gate
	validate *validation.Validator
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(gate *auth.Gate, validate *validation.Validator) *SettingsUseCase {
	return &SettingsUseCase{gate: gate, validate: validate}
}

// Get devuelve los datos de la empresa del usuario.
func (uc *SettingsUseCase) Get(ctx context.Context, token string) (*dto.CompanyResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.SettingsView)
	if err != nil {
		return nil, err
	}
	company, err := ac.Store.Company().Get(ctx)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update actualiza los datos de la empresa. El RUT se guarda limpio (sin puntos ni guion).
func (uc *SettingsUseCase) Update(ctx context.Context, token string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.SettingsView)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	company, err := ac.Store.Company().Get(ctx)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.RUT != nil {
		company.RUT = rut.Clean(*in.RUT)
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	company.UpdatedAt = time.Now()
	if err := ac.Store.Company().Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		RUT:       rut.Format(c.RUT),
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
