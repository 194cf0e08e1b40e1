package repository

import (
	"context"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

// CompanyRepository datos de la empresa del Store.
type CompanyRepository interface {
	Get(ctx context.Context) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
}
