package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// SalesExporter escribe un libro de ventas (xlsx).
type SalesExporter interface {
	ExportSales(company *entity.Company, from, to time.Time, sales []*entity.Sale) ([]byte, error)
}

// ExportUseCase exportación de ventas de un período. Mismo alcance que el dashboard.
type ExportUseCase struct {
	gate     *auth.Gate
	exporter SalesExporter
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(gate *auth.Gate, exporter SalesExporter) *ExportUseCase {
	return &ExportUseCase{gate: gate, exporter: exporter}
}

// ExportSales genera el Excel de ventas en [from, to). to debe ser posterior a from.
func (uc *ExportUseCase) ExportSales(ctx context.Context, token string, from, to time.Time) ([]byte, error) {
	ac, err := uc.gate.ValidateAny(ctx, token, permission.AnalyticsViewFull, permission.AnalyticsViewOwn)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "debe ser posterior a from")
	}
	filter := repository.SaleFilter{From: &from, To: &to}
	if !ac.Can(permission.AnalyticsViewFull) {
		filter.CashierID = ac.CallerID
	}
	list, err := ac.Store.Sales().List(ctx, filter)
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
	return uc.exporter.ExportSales(company, from, to, list)
}
