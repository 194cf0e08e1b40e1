// Package analytics contiene los casos de uso del dashboard de ventas y la exportación a Excel.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

const dashboardTopProducts = 5 // número de productos en el widget del dashboard

// Alcances del dashboard.
const (
	ScopeFull = "full"
	ScopeOwn  = "own"
)

// DashboardUseCase genera el resumen de ventas del día y del mes en curso.
//
// Con analytics.view_full agrega toda la empresa e incluye márgenes; con solo
// analytics.view_own se restringe a las ventas del usuario y los márgenes van en cero.
type DashboardUseCase struct {
	gate *auth.Gate
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(gate *auth.Gate) *DashboardUseCase {
	return &DashboardUseCase{gate: gate, now: time.Now}
}

// InLocation fija la zona horaria en que se cortan el día y el mes.
func (uc *DashboardUseCase) InLocation(loc *time.Location) *DashboardUseCase {
	uc.now = func() time.Time { return time.Now().In(loc) }
	return uc
}

// GetSummary construye el DashboardSummaryDTO del usuario en sesión.
//
// Cuatro consultas en paralelo:
//  1. GetSalesMetrics(hoy)
//  2. GetSalesMetrics(mes)
//  3. GetTopProducts(mes, top 5)
//  4. GetPaymentBreakdown(mes)
func (uc *DashboardUseCase) GetSummary(ctx context.Context, token string) (*dto.DashboardSummaryDTO, error) {
	ac, err := uc.gate.ValidateAny(ctx, token, permission.AnalyticsViewFull, permission.AnalyticsViewOwn)
	if err != nil {
		return nil, err
	}
	scope, cashierID := ScopeFull, ""
	if !ac.Can(permission.AnalyticsViewFull) {
		scope, cashierID = ScopeOwn, ac.CallerID
	}
	repo := ac.Store.Analytics()
	now := uc.now()

	// Hoy: [00:00, mañana 00:00). Mes en curso: [día 1, mañana 00:00).
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type metricsResult struct {
		m   repository.SalesMetrics
		err error
	}
	type topResult struct {
		list []repository.TopProductResult
		err  error
	}
	type paymentsResult struct {
		list []repository.PaymentMethodResult
		err  error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)
	payCh := make(chan paymentsResult, 1)

	go func() {
		m, err := repo.GetSalesMetrics(ctx, cashierID, todayStart, todayEnd)
		todayCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := repo.GetSalesMetrics(ctx, cashierID, monthStart, todayEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		list, err := repo.GetTopProducts(ctx, cashierID, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{list, err}
	}()
	go func() {
		list, err := repo.GetPaymentBreakdown(ctx, cashierID, monthStart, todayEnd)
		payCh <- paymentsResult{list, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh
	pays := <-payCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}
	if pays.err != nil {
		return nil, fmt.Errorf("dashboard: medios de pago: %w", pays.err)
	}

	out := &dto.DashboardSummaryDTO{
		Scope:          scope,
		TodaySales:     today.m.Revenue.Round(0),
		TodayCount:     today.m.SalesCount,
		TodayMargin:    decimal.Zero,
		MonthlySales:   month.m.Revenue.Round(0),
		MonthlyCount:   month.m.SalesCount,
		MonthlyMargin:  decimal.Zero,
		TopProducts:    make([]dto.TopProductDTO, 0, len(top.list)),
		PaymentMethods: make([]dto.PaymentMethodDTO, 0, len(pays.list)),
		DateLabel:      monthLabel(now),
	}
	if scope == ScopeFull {
		out.TodayMargin = today.m.Revenue.Sub(today.m.COGS).Round(0)
		out.MonthlyMargin = month.m.Revenue.Sub(month.m.COGS).Round(0)
	}
	for _, t := range top.list {
		out.TopProducts = append(out.TopProducts, dto.TopProductDTO{
			ProductID:    t.ProductID,
			ProductName:  t.ProductName,
			QuantitySold: t.QuantitySold,
			TotalRevenue: t.Revenue.Round(0),
		})
	}
	for _, p := range pays.list {
		out.PaymentMethods = append(out.PaymentMethods, dto.PaymentMethodDTO{
			PaymentMethod: p.PaymentMethod,
			SalesCount:    p.SalesCount,
			Total:         p.Total.Round(0),
		})
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
