package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesMetrics agregados de ventas no anuladas en un período.
type SalesMetrics struct {
	SalesCount int
	Revenue    decimal.Decimal
	COGS       decimal.Decimal // cantidad * products.cost
}

// TopProductResult producto más vendido en el período.
type TopProductResult struct {
	ProductID    string
	ProductName  string
	QuantitySold decimal.Decimal
	Revenue      decimal.Decimal
}

// PaymentMethodResult total por medio de pago.
type PaymentMethodResult struct {
	PaymentMethod string
	SalesCount    int
	Total         decimal.Decimal
}

// AnalyticsRepository consultas de lectura para el dashboard. Las implementaciones son read-only.
// cashierID vacío agrega toda la empresa; si no, solo las ventas de ese cajero.
type AnalyticsRepository interface {
	GetSalesMetrics(ctx context.Context, cashierID string, start, end time.Time) (SalesMetrics, error)
	GetTopProducts(ctx context.Context, cashierID string, start, end time.Time, limit int) ([]TopProductResult, error)
	GetPaymentBreakdown(ctx context.Context, cashierID string, start, end time.Time) ([]PaymentMethodResult, error)
}
