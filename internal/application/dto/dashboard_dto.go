package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/analytics/dashboard.
// Scope "full" agrega toda la empresa; "own" solo las ventas del usuario.
type DashboardSummaryDTO struct {
	Scope string `json:"scope"`

	// Métricas del día actual (00:00 – 23:59)
	TodaySales  decimal.Decimal `json:"today_sales"`
	TodayCount  int             `json:"today_count"`
	TodayMargin decimal.Decimal `json:"today_margin"` // cero en scope own

	// Métricas del mes en curso (día 1 – hoy)
	MonthlySales  decimal.Decimal `json:"monthly_sales"`
	MonthlyCount  int             `json:"monthly_count"`
	MonthlyMargin decimal.Decimal `json:"monthly_margin"`

	// Top 5 productos por ingreso del mes
	TopProducts []TopProductDTO `json:"top_products"`

	// Totales del mes por medio de pago
	PaymentMethods []PaymentMethodDTO `json:"payment_methods"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// TopProductDTO producto del widget del dashboard.
type TopProductDTO struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// PaymentMethodDTO total por medio de pago.
type PaymentMethodDTO struct {
	PaymentMethod string          `json:"payment_method"`
	SalesCount    int             `json:"sales_count"`
	Total         decimal.Decimal `json:"total"`
}
