package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard. Excluye ventas anuladas.
type AnalyticsRepo struct {
	q      Querier
	tenant string
}

// salesScope condiciones comunes: empresa, período [start, end), no anuladas y opcionalmente cajero.
func (r *AnalyticsRepo) salesScope(cashierID string, start, end time.Time) *whereBuilder {
	w := &whereBuilder{}
	w.add("s.company_id = ?", r.tenant)
	w.add("s.created_at >= ?", start)
	w.add("s.created_at < ?", end)
	w.add("NOT s.annulled")
	if cashierID != "" {
		w.add("s.cashier_id = ?", cashierID)
	}
	return w
}

// GetSalesMetrics cantidad de ventas, ingresos y COGS (cantidad × costo promedio actual).
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, cashierID string, start, end time.Time) (repository.SalesMetrics, error) {
	w := r.salesScope(cashierID, start, end)
	query := `
	SELECT
	    COUNT(*)                                   AS sales_count,
	    COALESCE(SUM(s.total), 0)                  AS revenue,
	    COALESCE(SUM(c.cogs), 0)                   AS cogs
	FROM sales s
	LEFT JOIN LATERAL (
	    SELECT SUM(i.quantity * COALESCE(p.cost, 0)) AS cogs
	    FROM sale_items i
	    LEFT JOIN products p ON p.id = i.product_id
	    WHERE i.sale_id = s.id
	) c ON true` + w.sql()

	var out repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query, w.args...).Scan(&out.SalesCount, &out.Revenue, &out.COGS); err != nil {
		return out, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return out, nil
}

// GetTopProducts productos con más ingresos en el período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, cashierID string, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	w := r.salesScope(cashierID, start, end)
	query := w.paginate(`
	SELECT
	    i.product_id,
	    MAX(i.product_name)  AS product_name,
	    SUM(i.quantity)      AS quantity_sold,
	    SUM(i.subtotal)      AS revenue
	FROM sales s
	JOIN sale_items i ON i.sale_id = s.id`+w.sql()+`
	GROUP BY i.product_id
	ORDER BY revenue DESC, product_name`, limit, 0)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var results []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.QuantitySold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetPaymentBreakdown totales por medio de pago.
func (r *AnalyticsRepo) GetPaymentBreakdown(ctx context.Context, cashierID string, start, end time.Time) ([]repository.PaymentMethodResult, error) {
	w := r.salesScope(cashierID, start, end)
	query := `
	SELECT s.payment_method, COUNT(*) AS sales_count, SUM(s.total) AS total
	FROM sales s` + w.sql() + `
	GROUP BY s.payment_method
	ORDER BY s.payment_method`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetPaymentBreakdown: %w", err)
	}
	defer rows.Close()

	var results []repository.PaymentMethodResult
	for rows.Next() {
		var row repository.PaymentMethodResult
		if err := rows.Scan(&row.PaymentMethod, &row.SalesCount, &row.Total); err != nil {
			return nil, fmt.Errorf("analytics.GetPaymentBreakdown scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
