package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/analytics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsHandler dashboard y exportación de ventas.
type AnalyticsHandler struct {
	dashboard *analytics.DashboardUseCase
	export    *analytics.ExportUseCase
	loc       *time.Location
	errs      errorMapper
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(dashboard *analytics.DashboardUseCase, export *analytics.ExportUseCase, loc *time.Location, errs errorMapper) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{dashboard: dashboard, export: export, loc: loc, errs: errs}
}

// Dashboard godoc
// @Summary      Resumen de ventas del día y del mes
// @Description  analytics.view_full ve la empresa completa con márgenes; analytics.view_own solo las ventas propias.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.dashboard.GetSummary(c.UserContext(), GetToken(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// ExportSales godoc
// @Summary      Exportar ventas a Excel
// @Tags         analytics
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Desde (YYYY-MM-DD). Default: primer día del mes."
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD, inclusive). Default: hoy."
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/sales/export [get]
func (h *AnalyticsHandler) ExportSales(c *fiber.Ctx) error {
	now := time.Now().In(h.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.loc)
	last := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.loc)
	if s := c.Query("from"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return badQuery(c, "from debe tener formato YYYY-MM-DD")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return badQuery(c, "to debe tener formato YYYY-MM-DD")
		}
		last = t
	}
	to := last.AddDate(0, 0, 1)

	file, err := h.export.ExportSales(c.UserContext(), GetToken(c), from, to)
	if err != nil {
		return h.errs.respond(c, err)
	}
	name := "ventas_" + from.Format("20060102") + "_" + last.Format("20060102") + ".xlsx"
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(file)
}
