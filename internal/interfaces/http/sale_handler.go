package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/sales"
)

// dateLayout formato de fechas en query strings (YYYY-MM-DD).
const dateLayout = "2006-01-02"

// SaleHandler registro, consulta, anulación y comprobante de ventas.
type SaleHandler struct {
	submit *sales.SubmitUseCase
	sales  *sales.SalesUseCase
	loc    *time.Location
	errs   errorMapper
}

// NewSaleHandler construye el handler. loc es la zona horaria de las fechas del query.
func NewSaleHandler(submit *sales.SubmitUseCase, uc *sales.SalesUseCase, loc *time.Location, errs errorMapper) *SaleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleHandler{submit: submit, sales: uc, loc: loc, errs: errs}
}

// Submit godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de forma atómica. Con client_ref repetido devuelve la venta ya registrada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitSaleRequest  true  "Ítems, total, medio de pago y documento"
// @Success      201  {object}  dto.SaleCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.submit.Submit(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Description  Con sales.view_all lista toda la empresa; con sales.view_own solo las del cajero.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	in := dto.SaleListRequest{PageRequest: page}
	if s := c.Query("from"); s != "" {
		from, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return badQuery(c, "from debe tener formato YYYY-MM-DD")
		}
		in.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := time.ParseInLocation(dateLayout, s, h.loc)
		if err != nil {
			return badQuery(c, "to debe tener formato YYYY-MM-DD")
		}
		end := to.AddDate(0, 0, 1)
		in.To = &end
	}
	out, err := h.sales.List(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	out, err := h.sales.Get(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Annul godoc
// @Summary      Anular venta
// @Description  Repone el stock de cada ítem. Una venta anulada no puede volver a anularse.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/annul [post]
func (h *SaleHandler) Annul(c *fiber.Ctx) error {
	out, err := h.sales.Annul(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.sales.Receipt(c.UserContext(), GetToken(c), id)
	if err != nil {
		return h.errs.respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="venta-`+id+`.pdf"`)
	return c.Send(pdf)
}
