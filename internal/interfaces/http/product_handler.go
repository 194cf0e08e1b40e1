package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
)

// ProductHandler catálogo de insumos y productos, ajustes de stock y kardex.
type ProductHandler struct {
	uc   *inventory.ProductUseCase
	errs errorMapper
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *inventory.ProductUseCase, errs errorMapper) *ProductHandler {
	return &ProductHandler{uc: uc, errs: errs}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        category  query  string  false  "insumo | producto"
// @Param        limit     query  int     false  "Límite (default 20)"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.List(c.UserContext(), GetToken(c), c.Query("category"), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos bajo el stock mínimo
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.ListLowStock(c.UserContext(), GetToken(c), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Cambiar la unidad convierte stock, mínimo y costo a la nueva unidad.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetToken(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Param        id  path  string  true  "ID del producto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetToken(c), c.Params("id")); err != nil {
		return h.errs.respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock
// @Description  quantity positiva suma (con unit_cost opcional); negativa descuenta.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "quantity, unit_cost, notes"
// @Success      200  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjust [post]
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStock(c.UserContext(), GetToken(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Kardex del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.Movements(c.UserContext(), GetToken(c), c.Params("id"), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
