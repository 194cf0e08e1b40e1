package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/production"
)

// ProductionHandler recetas y registro de producción.
type ProductionHandler struct {
	uc   *production.UseCase
	errs errorMapper
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.UseCase, errs errorMapper) *ProductionHandler {
	return &ProductionHandler{uc: uc, errs: errs}
}

// CreateRecipe godoc
// @Summary      Crear receta
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRecipeRequest  true  "Producto, rendimiento e ingredientes"
// @Success      201  {object}  dto.RecipeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/recipes [post]
func (h *ProductionHandler) CreateRecipe(c *fiber.Ctx) error {
	var in dto.CreateRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateRecipe(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetRecipe godoc
// @Summary      Obtener receta
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la receta"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [get]
func (h *ProductionHandler) GetRecipe(c *fiber.Ctx) error {
	out, err := h.uc.GetRecipe(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// ListRecipes godoc
// @Summary      Listar recetas
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RecipeResponse
// @Router       /api/recipes [get]
func (h *ProductionHandler) ListRecipes(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.ListRecipes(c.UserContext(), GetToken(c), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Register godoc
// @Summary      Registrar producción
// @Description  Descuenta los insumos de la receta (convertidos a la unidad de cada insumo) y suma el producto terminado.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterProductionRequest  true  "recipe_id, batches"
// @Success      201  {object}  dto.ProductionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *ProductionHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Register(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProduction godoc
// @Summary      Historial de producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductionResponse
// @Router       /api/production [get]
func (h *ProductionHandler) ListProduction(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.ListProduction(c.UserContext(), GetToken(c), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
