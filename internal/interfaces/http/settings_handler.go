package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/usecase"
)

// SettingsHandler datos de la empresa.
type SettingsHandler struct {
	uc   *usecase.SettingsUseCase
	errs errorMapper
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *usecase.SettingsUseCase, errs errorMapper) *SettingsHandler {
	return &SettingsHandler{uc: uc, errs: errs}
}

// Get godoc
// @Summary      Datos de la empresa
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CompanyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/settings/company [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetToken(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar datos de la empresa
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a modificar"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/settings/company [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
