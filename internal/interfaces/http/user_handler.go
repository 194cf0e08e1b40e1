package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/usecase"
)

// UserHandler administración de usuarios de la empresa.
type UserHandler struct {
	uc   *usecase.UserUseCase
	errs errorMapper
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, errs errorMapper) *UserHandler {
	return &UserHandler{uc: uc, errs: errs}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := pageQuery(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	out, err := h.uc.List(c.UserContext(), GetToken(c), page)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "email, password, full_name, role"
// @Success      201  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetToken(c), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ChangeRole godoc
// @Summary      Cambiar rol
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateRoleRequest  true  "role"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	var in dto.UpdateRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ChangeRole(c.UserContext(), GetToken(c), c.Params("id"), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// Reactivate godoc
// @Summary      Reactivar usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/{id}/reactivate [post]
func (h *UserHandler) Reactivate(c *fiber.Ctx) error {
	out, err := h.uc.Reactivate(c.UserContext(), GetToken(c), c.Params("id"))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}

// pageQuery lee limit/offset del query string.
func pageQuery(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, err
	}
	return page, nil
}
