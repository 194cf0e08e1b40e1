package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
)

// SessionCookie nombre y flags de la cookie de sesión.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler login, logout y sesión actual.
type AuthHandler struct {
	uc     *auth.AuthUseCase
	cookie SessionCookie
	errs   errorMapper
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, cookie SessionCookie, errs errorMapper) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie, errs: errs}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Emite el token de sesión y lo deja además en una cookie httpOnly.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return h.errs.respond(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    out.Token,
		Path:     "/",
		Expires:  out.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// Session godoc
// @Summary      Sesión actual y permisos efectivos
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	out, err := h.uc.Session(c.UserContext(), GetToken(c))
	if err != nil {
		return h.errs.respond(c, err)
	}
	return c.JSON(out)
}
