package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// LocalToken clave en c.Locals del token de sesión crudo.
const LocalToken = "session_token"

// SessionToken extrae el token de sesión de la cookie o, si no viene, del header
// "Authorization: Bearer <token>". No rechaza el request: la validación ocurre en el
// caso de uso, que es quien conoce los permisos requeridos.
func SessionToken(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalToken, extractToken(c, cookieName))
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx, cookieName string) string {
	if cookieName != "" {
		if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
			return v
		}
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetToken devuelve el token cargado por SessionToken ("" si no hay).
func GetToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalToken).(string)
	return s
}

// RequestLogger registra método, ruta, status y latencia de cada request.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return err
	}
}
