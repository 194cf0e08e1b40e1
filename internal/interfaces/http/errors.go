package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// errorMapper traduce errores de dominio a respuestas HTTP. Los errores no reconocidos
// se registran y responden 500 con un mensaje genérico.
type errorMapper struct {
	log *logger.Logger
}

func (m errorMapper) respond(c *fiber.Ctx, err error) error {
	status, body := m.translate(err)
	if status == fiber.StatusInternalServerError && m.log != nil {
		m.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func (m errorMapper) translate(err error) (int, dto.ErrorResponse) {
	var verr *domain.ValidationError
	var perr *domain.PermissionDeniedError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: verr.Fields}
	case errors.As(err, &perr):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: perr.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "sesión no válida o expirada"}
	case errors.Is(err, domain.ErrProfileNotFound):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "PROFILE_NOT_FOUND", Message: domain.ErrProfileNotFound.Error()}
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.Is(err, domain.ErrSelfDeactivation):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "SELF_DEACTIVATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "BAD_REQUEST", Message: err.Error()}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAMS", Message: msg})
}
