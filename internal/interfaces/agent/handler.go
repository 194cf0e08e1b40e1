// Package agent API local del agente POS. La UI de caja le habla a este proceso y no al
// servidor: si el servidor no responde, la venta queda en la cola offline.
package agent

import (
	"errors"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	apphttp "github.com/jhoicas/panaderia-pos/internal/interfaces/http"
	"github.com/jhoicas/panaderia-pos/internal/offline"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// Status estado de conectividad que publica el watcher.
type Status struct {
	online atomic.Bool
}

// Set registra el último estado observado.
func (s *Status) Set(online bool) { s.online.Store(online) }

// Online último estado observado (false hasta el primer sondeo exitoso).
func (s *Status) Online() bool { return s.online.Load() }

// StatusResponse cuerpo de GET /local/status.
type StatusResponse struct {
	Online  bool `json:"online"`
	Pending int  `json:"pending"`
	Syncing bool `json:"syncing"`
}

// DefaultSessionCookie cookie de sesión que la UI de caja reenvía al agente.
const DefaultSessionCookie = "session"

// Handler endpoints /local.
type Handler struct {
	service *offline.Service
	queue   *offline.Queue
	syncer  *offline.Syncer
	status  *Status
	log     *logger.Logger
	cookie  string
}

// NewHandler construye el handler.
func NewHandler(service *offline.Service, queue *offline.Queue, syncer *offline.Syncer, status *Status, log *logger.Logger) *Handler {
	if status == nil {
		status = &Status{}
	}
	return &Handler{service: service, queue: queue, syncer: syncer, status: status, log: log, cookie: DefaultSessionCookie}
}

// WithSessionCookie cambia el nombre de la cookie de sesión del operador.
func (h *Handler) WithSessionCookie(name string) *Handler {
	if name != "" {
		h.cookie = name
	}
	return h
}

// SubmitSale godoc
// @Summary      Registrar venta desde la caja
// @Description  201 si el servidor la registró; 202 si quedó en la cola offline.
// @Description  La venta se envía con la sesión del operador (cookie o Bearer); sin sesión se usa la del agente.
// @Tags         local
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitSaleRequest  true  "Venta"
// @Success      201  {object}  offline.SubmitOutcome
// @Success      202  {object}  offline.SubmitOutcome
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /local/sales [post]
func (h *Handler) SubmitSale(c *fiber.Ctx) error {
	var in dto.SubmitSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ctx := offline.WithCredential(c.UserContext(), apphttp.GetToken(c))
	out, err := h.service.SubmitOrQueue(ctx, in)
	if err != nil {
		var rej *offline.RejectedError
		if errors.As(err, &rej) {
			return c.Status(rej.Status).JSON(dto.ErrorResponse{Code: rej.Code, Message: rej.Message, Fields: rej.Fields})
		}
		if errors.Is(err, offline.ErrQueueUnavailable) {
			h.log.Error().Err(err).Msg("registrar venta")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "OFFLINE_UNAVAILABLE", Message: "sin conexión con el servidor y sin almacenamiento offline: la venta no se registró"})
		}
		h.log.Error().Err(err).Msg("registrar venta")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo registrar ni encolar la venta"})
	}
	if out.Queued {
		return c.Status(fiber.StatusAccepted).JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListQueue godoc
// @Summary      Ventas en la cola offline
// @Tags         local
// @Produce      json
// @Success      200  {array}  offline.QueuedSale
// @Router       /local/queue [get]
func (h *Handler) ListQueue(c *fiber.Ctx) error {
	entries, err := h.queue.ListPending(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(offline.Redact(entries))
}

// Sync godoc
// @Summary      Forzar una pasada de sincronización
// @Tags         local
// @Produce      json
// @Success      200  {object}  offline.SyncResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /local/sync [post]
func (h *Handler) Sync(c *fiber.Ctx) error {
	res, err := h.syncer.Run(c.UserContext())
	if err != nil {
		if errors.Is(err, offline.ErrSyncInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SYNC_IN_PROGRESS", Message: err.Error()})
		}
		return h.internal(c, err)
	}
	return c.JSON(res)
}

// RemoveEntry godoc
// @Summary      Quitar una venta de la cola
// @Description  Para ventas rechazadas que no se van a reenviar. Un id inexistente no es error.
// @Tags         local
// @Param        id  path  string  true  "ID de la entrada"
// @Success      204
// @Router       /local/queue/{id} [delete]
func (h *Handler) RemoveEntry(c *fiber.Ctx) error {
	if err := h.queue.Dequeue(c.UserContext(), c.Params("id")); err != nil {
		return h.internal(c, err)
	}
	h.log.Warn().Str("queued_id", c.Params("id")).Msg("entrada quitada de la cola a mano")
	return c.SendStatus(fiber.StatusNoContent)
}

// Purge godoc
// @Summary      Eliminar entradas ya sincronizadas
// @Tags         local
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /local/queue/purge [post]
func (h *Handler) Purge(c *fiber.Ctx) error {
	n, err := h.queue.PurgeSynced(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	return c.JSON(fiber.Map{"removed": n})
}

// GetStatus godoc
// @Summary      Conectividad y tamaño de la cola
// @Tags         local
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /local/status [get]
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	entries, err := h.queue.ListPending(c.UserContext())
	if err != nil {
		return h.internal(c, err)
	}
	pending := 0
	for _, e := range entries {
		if !e.Synced {
			pending++
		}
	}
	return c.JSON(StatusResponse{Online: h.status.Online(), Pending: pending, Syncing: h.syncer.Running()})
}

func (h *Handler) internal(c *fiber.Ctx, err error) error {
	h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// Router registra las rutas /local.
func Router(app *fiber.App, h *Handler) {
	local := app.Group("/local")
	local.Use(apphttp.SessionToken(h.cookie))
	local.Post("/sales", h.SubmitSale)
	local.Get("/status", h.GetStatus)
	local.Get("/queue", h.ListQueue)
	local.Post("/queue/purge", h.Purge)
	local.Delete("/queue/:id", h.RemoveEntry)
	local.Post("/sync", h.Sync)
}
