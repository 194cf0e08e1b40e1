package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// SubmitOutcome resultado de SubmitOrQueue: o la venta creada o la entrada encolada.
type SubmitOutcome struct {
	Sale     *dto.SaleCreatedResponse `json:"sale,omitempty"`
	Queued   bool                     `json:"queued"`
	QueuedID string                   `json:"queued_id,omitempty"`
}

// Service camino de venta del POS: intenta enviar y, si no hay conexión, encola.
type Service struct {
	submitter Submitter
	queue     *Queue
	log       *logger.Logger
}

// NewService construye el servicio.
func NewService(submitter Submitter, queue *Queue, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{submitter: submitter, queue: queue, log: log}
}

// SubmitOrQueue envía la venta. Solo ErrConnectivity provoca el encolado; los errores
// de negocio (*RejectedError) se devuelven sin encolar. Si la cola no es durable, la falta
// de conexión se reporta como ErrQueueUnavailable en vez de simular un encolado.
// El client_ref se fija antes del primer intento: si el servidor alcanzó a grabar la
// venta pero la respuesta se perdió, el reenvío desde la cola no la duplica.
func (s *Service) SubmitOrQueue(ctx context.Context, payload dto.SubmitSaleRequest) (*SubmitOutcome, error) {
	if payload.ClientRef == "" {
		payload.ClientRef = uuid.New().String()
	}
	sale, err := s.submitter.SubmitSale(ctx, payload)
	if err == nil {
		return &SubmitOutcome{Sale: sale}, nil
	}
	if !errors.Is(err, ErrConnectivity) {
		return nil, err
	}

	if !s.queue.Durable() {
		s.log.Error().Err(err).Msg("venta perdida: no hay almacenamiento offline configurado")
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	entry, qerr := s.queue.Enqueue(ctx, payload)
	if qerr != nil {
		return nil, qerr
	}
	s.log.Info().Str("queued_id", entry.ID).Str("cause", err.Error()).Msg("venta encolada sin conexión")
	return &SubmitOutcome{Queued: true, QueuedID: entry.ID}, nil
}
