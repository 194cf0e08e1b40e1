package offline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// Submitter envía una venta al servidor. Los errores de conectividad envuelven
// ErrConnectivity; los rechazos del servidor son *RejectedError.
// Si ctx trae una credencial (CredentialFrom), la venta se envía a nombre de ese operador.
type Submitter interface {
	SubmitSale(ctx context.Context, payload dto.SubmitSaleRequest) (*dto.SaleCreatedResponse, error)
}

// SyncResult resumen de una pasada.
type SyncResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// DefaultEntryTimeout tiempo máximo por venta reenviada si no se configura otro.
const DefaultEntryTimeout = 15 * time.Second

// Syncer reenvía la cola al servidor, una venta a la vez y en orden de llegada.
// Nunca corren dos pasadas en paralelo.
type Syncer struct {
	queue        *Queue
	submitter    Submitter
	entryTimeout time.Duration
	log          *logger.Logger
	running      atomic.Bool
}

// NewSyncer construye el sincronizador. entryTimeout <= 0 usa DefaultEntryTimeout.
func NewSyncer(queue *Queue, submitter Submitter, entryTimeout time.Duration, log *logger.Logger) *Syncer {
	if entryTimeout <= 0 {
		entryTimeout = DefaultEntryTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{queue: queue, submitter: submitter, entryTimeout: entryTimeout, log: log}
}

// Running informa si hay una pasada en curso.
func (s *Syncer) Running() bool { return s.running.Load() }

// Run ejecuta una pasada completa. El fallo de una entrada no corta la pasada:
// se registra el error en la entrada y se sigue con la próxima. Solo una cancelación
// de ctx detiene la pasada antes de tiempo.
func (s *Syncer) Run(ctx context.Context) (SyncResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.running.Store(false)

	res := SyncResult{Errors: map[string]string{}}
	pending, err := s.queue.ListPending(ctx)
	if err != nil {
		return res, err
	}

	for _, entry := range pending {
		if entry.Synced {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.logResult(res)
			return res, err
		}
		res.Total++

		sale, err := s.submit(ctx, entry)
		// El registro del resultado no se corta aunque ctx se cancele durante el envío.
		bk := context.WithoutCancel(ctx)
		if err == nil {
			res.Succeeded++
			s.log.Debug().Str("queued_id", entry.ID).Str("sale_id", sale.ID).Msg("venta sincronizada")
			if derr := s.queue.Dequeue(bk, entry.ID); derr != nil {
				// La venta ya existe en el servidor; se marca para que purge la quite después.
				synced := true
				_ = s.queue.Update(bk, entry.ID, QueuedSaleUpdate{Synced: &synced})
				s.log.Warn().Err(derr).Str("queued_id", entry.ID).Msg("no se pudo quitar la venta sincronizada")
			}
			continue
		}

		res.Failed++
		msg := err.Error()
		res.Errors[entry.ID] = msg
		attempts := entry.Attempts + 1
		retryable := IsTransient(err)
		upd := QueuedSaleUpdate{LastError: &msg, Attempts: &attempts, Retryable: &retryable}
		if uerr := s.queue.Update(bk, entry.ID, upd); uerr != nil {
			s.log.Warn().Err(uerr).Str("queued_id", entry.ID).Msg("no se pudo registrar el error de la venta")
		}
		s.log.Warn().Err(err).Str("queued_id", entry.ID).Int("attempts", attempts).Bool("retryable", retryable).Msg("venta no sincronizada")
	}

	s.logResult(res)
	return res, nil
}

func (s *Syncer) logResult(res SyncResult) {
	s.log.Info().
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Int("total", res.Total).
		Msg("pasada de sincronización")
}

// submit envía una entrada con su propio timeout. Un panic del submitter se
// reporta como error de la entrada.
func (s *Syncer) submit(ctx context.Context, entry QueuedSale) (sale *dto.SaleCreatedResponse, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.entryTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			sale, err = nil, fmt.Errorf("offline: error inesperado: %v", r)
		}
	}()

	sale, err = s.submitter.SubmitSale(WithCredential(ctx, entry.Token), entry.Payload)
	if err == nil && sale == nil {
		err = fmt.Errorf("offline: respuesta vacía del servidor")
	}
	return sale, err
}
