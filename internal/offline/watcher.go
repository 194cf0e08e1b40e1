package offline

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// HealthChecker sonda de disponibilidad del servidor.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// WatcherConfig cadencias del observador de conectividad.
type WatcherConfig struct {
	Interval   time.Duration // sondeo estando online
	MaxBackoff time.Duration // tope del backoff estando offline
}

// Watcher observa la conectividad con el servidor. Online sondea a cadencia fija;
// offline espacia los sondeos con backoff exponencial. Al pasar de offline a online
// dispara una pasada de sincronización, y estando online repite la pasada en cada
// tick mientras queden ventas nuevas o con fallos transitorios.
type Watcher struct {
	health HealthChecker
	syncer *Syncer
	queue  *Queue
	cfg    WatcherConfig
	log    *logger.Logger

	onChange func(online bool)
}

// NewWatcher construye el observador.
func NewWatcher(health HealthChecker, syncer *Syncer, queue *Queue, cfg WatcherConfig, log *logger.Logger) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{health: health, syncer: syncer, queue: queue, cfg: cfg, log: log}
}

// OnChange registra un callback para cada transición de conectividad.
func (w *Watcher) OnChange(fn func(online bool)) { w.onChange = fn }

func (w *Watcher) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.Interval / 10
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Millisecond
	}
	b.MaxInterval = w.cfg.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run bloquea hasta que ctx se cancela.
func (w *Watcher) Run(ctx context.Context) error {
	b := w.newBackOff()
	online := false
	first := true

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		var wait time.Duration
		if err := w.health.Health(ctx); err != nil {
			if online || first {
				w.log.Warn().Err(err).Msg("servidor no disponible")
				w.changed(false)
			}
			online = false
			wait = b.NextBackOff()
		} else {
			if !online {
				w.log.Info().Msg("conexión con el servidor restablecida")
				w.changed(true)
				b.Reset()
				w.sync(ctx)
			} else if w.needsReplay(ctx) {
				w.sync(ctx)
			}
			online = true
			wait = w.cfg.Interval
		}
		first = false
		timer.Reset(wait)
	}
}

func (w *Watcher) changed(online bool) {
	if w.onChange != nil {
		w.onChange(online)
	}
}

// needsReplay informa si hay ventas nuevas o con un fallo transitorio pendiente.
// Las rechazadas por el servidor esperan al operador.
func (w *Watcher) needsReplay(ctx context.Context) bool {
	pending, err := w.queue.ListPending(ctx)
	if err != nil {
		return false
	}
	for _, e := range pending {
		if e.NeedsReplay() {
			return true
		}
	}
	return false
}

func (w *Watcher) sync(ctx context.Context) {
	if _, err := w.syncer.Run(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) && !errors.Is(err, context.Canceled) {
		w.log.Error().Err(err).Msg("sincronización automática")
	}
}
