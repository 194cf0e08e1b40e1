// Package offline implementa la cola local de ventas del POS y su sincronización
// contra el servidor.
//
// La cola es una única secuencia ordenada guardada bajo una clave fija. Cada mutación
// reescribe la secuencia completa (leer, modificar, escribir). Dentro del proceso un mutex
// serializa las mutaciones; entre procesos que comparten el almacenamiento gana el último
// que escribe.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
)

// QueueKey clave fija bajo la que se persiste la cola.
const QueueKey = "pos:offline-sales"

// QueuedSale venta pendiente de envío.
type QueuedSale struct {
	ID        string                `json:"id"`
	Payload   dto.SubmitSaleRequest `json:"payload"`
	CreatedAt time.Time             `json:"created_at"`
	Synced    bool                  `json:"synced"`
	LastError string                `json:"last_error,omitempty"`
	Attempts  int                   `json:"attempts"`
	Retryable bool                  `json:"retryable"`       // el último fallo fue de conectividad
	Token     string                `json:"token,omitempty"` // sesión del operador que registró la venta
}

// Redacted copia de la entrada sin el token de sesión, para listados.
func (e QueuedSale) Redacted() QueuedSale {
	e.Token = ""
	return e
}

// Redact devuelve las entradas sin tokens de sesión.
func Redact(entries []QueuedSale) []QueuedSale {
	out := make([]QueuedSale, len(entries))
	for i, e := range entries {
		out[i] = e.Redacted()
	}
	return out
}

// NeedsReplay informa si la entrada debe reenviarse sin intervención del operador:
// nunca se intentó o su último fallo fue transitorio.
func (e QueuedSale) NeedsReplay() bool {
	return !e.Synced && (e.Attempts == 0 || e.Retryable)
}

// QueuedSaleUpdate campos a fusionar en una entrada. nil = no tocar.
type QueuedSaleUpdate struct {
	LastError *string
	Synced    *bool
	Attempts  *int
	Retryable *bool
}

// Queue cola FIFO de ventas pendientes.
type Queue struct {
	store BlobStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewQueue construye la cola sobre store. Con store nil usa NopStore.
// Una cola sobre NopStore no es durable: Durable devuelve false.
func NewQueue(store BlobStore) *Queue {
	if store == nil {
		store = NopStore{}
	}
	return &Queue{store: store, now: time.Now}
}

// Durable informa si lo encolado sobrevive: false cuando el store es NopStore.
func (q *Queue) Durable() bool {
	switch q.store.(type) {
	case NopStore, *NopStore:
		return false
	}
	return true
}

func (q *Queue) load(ctx context.Context) ([]QueuedSale, error) {
	raw, err := q.store.Get(ctx, QueueKey)
	if err != nil {
		return nil, fmt.Errorf("offline: leer cola: %w", err)
	}
	if len(raw) == 0 {
		return []QueuedSale{}, nil
	}
	var entries []QueuedSale
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("offline: decodificar cola: %w", err)
	}
	return entries, nil
}

func (q *Queue) save(ctx context.Context, entries []QueuedSale) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("offline: codificar cola: %w", err)
	}
	if err := q.store.Set(ctx, QueueKey, raw); err != nil {
		return fmt.Errorf("offline: escribir cola: %w", err)
	}
	return nil
}

// mutate aplica fn sobre la secuencia y la persiste completa si fn informa cambios.
func (q *Queue) mutate(ctx context.Context, fn func([]QueuedSale) ([]QueuedSale, bool)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(ctx)
	if err != nil {
		return err
	}
	next, changed := fn(entries)
	if !changed {
		return nil
	}
	return q.save(ctx, next)
}

// Enqueue agrega la venta al final con un id nuevo y synced=false.
// Si el payload no trae client_ref se usa el id de la entrada, así el servidor
// reconoce los reenvíos de la misma venta. La credencial adjunta a ctx (WithCredential)
// se guarda con la entrada para reenviarla a nombre del mismo operador.
func (q *Queue) Enqueue(ctx context.Context, payload dto.SubmitSaleRequest) (QueuedSale, error) {
	entry := QueuedSale{
		ID:        uuid.New().String(),
		Payload:   payload,
		CreatedAt: q.now().UTC(),
		Token:     CredentialFrom(ctx),
	}
	if entry.Payload.ClientRef == "" {
		entry.Payload.ClientRef = entry.ID
	}
	err := q.mutate(ctx, func(entries []QueuedSale) ([]QueuedSale, bool) {
		return append(entries, entry), true
	})
	if err != nil {
		return QueuedSale{}, err
	}
	return entry, nil
}

// Dequeue quita la entrada id. Si no existe no hace nada.
func (q *Queue) Dequeue(ctx context.Context, id string) error {
	return q.mutate(ctx, func(entries []QueuedSale) ([]QueuedSale, bool) {
		for i := range entries {
			if entries[i].ID == id {
				return append(entries[:i], entries[i+1:]...), true
			}
		}
		return entries, false
	})
}

// Update fusiona u en la entrada id. Si no existe no hace nada.
func (q *Queue) Update(ctx context.Context, id string, u QueuedSaleUpdate) error {
	return q.mutate(ctx, func(entries []QueuedSale) ([]QueuedSale, bool) {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			if u.LastError != nil {
				entries[i].LastError = *u.LastError
			}
			if u.Synced != nil {
				entries[i].Synced = *u.Synced
			}
			if u.Attempts != nil {
				entries[i].Attempts = *u.Attempts
			}
			if u.Retryable != nil {
				entries[i].Retryable = *u.Retryable
			}
			return entries, true
		}
		return entries, false
	})
}

// ListPending devuelve una copia de la secuencia completa en orden de llegada.
func (q *Queue) ListPending(ctx context.Context) ([]QueuedSale, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// PurgeSynced elimina las entradas marcadas como sincronizadas y devuelve cuántas quitó.
func (q *Queue) PurgeSynced(ctx context.Context) (int, error) {
	removed := 0
	err := q.mutate(ctx, func(entries []QueuedSale) ([]QueuedSale, bool) {
		kept := entries[:0]
		for _, e := range entries {
			if e.Synced {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		return kept, removed > 0
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
