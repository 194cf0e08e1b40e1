package offline

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConnectivity el servidor no está disponible (red, timeout o 5xx).
	// Es la única condición que encola la venta en vez de reportarla.
	ErrConnectivity = errors.New("sin conexión con el servidor")

	// ErrSyncInProgress ya hay una pasada de sincronización en curso.
	ErrSyncInProgress = errors.New("sincronización en curso")

	// ErrQueueUnavailable no hay conexión y la cola no es durable (QUEUE_DRIVER=none):
	// la venta no quedó registrada en ninguna parte.
	ErrQueueUnavailable = errors.New("sin conexión y sin almacenamiento offline")
)

// RejectedError el servidor respondió y rechazó la venta (4xx). Es un error de negocio:
// reintentar el mismo payload no cambia el resultado.
type RejectedError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("venta rechazada (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("venta rechazada (%d %s)", e.Status, e.Code)
}

// IsTransient informa si err es un fallo que puede resolverse solo reintentando:
// conectividad o timeout. Los rechazos del servidor y los errores inesperados no lo son.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConnectivity) || errors.Is(err, context.DeadlineExceeded)
}
