package offline

import "context"

// BlobStore almacenamiento local durable de un único blob por clave.
// Una clave inexistente devuelve un valor vacío, no un error.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// NopStore se usa cuando no hay almacenamiento durable configurado: siempre vacío, descarta escrituras.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, nil }
func (NopStore) Set(context.Context, string, []byte) error   { return nil }
