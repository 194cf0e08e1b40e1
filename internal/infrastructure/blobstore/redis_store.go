package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/panaderia-pos/pkg/config"
)

// RedisStore guarda cada clave como un string de Redis bajo un prefijo.
// Sirve cuando varias cajas del mismo local comparten la cola.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient crea el cliente a partir de la configuración del agente.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStore construye el store. prefix puede ser vacío.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Ping comprueba la conexión.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get devuelve nil si la clave no existe.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: redis GET %s: %w", key, err)
	}
	return b, nil
}

// Set sin expiración.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("blobstore: redis SET %s: %w", key, err)
	}
	return nil
}

// Close cierra el cliente.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
