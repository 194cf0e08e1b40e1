package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/offline"
	"github.com/jhoicas/panaderia-pos/pkg/config"
)

func TestFileStore_GetInexistenteDevuelveVacio(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	b, err := s.Get(context.Background(), "pos:offline-sales")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestFileStore_SetReemplazaSinDejarTemporales(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "pos:offline-sales", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "pos:offline-sales", []byte(`[1,2]`)))

	b, err := s.Get(ctx, "pos:offline-sales")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(b))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "pos_offline-sales.json", files[0].Name())
}

func TestFileStore_CreaDirectorio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := NewFileStore(dir)
	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestFileStore_ColaSobreviveReinicio(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, _ := NewFileStore(dir)
	entry, err := offline.NewQueue(s1).Enqueue(ctx, dto.SubmitSaleRequest{PaymentMethod: "efectivo", DocumentType: "boleta"})
	require.NoError(t, err)

	s2, _ := NewFileStore(dir)
	pending, err := offline.NewQueue(s2).ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entry.ID, pending[0].ID)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	s := NewRedisStore(client, "caja1:")
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestRedisStore_GetSetConPrefijo(t *testing.T) {
	mr, s := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	b, err := s.Get(ctx, "pos:offline-sales")
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, s.Set(ctx, "pos:offline-sales", []byte(`[]`)))
	got, err := mr.Get("caja1:pos:offline-sales")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	b, err = s.Get(ctx, "pos:offline-sales")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))
}

func TestRedisStore_ErrorDeConexion(t *testing.T) {
	mr, s := setupRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestRedisStore_ColaCompleta(t *testing.T) {
	_, s := setupRedis(t)
	ctx := context.Background()
	q := offline.NewQueue(s)

	a, err := q.Enqueue(ctx, dto.SubmitSaleRequest{PaymentMethod: "debito", DocumentType: "boleta"})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, dto.SubmitSaleRequest{PaymentMethod: "efectivo", DocumentType: "boleta"})
	require.NoError(t, err)
	require.NoError(t, q.Dequeue(ctx, a.ID))

	pending, err := q.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "efectivo", pending[0].Payload.PaymentMethod)
}
