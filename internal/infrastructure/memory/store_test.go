package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
)

func seed(db *memory.DB) {
	db.PutCompany(entity.Company{ID: "c1", Name: "Panadería Uno"})
	db.PutCompany(entity.Company{ID: "c2", Name: "Panadería Dos"})
	db.PutProduct(entity.Product{ID: "harina", CompanyID: "c1", SKU: "HAR", Name: "Harina", Unit: "kg", Stock: decimal.NewFromInt(10)})
	db.PutProduct(entity.Product{ID: "ajeno", CompanyID: "c2", SKU: "HAR", Name: "Harina", Unit: "kg", Stock: decimal.NewFromInt(5)})
}

func TestStore_AcotadoAEmpresa(t *testing.T) {
	db := memory.NewDB()
	seed(db)
	ctx := context.Background()
	s := db.ForTenant("c1")

	p, err := s.Products().GetByID(ctx, "ajeno")
	require.NoError(t, err)
	assert.Nil(t, p, "no debe ver productos de otra empresa")

	list, err := s.Products().List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "harina", list[0].ID)

	_, err = s.Products().DecrementStock(ctx, "ajeno", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_TransaccionRevierteAlFallar(t *testing.T) {
	db := memory.NewDB()
	seed(db)
	ctx := context.Background()
	s := db.ForTenant("c1")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx repository.Store) error {
		_, err := tx.Products().DecrementStock(ctx, "harina", decimal.NewFromInt(4))
		require.NoError(t, err)
		require.NoError(t, tx.Movements().Create(ctx, &entity.InventoryMovement{ID: "m1", ProductID: "harina"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, "harina")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)), "stock restaurado, got %s", p.Stock)
	movs, err := s.Movements().ListByReference(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestStore_StockInsuficiente(t *testing.T) {
	db := memory.NewDB()
	seed(db)
	ctx := context.Background()
	s := db.ForTenant("c1")

	_, err := s.Products().DecrementStock(ctx, "harina", decimal.NewFromInt(11))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	left, err := s.Products().DecrementStock(ctx, "harina", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, left.IsZero())
}

func TestStore_AnularDosVecesEsConflicto(t *testing.T) {
	db := memory.NewDB()
	seed(db)
	ctx := context.Background()
	s := db.ForTenant("c1")

	require.NoError(t, s.Sales().Create(ctx, &entity.Sale{ID: "v1", ClientRef: "q1", Total: decimal.NewFromInt(100), CreatedAt: time.Now()}))
	assert.ErrorIs(t, s.Sales().Create(ctx, &entity.Sale{ID: "v2", ClientRef: "q1"}), domain.ErrDuplicate)

	require.NoError(t, s.Sales().MarkAnnulled(ctx, "v1", "u1", time.Now()))
	assert.ErrorIs(t, s.Sales().MarkAnnulled(ctx, "v1", "u1", time.Now()), domain.ErrConflict)
}
