package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

const secret = "test-secret"

func setup(t *testing.T) *inventory.ProductUseCase {
	t.Helper()
	db := memory.NewDB()
	memory.SeedDemo(db, "")
	gate := auth.NewGate(jwt.NewVerifier(secret), db, db)
	return inventory.NewProductUseCase(gate, validation.New())
}

func tok(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.Generate(secret, userID, "", "test", 60)
	require.NoError(t, err)
	return s
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestUpdate_CambioDeUnidadConvierteStockYCosto(t *testing.T) {
	uc := setup(t)
	unit := entity.UnitG

	out, err := uc.Update(context.Background(), tok(t, memory.DemoPanaderoID), memory.DemoHarinaID, dto.UpdateProductRequest{Unit: &unit})
	require.NoError(t, err)

	assert.Equal(t, entity.UnitG, out.Unit)
	assert.True(t, out.Stock.Equal(dec("50000")), "50 kg = 50000 g, got %s", out.Stock)
	assert.True(t, out.MinStock.Equal(dec("10000")))
	assert.True(t, out.Cost.Equal(dec("0.9")), "$900/kg = $0,9/g, got %s", out.Cost)
}

func TestUpdate_UnidadesNoRelacionadasMantienenValores(t *testing.T) {
	uc := setup(t)
	unit := entity.UnitUnidades

	out, err := uc.Update(context.Background(), tok(t, memory.DemoAdminID), memory.DemoHarinaID, dto.UpdateProductRequest{Unit: &unit})
	require.NoError(t, err)
	assert.True(t, out.Stock.Equal(dec("50")))
	assert.True(t, out.Cost.Equal(dec("900")))
}

func TestAdjustStock_EntradaConCostoRepromedia(t *testing.T) {
	uc := setup(t)
	cost := dec("1200")

	out, err := uc.AdjustStock(context.Background(), tok(t, memory.DemoPanaderoID), memory.DemoHarinaID,
		dto.AdjustStockRequest{Quantity: dec("10"), UnitCost: &cost, Notes: "compra"})
	require.NoError(t, err)

	// (50*900 + 10*1200) / 60 = 950
	assert.True(t, out.Product.Stock.Equal(dec("60")))
	assert.True(t, out.Product.Cost.Equal(dec("950")), "got %s", out.Product.Cost)
	assert.Equal(t, entity.MovementTypeADJUSTMENT, out.Movement.Type)
	assert.True(t, out.Movement.Quantity.Equal(dec("10")))
}

func TestAdjustStock_SalidaSinStockSuficiente(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	panadero := tok(t, memory.DemoPanaderoID)

	_, err := uc.AdjustStock(ctx, panadero, memory.DemoMantequillaID, dto.AdjustStockRequest{Quantity: dec("-9")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := uc.GetByID(ctx, panadero, memory.DemoMantequillaID)
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec("8")), "un ajuste rechazado no toca el stock")
}

func TestAdjustStock_Validaciones(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	admin := tok(t, memory.DemoAdminID)
	cost := dec("100")

	_, err := uc.AdjustStock(ctx, admin, memory.DemoHarinaID, dto.AdjustStockRequest{Quantity: decimal.Zero})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")

	_, err = uc.AdjustStock(ctx, admin, memory.DemoHarinaID, dto.AdjustStockRequest{Quantity: dec("-1"), UnitCost: &cost})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "unit_cost")
}

func TestAdjustStock_CajeroSinPermiso(t *testing.T) {
	uc := setup(t)
	_, err := uc.AdjustStock(context.Background(), tok(t, memory.DemoCajeroID), memory.DemoHarinaID, dto.AdjustStockRequest{Quantity: dec("1")})

	var perr *domain.PermissionDeniedError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "inventory.adjust_stock", perr.Permission)
}

func TestCreate_StockInicialQuedaEnKardex(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	admin := tok(t, memory.DemoAdminID)

	out, err := uc.Create(ctx, admin, dto.CreateProductRequest{
		SKU: "INS-AZUCAR", Name: "Azúcar", Category: entity.CategoryIngredient, Unit: entity.UnitKg,
		Stock: dec("25"), MinStock: dec("5"), Cost: dec("1000"),
	})
	require.NoError(t, err)
	assert.True(t, out.Stock.Equal(dec("25")))

	movs, err := uc.Movements(ctx, admin, out.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "stock inicial", movs[0].Notes)

	_, err = uc.Create(ctx, admin, dto.CreateProductRequest{
		SKU: "INS-AZUCAR", Name: "Otra", Category: entity.CategoryIngredient, Unit: entity.UnitKg,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestListLowStock(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()
	admin := tok(t, memory.DemoAdminID)

	_, err := uc.AdjustStock(ctx, admin, memory.DemoQuequeID, dto.AdjustStockRequest{Quantity: dec("-5")})
	require.NoError(t, err)

	list, err := uc.ListLowStock(ctx, admin, dto.PageRequest{})
	require.NoError(t, err)
	ids := make([]string, 0, len(list.Items))
	for _, p := range list.Items {
		ids = append(ids, p.ID)
		assert.True(t, p.LowStock)
	}
	assert.Contains(t, ids, memory.DemoQuequeID)
	assert.NotContains(t, ids, memory.DemoHarinaID)
}
