package production_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/production"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

const secret = "test-secret"

func setup(t *testing.T) (*production.UseCase, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	memory.SeedDemo(db, "")
	gate := auth.NewGate(jwt.NewVerifier(secret), db, db)
	return production.NewUseCase(gate, validation.New()), db
}

func tok(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.Generate(secret, userID, "", "test", 60)
	require.NoError(t, err)
	return s
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(t *testing.T, db *memory.DB, id string) *entity.Product {
	t.Helper()
	p, err := db.ForTenant(memory.DemoCompanyID).Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func marraquetaRecipe() dto.CreateRecipeRequest {
	return dto.CreateRecipeRequest{
		Name:      "Marraqueta",
		ProductID: memory.DemoMarraquetaID,
		Yield:     d("10"),
		Ingredients: []dto.RecipeIngredientRequest{
			{ProductID: memory.DemoHarinaID, Quantity: d("500"), Unit: "g"},
			{ProductID: memory.DemoMantequillaID, Quantity: d("50"), Unit: "g"},
		},
	}
}

func TestRegister_ConsumeInsumosConvertidosYSumaProducto(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()
	token := tok(t, memory.DemoPanaderoID)

	recipe, err := uc.CreateRecipe(ctx, token, marraquetaRecipe())
	require.NoError(t, err)

	res, err := uc.Register(ctx, token, dto.RegisterProductionRequest{RecipeID: recipe.ID, Batches: d("4")})
	require.NoError(t, err)
	assert.True(t, res.QuantityProduced.Equal(d("40")))
	assert.True(t, res.UnitCost.Equal(d("82.5")), "got %s", res.UnitCost)

	assert.True(t, product(t, db, memory.DemoHarinaID).Stock.Equal(d("48")))
	assert.True(t, product(t, db, memory.DemoMantequillaID).Stock.Equal(d("7.8")))
	marraqueta := product(t, db, memory.DemoMarraquetaID)
	assert.True(t, marraqueta.Stock.Equal(d("160")))
	assert.True(t, marraqueta.Cost.Equal(d("80.625")), "costo promedio ponderado, got %s", marraqueta.Cost)

	list, err := uc.ListProduction(ctx, token, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ID, list[0].ID)
}

func TestRegister_InsumoInsuficienteNoEscribeNada(t *testing.T) {
	uc, db := setup(t)
	ctx := context.Background()
	token := tok(t, memory.DemoPanaderoID)

	recipe, err := uc.CreateRecipe(ctx, token, marraquetaRecipe())
	require.NoError(t, err)

	// 200 lotes * 500 g = 100 kg de harina; hay 50
	_, err = uc.Register(ctx, token, dto.RegisterProductionRequest{RecipeID: recipe.ID, Batches: d("200")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, product(t, db, memory.DemoHarinaID).Stock.Equal(d("50")))
	assert.True(t, product(t, db, memory.DemoMarraquetaID).Stock.Equal(d("120")))
	list, err := uc.ListProduction(ctx, token, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateRecipe_UnidadNoConvertible(t *testing.T) {
	uc, _ := setup(t)
	req := marraquetaRecipe()
	req.Ingredients[0].Unit = "ml"

	_, err := uc.CreateRecipe(context.Background(), tok(t, memory.DemoPanaderoID), req)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "ingredients[0].unit")
}

func TestPermisos_CajeroNoProduce(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	_, err := uc.CreateRecipe(ctx, tok(t, memory.DemoCajeroID), marraquetaRecipe())
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = uc.ListRecipes(ctx, tok(t, memory.DemoCajeroID), dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = uc.Register(ctx, tok(t, memory.DemoCajeroID), dto.RegisterProductionRequest{RecipeID: "x", Batches: d("1")})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
