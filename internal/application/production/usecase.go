// Package production recetas y registro de producción.
package production

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	domaininv "github.com/jhoicas/panaderia-pos/internal/domain/inventory"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// UseCase recetas (recipes.*) y producción (production.*).
type UseCase struct {
	gate     *auth.Gate
	validate *validation.Validator
}

// NewUseCase construye el caso de uso.
func NewUseCase(gate *auth.Gate, validate *validation.Validator) *UseCase {
	return &UseCase{gate: gate, validate: validate}
}

// CreateRecipe crea una receta. La unidad de cada ingrediente debe ser la del insumo
// o convertible a ella (g para un insumo en kg, ml para uno en L).
func (uc *UseCase) CreateRecipe(ctx context.Context, token string, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.RecipesManage)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	if !in.Yield.IsPositive() {
		verr.Add("yield", "debe ser mayor que cero")
	}
	output, err := ac.Store.Products().GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if output == nil {
		verr.Add("product_id", "producto no existe")
	}
	for i, ing := range in.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		if !ing.Quantity.IsPositive() {
			verr.Add(field+".quantity", "debe ser mayor que cero")
		}
		p, err := ac.Store.Products().GetByID(ctx, ing.ProductID)
		if err != nil {
			return nil, err
		}
		switch {
		case p == nil:
			verr.Add(field+".product_id", "insumo no existe")
		case ing.ProductID == in.ProductID:
			verr.Add(field+".product_id", "una receta no puede consumir su propio producto")
		case !domaininv.Convertible(ing.Unit, p.Unit):
			verr.Add(field+".unit", fmt.Sprintf("no convertible a %s", p.Unit))
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	now := time.Now()
	recipe := &entity.Recipe{
		ID:        uuid.New().String(),
		CompanyID: ac.Store.TenantID(),
		Name:      in.Name,
		ProductID: in.ProductID,
		Yield:     in.Yield,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, ing := range in.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, entity.RecipeIngredient{
			ProductID: ing.ProductID, Quantity: ing.Quantity, Unit: ing.Unit,
		})
	}
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		return tx.Recipes().Create(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}
	return toRecipeResponse(recipe), nil
}

// GetRecipe obtiene una receta.
func (uc *UseCase) GetRecipe(ctx context.Context, token, id string) (*dto.RecipeResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.RecipesView)
	if err != nil {
		return nil, err
	}
	r, err := ac.Store.Recipes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toRecipeResponse(r), nil
}

// ListRecipes lista recetas por nombre.
func (uc *UseCase) ListRecipes(ctx context.Context, token string, page dto.PageRequest) ([]dto.RecipeResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.RecipesView)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := ac.Store.Recipes().List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *toRecipeResponse(r))
	}
	return out, nil
}

// Register produce recipe × batches en una transacción: consume cada insumo (convertido a su
// unidad de stock) y suma yield × batches al producto de salida, al costo de los insumos consumidos.
func (uc *UseCase) Register(ctx context.Context, token string, in dto.RegisterProductionRequest) (*dto.ProductionResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.ProductionManage)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	if !in.Batches.IsPositive() {
		return nil, domain.NewValidationError("batches", "debe ser mayor que cero")
	}

	var batch *entity.ProductionBatch
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		recipe, err := tx.Recipes().GetByID(ctx, in.RecipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return domain.ErrNotFound
		}
		output, err := tx.Products().GetByID(ctx, recipe.ProductID)
		if err != nil {
			return err
		}
		if output == nil {
			return fmt.Errorf("%w: producto de salida", domain.ErrNotFound)
		}

		now := time.Now()
		batchID := uuid.New().String()
		inputCost := decimal.Zero
		for _, ing := range recipe.Ingredients {
			p, err := tx.Products().GetByID(ctx, ing.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: insumo %s", domain.ErrNotFound, ing.ProductID)
			}
			qty := domaininv.ConvertQuantity(ing.Quantity.Mul(in.Batches), ing.Unit, p.Unit)
			mov, err := inventory.RegisterOUT(ctx, tx, inventory.MovementInput{
				Product: p, Quantity: qty, Source: entity.MovementSourceProduction,
				Reference: batchID, UserID: ac.CallerID, Now: now,
			})
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
				}
				return err
			}
			inputCost = inputCost.Add(mov.TotalCost.Abs())
		}

		produced := recipe.Yield.Mul(in.Batches)
		unitCost := inputCost.Div(produced)
		if _, err := inventory.RegisterIN(ctx, tx, inventory.MovementInput{
			Product: output, Quantity: produced, UnitCost: &unitCost, Source: entity.MovementSourceProduction,
			Reference: batchID, UserID: ac.CallerID, Notes: recipe.Name, Now: now,
		}); err != nil {
			return err
		}

		batch = &entity.ProductionBatch{
			ID:               batchID,
			CompanyID:        tx.TenantID(),
			RecipeID:         recipe.ID,
			ProductID:        output.ID,
			Batches:          in.Batches,
			QuantityProduced: produced,
			UnitCost:         unitCost,
			Notes:            in.Notes,
			ProducedBy:       ac.CallerID,
			CreatedAt:        now,
		}
		return tx.Production().Create(ctx, batch)
	})
	if err != nil {
		return nil, err
	}
	return toProductionResponse(batch), nil
}

// ListProduction historial de producción (más reciente primero).
func (uc *UseCase) ListProduction(ctx context.Context, token string, page dto.PageRequest) ([]dto.ProductionResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.ProductionView)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := ac.Store.Production().List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductionResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *toProductionResponse(b))
	}
	return out, nil
}

func toRecipeResponse(r *entity.Recipe) *dto.RecipeResponse {
	out := &dto.RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		ProductID:   r.ProductID,
		Yield:       r.Yield,
		Notes:       r.Notes,
		Ingredients: make([]dto.RecipeIngredientRequest, 0, len(r.Ingredients)),
		CreatedAt:   r.CreatedAt,
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, dto.RecipeIngredientRequest{
			ProductID: ing.ProductID, Quantity: ing.Quantity, Unit: ing.Unit,
		})
	}
	return out
}

func toProductionResponse(b *entity.ProductionBatch) *dto.ProductionResponse {
	return &dto.ProductionResponse{
		ID:               b.ID,
		RecipeID:         b.RecipeID,
		ProductID:        b.ProductID,
		Batches:          b.Batches,
		QuantityProduced: b.QuantityProduced,
		UnitCost:         b.UnitCost,
		Notes:            b.Notes,
		ProducedBy:       b.ProducedBy,
		CreatedAt:        b.CreatedAt,
	}
}
