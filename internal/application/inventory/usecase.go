// Package inventory motor de movimientos de stock y casos de uso de productos.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/inventory"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// MovementInput datos de un movimiento. Quantity siempre positiva; el tipo decide el signo.
// UnitCost solo aplica a entradas: si viene, recalcula el costo promedio ponderado.
type MovementInput struct {
	Product   *entity.Product
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	Source    string
	Reference string
	UserID    string
	Notes     string
	Now       time.Time
}

// RegisterIN suma stock y guarda el movimiento. Debe llamarse dentro de tx.WithTx del caller.
func RegisterIN(ctx context.Context, tx repository.Store, in MovementInput) (*entity.InventoryMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	p := in.Product
	unitCost := p.Cost
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		unitCost = *in.UnitCost
		newCost := inventory.CostCalculator(p.Stock, p.Cost, in.Quantity, unitCost)
		if err := tx.Products().UpdateCost(ctx, p.ID, newCost); err != nil {
			return nil, err
		}
		p.Cost = newCost
	}
	stock, err := tx.Products().IncrementStock(ctx, p.ID, in.Quantity)
	if err != nil {
		return nil, err
	}
	p.Stock = stock

	mov := newMovement(in, entity.MovementTypeIN, in.Quantity, unitCost)
	if err := tx.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RegisterOUT verifica stock >= cantidad, resta y guarda el movimiento al costo promedio actual.
// Devuelve domain.ErrInsufficientStock sin escribir nada si no alcanza.
func RegisterOUT(ctx context.Context, tx repository.Store, in MovementInput) (*entity.InventoryMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	p := in.Product
	stock, err := tx.Products().DecrementStock(ctx, p.ID, in.Quantity)
	if err != nil {
		return nil, err
	}
	p.Stock = stock

	mov := newMovement(in, entity.MovementTypeOUT, in.Quantity.Neg(), p.Cost)
	if err := tx.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func newMovement(in MovementInput, typ string, qty, unitCost decimal.Decimal) *entity.InventoryMovement {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	if in.Source == entity.MovementSourceManual {
		typ = entity.MovementTypeADJUSTMENT
	}
	return &entity.InventoryMovement{
		ID:        uuid.New().String(),
		CompanyID: in.Product.CompanyID,
		ProductID: in.Product.ID,
		Type:      typ,
		Source:    in.Source,
		Reference: in.Reference,
		Quantity:  qty,
		UnitCost:  unitCost,
		TotalCost: qty.Mul(unitCost),
		Notes:     in.Notes,
		CreatedAt: now,
		CreatedBy: in.UserID,
	}
}
