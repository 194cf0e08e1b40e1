// Package sales registro, consulta y anulación de ventas.
package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

// SubmitUseCase registra una venta del POS: cabecera, líneas, descuento de stock y
// movimientos OUT en una sola transacción.
type SubmitUseCase struct {
	gate     *auth.Gate
	validate *validation.Validator
}

// NewSubmitUseCase construye el caso de uso.
func NewSubmitUseCase(gate *auth.Gate, validate *validation.Validator) *SubmitUseCase {
	return &SubmitUseCase{gate: gate, validate: validate}
}

// Submit valida y persiste la venta. Exige sales.create.
//
// Un payload inválido devuelve *domain.ValidationError y no escribe nada. Si client_ref
// ya fue registrado en la empresa, devuelve la venta existente sin volver a descontar stock.
func (uc *SubmitUseCase) Submit(ctx context.Context, token string, in dto.SubmitSaleRequest) (*dto.SaleCreatedResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.SalesCreate)
	if err != nil {
		return nil, err
	}
	in.ClientRef = strings.TrimSpace(in.ClientRef)
	// La boleta no tiene receptor: un customer parcial que mande el POS se descarta.
	if in.DocumentType != entity.DocumentFactura {
		in.Customer = nil
	}
	if err := uc.check(in); err != nil {
		return nil, err
	}

	if in.ClientRef != "" {
		existing, err := ac.Store.Sales().GetByClientRef(ctx, in.ClientRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return toCreated(existing), nil
		}
	}

	now := time.Now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CompanyID:     ac.Store.TenantID(),
		CashierID:     ac.CallerID,
		ClientRef:     in.ClientRef,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		DocumentType:  in.DocumentType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.DocumentType == entity.DocumentFactura && in.Customer != nil {
		sale.Customer = &entity.SaleCustomer{
			RUT:          rut.Clean(in.Customer.RUT),
			BusinessName: strings.TrimSpace(in.Customer.BusinessName),
			Activity:     in.Customer.Activity,
			Address:      in.Customer.Address,
			Email:        in.Customer.Email,
		}
	}

	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		verr := &domain.ValidationError{}
		for i, item := range in.Items {
			product, err := tx.Products().GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.Active {
				verr.Add(fmt.Sprintf("items[%d].product_id", i), "producto no existe")
				continue
			}
			if _, err := inventory.RegisterOUT(ctx, tx, inventory.MovementInput{
				Product:   product,
				Quantity:  item.Quantity,
				Source:    entity.MovementSourceSale,
				Reference: sale.ID,
				UserID:    ac.CallerID,
				Now:       now,
			}); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, product.Name)
				}
				return err
			}
			sale.Items = append(sale.Items, entity.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      sale.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Subtotal:    item.Quantity.Mul(item.UnitPrice),
			})
		}
		if verr.HasErrors() {
			return verr
		}
		return tx.Sales().Create(ctx, sale)
	})
	if err != nil {
		// Dos reenvíos simultáneos del mismo client_ref: gana el primero.
		if in.ClientRef != "" && errors.Is(err, domain.ErrDuplicate) {
			if existing, gerr := ac.Store.Sales().GetByClientRef(ctx, in.ClientRef); gerr == nil && existing != nil {
				return toCreated(existing), nil
			}
		}
		return nil, err
	}
	return toCreated(sale), nil
}

// check aplica reglas estructurales (validator) y de negocio. Junta todos los errores por campo.
func (uc *SubmitUseCase) check(in dto.SubmitSaleRequest) error {
	verr := &domain.ValidationError{}
	if err := uc.validate.Struct(in); err != nil {
		var fe *domain.ValidationError
		if !errors.As(err, &fe) {
			return err
		}
		for k, v := range fe.Fields {
			verr.Add(k, v)
		}
	}

	sum := decimal.Zero
	for i, item := range in.Items {
		if !item.Quantity.IsPositive() {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if item.UnitPrice.IsNegative() {
			verr.Add(fmt.Sprintf("items[%d].unit_price", i), "no puede ser negativo")
		}
		sum = sum.Add(item.Quantity.Mul(item.UnitPrice))
	}
	if len(in.Items) > 0 && !sum.Equal(in.Total) {
		verr.Add("total", fmt.Sprintf("no coincide con la suma de los ítems (%s)", sum.String()))
	}

	if in.DocumentType == entity.DocumentFactura && in.Customer != nil {
		if strings.TrimSpace(in.Customer.BusinessName) == "" {
			verr.Add("customer.business_name", "es obligatorio")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func toCreated(s *entity.Sale) *dto.SaleCreatedResponse {
	return &dto.SaleCreatedResponse{
		ID:            s.ID,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		DocumentType:  s.DocumentType,
	}
}
