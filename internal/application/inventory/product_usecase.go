package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/inventory"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// ProductUseCase casos de uso de productos e insumos. Cada operación pasa por la compuerta con su permiso.
type ProductUseCase struct {
	gate     *auth.Gate
	validate *validation.Validator
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(gate *auth.Gate, validate *validation.Validator) *ProductUseCase {
	return &ProductUseCase{gate: gate, validate: validate}
}

// Create crea un producto. Un stock inicial positivo queda registrado como entrada manual.
func (uc *ProductUseCase) Create(ctx context.Context, token string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryCreate)
	if err != nil {
		return nil, err
	}
	in.SKU = strings.TrimSpace(in.SKU)
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	verr := &domain.ValidationError{}
	for field, v := range map[string]decimal.Decimal{"stock": in.Stock, "min_stock": in.MinStock, "cost": in.Cost, "price": in.Price} {
		if v.IsNegative() {
			verr.Add(field, "no puede ser negativo")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: ac.Store.TenantID(),
		SKU:       in.SKU,
		Name:      in.Name,
		Category:  in.Category,
		Unit:      in.Unit,
		Stock:     decimal.Zero,
		MinStock:  in.MinStock,
		Cost:      in.Cost,
		Price:     in.Price,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		if !in.Stock.IsPositive() {
			return nil
		}
		_, err := RegisterIN(ctx, tx, MovementInput{
			Product: product, Quantity: in.Stock, Source: entity.MovementSourceManual,
			UserID: ac.CallerID, Notes: "stock inicial", Now: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, token, id string) (*dto.ProductResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryView)
	if err != nil {
		return nil, err
	}
	p, err := ac.Store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(p), nil
}

// List lista productos; category vacío = todas.
func (uc *ProductUseCase) List(ctx context.Context, token, category string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	return uc.list(ctx, token, repository.ProductFilter{Category: category}, page)
}

// ListLowStock productos con stock en o bajo el mínimo.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, token string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	return uc.list(ctx, token, repository.ProductFilter{LowStock: true}, page)
}

func (uc *ProductUseCase) list(ctx context.Context, token string, f repository.ProductFilter, page dto.PageRequest) (*dto.ProductListResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryView)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := ac.Store.Products().List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualiza datos del producto. Si cambia la unidad, stock y costo se convierten
// (kg<->g, L<->ml); entre unidades no relacionadas los valores se mantienen.
func (uc *ProductUseCase) Update(ctx context.Context, token, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryEdit)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	var out *entity.Product
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Category != nil {
			p.Category = *in.Category
		}
		if in.MinStock != nil {
			if in.MinStock.IsNegative() {
				return domain.NewValidationError("min_stock", "no puede ser negativo")
			}
			p.MinStock = *in.MinStock
		}
		if in.Cost != nil {
			if in.Cost.IsNegative() {
				return domain.NewValidationError("cost", "no puede ser negativo")
			}
			p.Cost = *in.Cost
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return domain.NewValidationError("price", "no puede ser negativo")
			}
			p.Price = *in.Price
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		if in.Unit != nil && *in.Unit != p.Unit {
			p.Stock, p.Cost = inventory.ConvertUnits(p.Stock, p.Cost, p.Unit, *in.Unit)
			p.MinStock = inventory.ConvertQuantity(p.MinStock, p.Unit, *in.Unit)
			p.Unit = *in.Unit
		}
		p.UpdatedAt = time.Now()
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(out), nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(ctx context.Context, token, id string) error {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryDelete)
	if err != nil {
		return err
	}
	return ac.Store.Products().Delete(ctx, id)
}

// AdjustStock ajuste manual con cantidad con signo. Positivo con unit_cost re-promedia el costo.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, token, id string, in dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryAdjustStock)
	if err != nil {
		return nil, err
	}
	if err := uc.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Quantity.IsZero() {
		return nil, domain.NewValidationError("quantity", "no puede ser cero")
	}
	if in.UnitCost != nil && in.Quantity.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "solo aplica a entradas")
	}

	var (
		product *entity.Product
		mov     *entity.InventoryMovement
	)
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		input := MovementInput{
			Product: p, Quantity: in.Quantity.Abs(), UnitCost: in.UnitCost,
			Source: entity.MovementSourceManual, UserID: ac.CallerID, Notes: in.Notes,
		}
		if in.Quantity.IsPositive() {
			mov, err = RegisterIN(ctx, tx, input)
		} else {
			mov, err = RegisterOUT(ctx, tx, input)
		}
		product = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.AdjustStockResponse{
		Product:  *ToProductResponse(product),
		Movement: ToMovementResponse(mov),
	}, nil
}

// Movements historial de movimientos de un producto.
func (uc *ProductUseCase) Movements(ctx context.Context, token, productID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.InventoryView)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := ac.Store.Movements().ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToProductResponse convierte la entidad en DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Cost:      p.Cost,
		Price:     p.Price,
		Active:    p.Active,
		LowStock:  p.IsLowStock(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToMovementResponse convierte el movimiento en DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Source:    m.Source,
		Reference: m.Reference,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		TotalCost: m.TotalCost,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}
