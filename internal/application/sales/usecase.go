package sales

import (
	"context"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

// ReceiptRenderer genera el comprobante imprimible de una venta.
type ReceiptRenderer interface {
	RenderSaleReceipt(company *entity.Company, sale *entity.Sale) ([]byte, error)
}

// SalesUseCase consulta, anulación y comprobante de ventas.
// Con sales.view_all se ve toda la empresa; con solo sales.view_own, únicamente las propias.
type SalesUseCase struct {
	gate     *auth.Gate
	receipts ReceiptRenderer
}

// NewSalesUseCase construye el caso de uso.
func NewSalesUseCase(gate *auth.Gate, receipts ReceiptRenderer) *SalesUseCase {
	return &SalesUseCase{gate: gate, receipts: receipts}
}

func (uc *SalesUseCase) authorizeView(ctx context.Context, token string) (*auth.Context, error) {
	return uc.gate.ValidateAny(ctx, token, permission.SalesViewAll, permission.SalesViewOwn)
}

// visible carga la venta aplicando la regla view_all / view_own.
func visible(ctx context.Context, ac *auth.Context, id string) (*entity.Sale, error) {
	sale, err := ac.Store.Sales().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if !ac.Can(permission.SalesViewAll) && sale.CashierID != ac.CallerID {
		return nil, &domain.PermissionDeniedError{Permission: permission.SalesViewAll.String()}
	}
	return sale, nil
}

// List lista ventas del período (más recientes primero).
func (uc *SalesUseCase) List(ctx context.Context, token string, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	ac, err := uc.authorizeView(ctx, token)
	if err != nil {
		return nil, err
	}
	in.DefaultPage()
	filter := repository.SaleFilter{From: in.From, To: in.To, Limit: in.Limit, Offset: in.Offset}
	if !ac.Can(permission.SalesViewAll) {
		filter.CashierID = ac.CallerID
	}
	list, err := ac.Store.Sales().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, ToSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// Get obtiene una venta.
func (uc *SalesUseCase) Get(ctx context.Context, token, id string) (*dto.SaleResponse, error) {
	ac, err := uc.authorizeView(ctx, token)
	if err != nil {
		return nil, err
	}
	sale, err := visible(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	out := ToSaleResponse(sale)
	return &out, nil
}

// Annul anula la venta y devuelve el stock con movimientos IN (origen annulment).
// Una venta ya anulada devuelve domain.ErrConflict.
func (uc *SalesUseCase) Annul(ctx context.Context, token, id string) (*dto.SaleResponse, error) {
	ac, err := uc.gate.ValidateRequest(ctx, token, permission.SalesAnnul)
	if err != nil {
		return nil, err
	}
	var out *entity.Sale
	err = ac.Store.WithTx(ctx, func(tx repository.Store) error {
		sale, err := tx.Sales().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		now := time.Now()
		if err := tx.Sales().MarkAnnulled(ctx, sale.ID, ac.CallerID, now); err != nil {
			return err
		}
		for _, item := range sale.Items {
			product, err := tx.Products().GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				// producto eliminado después de la venta: no hay stock que devolver
				continue
			}
			if _, err := inventory.RegisterIN(ctx, tx, inventory.MovementInput{
				Product:   product,
				Quantity:  item.Quantity,
				Source:    entity.MovementSourceAnnulment,
				Reference: sale.ID,
				UserID:    ac.CallerID,
				Now:       now,
			}); err != nil {
				return err
			}
		}
		sale.Annulled = true
		sale.AnnulledAt = &now
		sale.AnnulledBy = ac.CallerID
		out = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := ToSaleResponse(out)
	return &res, nil
}

// Receipt genera el PDF del comprobante. Misma regla de visibilidad que Get.
func (uc *SalesUseCase) Receipt(ctx context.Context, token, id string) ([]byte, error) {
	ac, err := uc.authorizeView(ctx, token)
	if err != nil {
		return nil, err
	}
	sale, err := visible(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	company, err := ac.Store.Company().Get(ctx)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return uc.receipts.RenderSaleReceipt(company, sale)
}

// ToSaleResponse convierte la venta en DTO.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:            s.ID,
		CashierID:     s.CashierID,
		ClientRef:     s.ClientRef,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		DocumentType:  s.DocumentType,
		Annulled:      s.Annulled,
		AnnulledAt:    s.AnnulledAt,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedAt:     s.CreatedAt,
	}
	if s.Customer != nil {
		out.Customer = &dto.SaleCustomerRequest{
			RUT:          s.Customer.RUT,
			BusinessName: s.Customer.BusinessName,
			Activity:     s.Customer.Activity,
			Address:      s.Customer.Address,
			Email:        s.Customer.Email,
		}
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		})
	}
	return out
}
