package repository

import (
	"context"
	"time"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas. CashierID vacío = todas las de la empresa.
type SaleFilter struct {
	CashierID string
	From, To  *time.Time
	Limit     int
	Offset    int
}

// SaleRepository persistencia de ventas con sus líneas.
type SaleRepository interface {
	// Create persiste cabecera e ítems. Un client_ref repetido devuelve domain.ErrDuplicate.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetByClientRef(ctx context.Context, clientRef string) (*entity.Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// MarkAnnulled marca la venta como anulada. domain.ErrConflict si ya lo estaba.
	MarkAnnulled(ctx context.Context, id, by string, at time.Time) error
}
