package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago aceptados en caja.
const (
	PaymentCash     = "efectivo"
	PaymentDebit    = "debito"
	PaymentCredit   = "credito"
	PaymentTransfer = "transferencia"
)

// Tipos de documento tributario emitido por la venta.
const (
	DocumentBoleta  = "boleta"
	DocumentFactura = "factura"
)

// Sale cabecera de una venta. Solo se crea por el camino autorizado de ventas.
type Sale struct {
	ID            string
	CompanyID     string
	CashierID     string
	ClientRef     string // id local de la cola offline del POS (idempotencia del reenvío)
	Total         decimal.Decimal
	PaymentMethod string
	DocumentType  string
	Customer      *SaleCustomer // obligatorio para factura
	Annulled      bool
	AnnulledAt    *time.Time
	AnnulledBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []SaleItem
}

// SaleCustomer datos del receptor de una factura.
type SaleCustomer struct {
	RUT          string
	BusinessName string
	Activity     string // giro
	Address      string
	Email        string
}

// SaleItem línea de la venta.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
