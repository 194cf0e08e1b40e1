package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta enviada por el POS.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleCustomerRequest receptor de una factura.
type SaleCustomerRequest struct {
	RUT          string `json:"rut" validate:"required,rut"`
	BusinessName string `json:"business_name" validate:"required,max=200"`
	Activity     string `json:"activity" validate:"max=200"`
	Address      string `json:"address" validate:"max=300"`
	Email        string `json:"email" validate:"omitempty,email"`
}

// SubmitSaleRequest payload de POST /api/sales. Es también lo que guarda la cola offline del POS.
// Total debe coincidir exactamente con la suma de quantity*unit_price.
type SubmitSaleRequest struct {
	ClientRef     string               `json:"client_ref,omitempty" validate:"omitempty,max=64"`
	Items         []SaleItemRequest    `json:"items" validate:"required,min=1,dive"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod string               `json:"payment_method" validate:"required,oneof=efectivo debito credito transferencia"`
	DocumentType  string               `json:"document_type" validate:"required,oneof=boleta factura"`
	Customer      *SaleCustomerRequest `json:"customer,omitempty" validate:"required_if=DocumentType factura"`
}

// SaleCreatedResponse respuesta de una venta aceptada.
type SaleCreatedResponse struct {
	ID            string          `json:"id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	DocumentType  string          `json:"document_type"`
}

// SaleItemResponse línea de una venta.
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta completa.
type SaleResponse struct {
	ID            string               `json:"id"`
	CashierID     string               `json:"cashier_id"`
	ClientRef     string               `json:"client_ref,omitempty"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod string               `json:"payment_method"`
	DocumentType  string               `json:"document_type"`
	Customer      *SaleCustomerRequest `json:"customer,omitempty"`
	Annulled      bool                 `json:"annulled"`
	AnnulledAt    *time.Time           `json:"annulled_at,omitempty"`
	Items         []SaleItemResponse   `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
}

// SaleListRequest filtros de GET /api/sales.
type SaleListRequest struct {
	PageRequest
	From *time.Time
	To   *time.Time
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
