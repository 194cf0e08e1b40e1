package validation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
)

func TestStruct_PayloadValido(t *testing.T) {
	v := validation.New()
	req := dto.SubmitSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)}},
		Total:         decimal.NewFromInt(1000),
		PaymentMethod: "efectivo",
		DocumentType:  "boleta",
	}
	assert.NoError(t, v.Struct(req))
}

func TestStruct_ErroresPorCampoConNombreJSON(t *testing.T) {
	v := validation.New()
	req := dto.SubmitSaleRequest{PaymentMethod: "cheque", DocumentType: "factura"}

	err := v.Struct(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items")
	assert.Contains(t, verr.Fields, "payment_method")
	assert.Contains(t, verr.Fields, "customer", "factura exige receptor")
	assert.NotContains(t, verr.Fields, "document_type")
}

func TestStruct_RUTDelReceptor(t *testing.T) {
	v := validation.New()
	req := dto.SubmitSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500)}},
		Total:         decimal.NewFromInt(500),
		PaymentMethod: "debito",
		DocumentType:  "factura",
		Customer:      &dto.SaleCustomerRequest{RUT: "12.345.678-9", BusinessName: "Almacén Don Pepe"},
	}
	err := v.Struct(req)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "RUT inválido", verr.Fields["customer.rut"])

	req.Customer.RUT = "12.345.678-5"
	assert.NoError(t, v.Struct(req))
}
