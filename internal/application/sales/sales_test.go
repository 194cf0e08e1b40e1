package sales_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/sales"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

const secret = "test-secret"

type fixture struct {
	db     *memory.DB
	submit *sales.SubmitUseCase
	sales  *sales.SalesUseCase
}

type fakeRenderer struct{ calls int }

func (f *fakeRenderer) RenderSaleReceipt(c *entity.Company, s *entity.Sale) ([]byte, error) {
	f.calls++
	return []byte("%PDF-" + s.ID), nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	memory.SeedDemo(db, "")
	gate := auth.NewGate(jwt.NewVerifier(secret), db, db)
	v := validation.New()
	return &fixture{
		db:     db,
		submit: sales.NewSubmitUseCase(gate, v),
		sales:  sales.NewSalesUseCase(gate, &fakeRenderer{}),
	}
}

func tok(t *testing.T, userID string) string {
	t.Helper()
	s, err := jwt.Generate(secret, userID, "", "test", 60)
	require.NoError(t, err)
	return s
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.db.ForTenant(memory.DemoCompanyID).Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func boleta(items ...dto.SaleItemRequest) dto.SubmitSaleRequest {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.UnitPrice))
	}
	return dto.SubmitSaleRequest{Items: items, Total: total, PaymentMethod: "efectivo", DocumentType: "boleta"}
}

func item(productID string, qty, price int64) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: productID, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)}
}

func TestSubmit_VentaValidaDescuentaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.submit.Submit(ctx, tok(t, memory.DemoCajeroID), boleta(item(memory.DemoMarraquetaID, 4, 250), item(memory.DemoQuequeID, 1, 5990)))
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(6990)))
	assert.Equal(t, "efectivo", res.PaymentMethod)
	assert.Equal(t, "boleta", res.DocumentType)

	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(116)))
	assert.True(t, f.stock(t, memory.DemoQuequeID).Equal(decimal.NewFromInt(5)))

	movs, err := f.db.ForTenant(memory.DemoCompanyID).Movements().ListByReference(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeOUT, m.Type)
		assert.Equal(t, entity.MovementSourceSale, m.Source)
		assert.True(t, m.Quantity.IsNegative())
	}
}

func TestSubmit_TotalQueNoCuadraNoSeCorrige(t *testing.T) {
	f := newFixture(t)
	req := boleta(item(memory.DemoMarraquetaID, 2, 250))
	req.Total = decimal.NewFromInt(400)

	_, err := f.submit.Submit(context.Background(), tok(t, memory.DemoCajeroID), req)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "total")
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)), "no se escribe nada")
}

func TestSubmit_ReglasDeValidacion(t *testing.T) {
	f := newFixture(t)
	token := tok(t, memory.DemoCajeroID)

	casos := []struct {
		nombre string
		mod    func(r *dto.SubmitSaleRequest)
		campo  string
	}{
		{"sin items", func(r *dto.SubmitSaleRequest) { r.Items = nil; r.Total = decimal.Zero }, "items"},
		{"medio de pago desconocido", func(r *dto.SubmitSaleRequest) { r.PaymentMethod = "cheque" }, "payment_method"},
		{"documento desconocido", func(r *dto.SubmitSaleRequest) { r.DocumentType = "ticket" }, "document_type"},
		{"cantidad cero", func(r *dto.SubmitSaleRequest) { r.Items[0].Quantity = decimal.Zero; r.Total = decimal.Zero }, "items[0].quantity"},
		{"precio negativo", func(r *dto.SubmitSaleRequest) {
			r.Items[0].UnitPrice = decimal.NewFromInt(-1)
			r.Total = decimal.NewFromInt(-1)
		}, "items[0].unit_price"},
		{"factura sin receptor", func(r *dto.SubmitSaleRequest) { r.DocumentType = "factura" }, "customer"},
		{"factura con RUT inválido", func(r *dto.SubmitSaleRequest) {
			r.DocumentType = "factura"
			r.Customer = &dto.SaleCustomerRequest{RUT: "12345678-9", BusinessName: "Comercial Sur"}
		}, "customer.rut"},
		{"factura sin razón social", func(r *dto.SubmitSaleRequest) {
			r.DocumentType = "factura"
			r.Customer = &dto.SaleCustomerRequest{RUT: "12345678-5"}
		}, "customer.business_name"},
		{"producto inexistente", func(r *dto.SubmitSaleRequest) { r.Items[0].ProductID = "no-existe" }, "items[0].product_id"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			req := boleta(item(memory.DemoMarraquetaID, 1, 250))
			c.mod(&req)
			_, err := f.submit.Submit(context.Background(), token, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation), "got %v", err)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, c.campo)
		})
	}
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)))
}

func TestSubmit_FacturaConReceptorValido(t *testing.T) {
	f := newFixture(t)
	req := boleta(item(memory.DemoQuequeID, 2, 5990))
	req.DocumentType = "factura"
	req.PaymentMethod = "transferencia"
	req.Customer = &dto.SaleCustomerRequest{RUT: "12.345.678-5", BusinessName: "Cafetería Central SpA"}

	res, err := f.submit.Submit(context.Background(), tok(t, memory.DemoAdminID), req)
	require.NoError(t, err)

	sale, err := f.sales.Get(context.Background(), tok(t, memory.DemoAdminID), res.ID)
	require.NoError(t, err)
	require.NotNil(t, sale.Customer)
	assert.Equal(t, "123456785", sale.Customer.RUT)
}

func TestSubmit_BoletaIgnoraReceptorIncompleto(t *testing.T) {
	f := newFixture(t)
	req := boleta(item(memory.DemoMarraquetaID, 2, 250))
	req.Customer = &dto.SaleCustomerRequest{BusinessName: "Vecino"}

	res, err := f.submit.Submit(context.Background(), tok(t, memory.DemoCajeroID), req)
	require.NoError(t, err)

	sale, err := f.sales.Get(context.Background(), tok(t, memory.DemoCajeroID), res.ID)
	require.NoError(t, err)
	assert.Nil(t, sale.Customer)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(118)))
}

func TestSubmit_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	req := boleta(item(memory.DemoMarraquetaID, 10, 250), item(memory.DemoQuequeID, 7, 5990))

	_, err := f.submit.Submit(context.Background(), tok(t, memory.DemoCajeroID), req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)), "la primera línea también se revierte")
	assert.True(t, f.stock(t, memory.DemoQuequeID).Equal(decimal.NewFromInt(6)))
}

func TestSubmit_PanaderoNoPuedeVender(t *testing.T) {
	f := newFixture(t)
	_, err := f.submit.Submit(context.Background(), tok(t, memory.DemoPanaderoID), boleta(item(memory.DemoMarraquetaID, 1, 250)))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)))
}

func TestSubmit_SinSesion(t *testing.T) {
	f := newFixture(t)
	_, err := f.submit.Submit(context.Background(), "", boleta(item(memory.DemoMarraquetaID, 1, 250)))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSubmit_ClientRefEsIdempotente(t *testing.T) {
	f := newFixture(t)
	req := boleta(item(memory.DemoMarraquetaID, 3, 250))
	req.ClientRef = "cola-123"
	token := tok(t, memory.DemoCajeroID)

	first, err := f.submit.Submit(context.Background(), token, req)
	require.NoError(t, err)
	second, err := f.submit.Submit(context.Background(), token, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(117)), "el reenvío no descuenta dos veces")
}

func TestAnnul_DevuelveStockYNoSeRepite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.submit.Submit(ctx, tok(t, memory.DemoCajeroID), boleta(item(memory.DemoMarraquetaID, 5, 250)))
	require.NoError(t, err)
	require.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(115)))

	_, err = f.sales.Annul(ctx, tok(t, memory.DemoCajeroID), res.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "cajero no anula")

	annulled, err := f.sales.Annul(ctx, tok(t, memory.DemoAdminID), res.ID)
	require.NoError(t, err)
	assert.True(t, annulled.Annulled)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)))

	_, err = f.sales.Annul(ctx, tok(t, memory.DemoAdminID), res.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, f.stock(t, memory.DemoMarraquetaID).Equal(decimal.NewFromInt(120)))
}

func TestList_CajeroVeSoloLasPropias(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.submit.Submit(ctx, tok(t, memory.DemoCajeroID), boleta(item(memory.DemoMarraquetaID, 1, 250)))
	require.NoError(t, err)
	deAdmin, err := f.submit.Submit(ctx, tok(t, memory.DemoAdminID), boleta(item(memory.DemoMarraquetaID, 2, 250)))
	require.NoError(t, err)

	own, err := f.sales.List(ctx, tok(t, memory.DemoCajeroID), dto.SaleListRequest{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, memory.DemoCajeroID, own.Items[0].CashierID)

	all, err := f.sales.List(ctx, tok(t, memory.DemoAdminID), dto.SaleListRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	_, err = f.sales.Get(ctx, tok(t, memory.DemoCajeroID), deAdmin.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.sales.List(ctx, tok(t, memory.DemoPanaderoID), dto.SaleListRequest{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.submit.Submit(ctx, tok(t, memory.DemoCajeroID), boleta(item(memory.DemoQuequeID, 1, 5990)))
	require.NoError(t, err)

	pdf, err := f.sales.Receipt(ctx, tok(t, memory.DemoCajeroID), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+res.ID, string(pdf))

	_, err = f.sales.Receipt(ctx, tok(t, memory.DemoAdminID), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
