package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
)

func TestExportSales_EscribeVentasYDetalle(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	sales := []*entity.Sale{
		{
			ID: "s1", CashierID: "u1", Total: decimal.NewFromInt(1000),
			PaymentMethod: entity.PaymentCash, DocumentType: entity.DocumentBoleta, CreatedAt: created,
			Items: []entity.SaleItem{
				{ProductName: "Marraqueta", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(250), Subtotal: decimal.NewFromInt(1000)},
			},
		},
		{
			ID: "s2", CashierID: "u2", Total: decimal.NewFromInt(5990),
			PaymentMethod: entity.PaymentDebit, DocumentType: entity.DocumentFactura, CreatedAt: created.Add(time.Hour),
			Customer: &entity.SaleCustomer{RUT: "763543218", BusinessName: "Almacén Don Pepe"},
			Annulled: true,
			Items: []entity.SaleItem{
				{ProductName: "Queque", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5990), Subtotal: decimal.NewFromInt(5990)},
			},
		},
	}

	out, err := NewSalesExporter(nil).ExportSales(&entity.Company{Name: "La Espiga"}, created, created.AddDate(0, 0, 1), sales)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSales)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "s1", rows[1][1])
	assert.Equal(t, "vigente", rows[1][8])
	assert.Equal(t, "76.354.321-8", rows[2][5])
	assert.Equal(t, "anulada", rows[2][8])

	total, err := f.GetCellValue(SheetSales, "H3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "5990", total)

	items, err := f.GetRows(SheetItems)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Marraqueta", items[1][1])
	assert.Equal(t, "s2", items[2][0])
}

func TestExportSales_SinVentas(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	out, err := NewSalesExporter(time.UTC).ExportSales(nil, from, from.AddDate(0, 1, 0), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSales)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
