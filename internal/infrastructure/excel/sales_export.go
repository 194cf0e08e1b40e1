// Package excel escribe el libro de ventas de un período en formato xlsx.
package excel

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

// Hojas del libro.
const (
	SheetSales = "Ventas"
	SheetItems = "Detalle"
)

var salesHeaders = []string{"Fecha", "Venta", "Cajero", "Documento", "Medio de pago", "RUT receptor", "Razón social", "Total", "Estado"}
var salesWidths = []float64{18, 38, 38, 11, 15, 14, 28, 12, 10}

var itemHeaders = []string{"Venta", "Producto", "Cantidad", "Precio unitario", "Subtotal"}
var itemWidths = []float64{38, 28, 10, 15, 12}

// SalesExporter implementa analytics.SalesExporter con excelize.
type SalesExporter struct {
	loc *time.Location
}

// NewSalesExporter construye el exportador. Las fechas se escriben en loc (UTC si es nil).
func NewSalesExporter(loc *time.Location) *SalesExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &SalesExporter{loc: loc}
}

// ExportSales genera el libro: una fila por venta en "Ventas" y una por ítem en "Detalle".
func (e *SalesExporter) ExportSales(company *entity.Company, from, to time.Time, sales []*entity.Sale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSales); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	if _, err := f.NewSheet(SheetItems); err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F3E5D0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de cabecera: %w", err)
	}
	moneyFmt := "#,##0"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo moneda: %w", err)
	}

	if err := writeHeader(f, SheetSales, salesHeaders, salesWidths, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, SheetItems, itemHeaders, itemWidths, headerStyle); err != nil {
		return nil, err
	}

	salesRow, itemsRow := 2, 2
	for _, s := range sales {
		values := []interface{}{
			s.CreatedAt.In(e.loc).Format("2006-01-02 15:04"),
			s.ID,
			s.CashierID,
			s.DocumentType,
			s.PaymentMethod,
			"",
			"",
			s.Total.Round(0).IntPart(),
			"vigente",
		}
		if s.Customer != nil {
			values[5] = rut.Format(s.Customer.RUT)
			values[6] = s.Customer.BusinessName
		}
		if s.Annulled {
			values[8] = "anulada"
		}
		if err := writeRow(f, SheetSales, salesRow, values); err != nil {
			return nil, err
		}
		if err := setStyle(f, SheetSales, 8, salesRow, moneyStyle); err != nil {
			return nil, err
		}
		salesRow++

		for _, it := range s.Items {
			qty, _ := it.Quantity.Float64()
			values := []interface{}{
				s.ID,
				it.ProductName,
				qty,
				it.UnitPrice.Round(0).IntPart(),
				it.Subtotal.Round(0).IntPart(),
			}
			if err := writeRow(f, SheetItems, itemsRow, values); err != nil {
				return nil, err
			}
			for _, c := range []int{4, 5} {
				if err := setStyle(f, SheetItems, c, itemsRow, moneyStyle); err != nil {
					return nil, err
				}
			}
			itemsRow++
		}
	}

	for _, sheet := range []string{SheetSales, SheetItems} {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("excel: congelar cabecera: %w", err)
		}
	}

	if company != nil {
		if err := f.SetDocProps(&excelize.DocProperties{
			Creator: company.Name,
			Title:   fmt.Sprintf("Ventas %s a %s", from.In(e.loc).Format("2006-01-02"), to.In(e.loc).Format("2006-01-02")),
		}); err != nil {
			return nil, fmt.Errorf("excel: propiedades: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("excel: cabecera %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("excel: estilo %s: %w", cell, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("excel: ancho de columna: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("excel: celda %s: %w", cell, err)
		}
	}
	return nil
}

func setStyle(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}
