// Package pdf genera el comprobante imprimible de una venta (boleta o factura).
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Razón Social + RUT │ BOLETA/FACTURA  │
//	│  ───────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email              │
//	│  RECEPTOR (solo factura): RUT + giro          │
//	│  ───────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal   │
//	│  ───────────────────────────────────────────  │
//	│  TOTAL + medio de pago                        │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 120, Green: 72, Blue: 20}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 190, Green: 20, Blue: 20}
)

var printer = message.NewPrinter(language.MustParse("es-CL"))

var paymentLabels = map[string]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentDebit:    "Débito",
	entity.PaymentCredit:   "Crédito",
	entity.PaymentTransfer: "Transferencia",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// RenderSaleReceipt genera el PDF del comprobante y devuelve sus bytes.
func (g *ReceiptGenerator) RenderSaleReceipt(company *entity.Company, sale *entity.Sale) ([]byte, error) {
	if company == nil || sale == nil {
		return nil, fmt.Errorf("pdf: empresa y venta son obligatorias")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(documentTitle(sale), true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(company))
	if sale.DocumentType == entity.DocumentFactura && sale.Customer != nil {
		m.AddRows(receptorRow(sale.Customer))
	}
	if sale.Annulled {
		m.AddRows(annulledRow(sale))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Gracias por su compra", props.Text{
			Size: 7, Align: align.Center, Color: colorGray, Top: 1,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func documentTitle(sale *entity.Sale) string {
	if sale.DocumentType == entity.DocumentFactura {
		return "FACTURA"
	}
	return "BOLETA"
}

// headerRow: razón social + RUT (izq) y tipo de documento + fecha (der).
func headerRow(company *entity.Company, sale *entity.Sale) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1,
			}),
			text.New("RUT: "+nonEmpty(rut.Format(company.RUT), "-"), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(documentTitle(sale), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+shortID(sale.ID), props.Text{
				Size: 8, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

func emisorRow(company *entity.Company) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "-"),
				nonEmpty(company.Phone, "-"),
				nonEmpty(company.Email, "-"),
			), props.Text{Size: 7, Top: 2, Color: colorGray}),
		),
	)
}

// receptorRow: datos del receptor de la factura.
func receptorRow(c *entity.SaleCustomer) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("RECEPTOR", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1,
			}),
			text.New(c.BusinessName, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 5,
			}),
			text.New(fmt.Sprintf("RUT: %s   |   Giro: %s   |   Dirección: %s",
				rut.Format(c.RUT),
				nonEmpty(c.Activity, "-"),
				nonEmpty(c.Address, "-"),
			), props.Text{Size: 7, Top: 11, Color: colorGray}),
		),
	)
}

func annulledRow(sale *entity.Sale) core.Row {
	label := "ANULADA"
	if sale.AnnulledAt != nil {
		label += " el " + sale.AnnulledAt.Format("02/01/2006 15:04")
	}
	return row.New(9).Add(col.New(12).Add(
		text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: colorRed, Top: 2,
		}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(7).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("P.Unit", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por ítem vendido.
func tableDetailRows(items []entity.SaleItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				formatQuantity(it.Quantity),
				props.Text{Size: 7, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				nonEmpty(it.ProductName, it.ProductID),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatCLP(it.UnitPrice),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatCLP(it.Subtotal),
				props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalsRow(sale *entity.Sale) core.Row {
	bold := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 1,
		})
	}
	return row.New(14).Add(
		col.New(5),
		col.New(3).Add(
			bold("TOTAL:"),
			text.New("Pago:", props.Text{Size: 8, Align: align.Right, Right: 1, Top: 8}),
		),
		col.New(4).Add(
			bold(formatCLP(sale.Total)),
			text.New(paymentLabel(sale.PaymentMethod), props.Text{
				Size: 8, Align: align.Right, Right: 1, Top: 8,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func paymentLabel(method string) string {
	if l, ok := paymentLabels[method]; ok {
		return l
	}
	return method
}

// formatCLP pesos chilenos sin decimales con separador de miles local.
func formatCLP(d decimal.Decimal) string {
	return printer.Sprintf("$%v", number.Decimal(d.Round(0).IntPart()))
}

// formatQuantity enteros sin decimales; fraccionarios (kg, L) con hasta 3.
func formatQuantity(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return strings.Replace(d.Round(3).String(), ".", ",", 1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
