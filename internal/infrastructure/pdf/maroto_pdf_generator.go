// Package pdf genera el comprobante de una movimentação cerrada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo + Código       │  Estado + Fecha de cierre    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Desc% | Subtotal          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Ítems / Valor total                                │
//	│  FOOTER: Link público                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
	"github.com/jhoicas/Movimientos-api/internal/domain/entity"
)

var (
	qtyPrinter = message.NewPrinter(language.BrazilianPortuguese)

	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReceiptGenerator implementa inventory.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateMovementReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateMovementReceipt(
	_ context.Context,
	movement *entity.Movement,
	lines []inventory.ReceiptLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprovante de movimentação", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(movement))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(movement))
	m.AddRows(footerRow(movement))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(mov *entity.Movement) core.Row {
	closed := "-"
	if mov.ClosedAt != nil {
		closed = mov.ClosedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("MOVIMENTAÇÃO DE "+strings.ToUpper(mov.Type), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Código: %d", mov.Code), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(mov.State), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
			}),
			text.New("Cierre: "+closed, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc%", 1, align.Center),
		h("Subtotal", 3, align.Right),
	)
}

func tableRows(lines []inventory.ReceiptLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(formatQty(l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.UnitPrice.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.DiscountPercent.String()+"%",
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("$"+formatMoney(l.Subtotal.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func totalsRow(mov *entity.Movement) core.Row {
	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			text.New("Ítems:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}),
			text.New("VALOR TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 6,
			}),
		),
		col.New(3).Add(
			text.New(formatQty(mov.TotalItems), props.Text{Size: 9, Align: align.Right, Right: 1}),
			text.New("$"+formatMoney(mov.TotalValue.StringFixed(2)), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 6,
			}),
		),
	)
}

func footerRow(mov *entity.Movement) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("Link: "+mov.Link, props.Text{Size: 7, Color: colorGray, Top: 3}),
	))
}

// formatQty cantidades con separador de miles ("1.234").
func formatQty(n int64) string {
	return qtyPrinter.Sprintf("%d", n)
}

// formatMoney inserta puntos de miles en la parte entera y coma decimal.
// Ej: "25000.50" → "25.000,50"
func formatMoney(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if hasFrac {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
