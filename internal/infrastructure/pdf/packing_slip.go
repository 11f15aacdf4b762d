// Package pdf genera la guía de despacho (packing slip) de un pedido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Pedido + Estado  │  Fecha de creación + QR       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESTINATARIO: Nombre + dirección de despacho + teléfono     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | SKU | Descripción | Cant. | Verificado           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PIE: total de unidades + notas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// PackingSlipGenerator implementa order.PackingSlipRenderer con Maroto v2.
type PackingSlipGenerator struct{}

// NewPackingSlipGenerator construye el generador.
func NewPackingSlipGenerator() *PackingSlipGenerator { return &PackingSlipGenerator{} }

// RenderPackingSlip devuelve los bytes del PDF.
func (g *PackingSlipGenerator) RenderPackingSlip(_ context.Context, o *entity.Order, customer *entity.User) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de despacho "+o.OrderNumber, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(recipientRow(o, customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(o.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRows(o)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(o *entity.Order) core.Row {
	return row.New(28).Add(
		col.New(8).Add(
			text.New("GUÍA DE DESPACHO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(o.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 12, Top: 9}),
			text.New("Estado: "+string(o.Status)+"   |   Fecha: "+o.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Top: 17, Color: colorGray,
			}),
		),
		col.New(4).Add(code.NewQr(o.OrderNumber, props.Rect{Percent: 90, Center: true})),
	)
}

func recipientRow(o *entity.Order, customer *entity.User) core.Row {
	name := "—"
	if customer != nil {
		name = customer.Name
	}
	s := o.Shipping
	return row.New(20).Add(
		col.New(12).Add(
			text.New("DESTINATARIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("%s, %s %s, %s",
				nonEmpty(s.Address, "—"), nonEmpty(s.City, "—"), s.PostalCode, nonEmpty(s.Country, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
			text.New("Tel: "+nonEmpty(s.Phone, "—"), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Descripción", 6, align.Left),
		h("Cant.", 1, align.Center),
		h("Verificado", 2, align.Center),
	)
}

func itemRows(items []entity.OrderItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(it.LineNumber), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.ProductSKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New("[   ]", props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return rows
}

func footerRows(o *entity.Order) []core.Row {
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(
			fmt.Sprintf("Total de unidades: %d   |   Líneas: %d", units, len(o.Items)),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1},
		))),
	}
	if o.Notes != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+o.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
