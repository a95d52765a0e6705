// Package pdf genera el ticket impreso de la nota de venta (rollo de 80 mm).
//
//	┌──────────────────────────────┐
//	│  NOMBRE DEL LOCAL            │
//	│  NOTA DE VENTA NV01-00000012 │
//	│  Fecha / Mesa / Tiempo       │
//	│  ──────────────────────────  │
//	│  Cant | Descripción | Total  │
//	│  ──────────────────────────  │
//	│  Subtotal / Desc. / TOTAL    │
//	│  Medio de pago               │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"encoding/json"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain/entity"
)

const (
	ticketWidth     = 80.0
	ticketMinHeight = 120.0
	lineHeight      = 5.0
)

var colorGray = &props.Color{Red: 90, Green: 90, Blue: 90}

var paymentLabels = map[entity.PaymentMethod]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentCard:     "Tarjeta",
	entity.PaymentTransfer: "Transferencia",
	entity.PaymentOther:    "Otro",
}

var _ ports.SaleNotePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa ports.SaleNotePDFGenerator con Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador; tag define el formato numérico (p. ej. "es-PE").
func NewMarotoPDFGenerator(tag string) *MarotoPDFGenerator {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Spanish
	}
	return &MarotoPDFGenerator{printer: message.NewPrinter(lang)}
}

// ticketMeta campos de Meta que se imprimen.
type ticketMeta struct {
	TableNumber int    `json:"table_number"`
	Duration    string `json:"duration"`
	Discount    string `json:"discount"`
	Surcharge   string `json:"surcharge"`
}

// GenerateSaleNotePDF devuelve los bytes del ticket.
func (g *MarotoPDFGenerator) GenerateSaleNotePDF(_ context.Context, doc *entity.Document, businessName string) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	var meta ticketMeta
	if len(doc.Meta) > 0 {
		if err := json.Unmarshal(doc.Meta, &meta); err != nil {
			return nil, fmt.Errorf("pdf: meta del documento: %w", err)
		}
	}

	height := ticketMinHeight + float64(len(doc.Details))*lineHeight*2
	cfg := config.NewBuilder().
		WithDimensions(ticketWidth, height).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Nota de venta "+doc.FullNumber(), true).
		WithAuthor(businessName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRows(doc, businessName, meta)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(detailHeaderRow())
	m.AddRows(g.detailRows(doc.Details)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.2}))
	m.AddRows(g.totalRows(doc, meta)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

func headerRows(doc *entity.Document, businessName string, meta ticketMeta) []core.Row {
	centered := func(s string, size float64, style fontstyle.Type) core.Row {
		return row.New(lineHeight+1).Add(col.New(12).Add(
			text.New(s, props.Text{Size: size, Style: style, Align: align.Center}),
		))
	}
	rows := []core.Row{
		centered(businessName, 11, fontstyle.Bold),
		centered("NOTA DE VENTA "+doc.FullNumber(), 9, fontstyle.Bold),
		centered("Fecha: "+doc.IssueDate.Format("02/01/2006 15:04"), 8, fontstyle.Normal),
	}
	if meta.TableNumber > 0 {
		info := fmt.Sprintf("Mesa %d", meta.TableNumber)
		if meta.Duration != "" {
			info += "  |  Tiempo " + meta.Duration
		}
		rows = append(rows, centered(info, 8, fontstyle.Normal))
	}
	return rows
}

func detailHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: a}))
	}
	return row.New(lineHeight).Add(
		h("Cant.", 2, align.Left),
		h("Descripción", 6, align.Left),
		h("Importe", 4, align.Right),
	)
}

func (g *MarotoPDFGenerator) detailRows(details []entity.DocumentDetail) []core.Row {
	out := make([]core.Row, 0, len(details)*2)
	for _, d := range details {
		out = append(out,
			row.New(lineHeight).Add(
				col.New(2).Add(text.New(d.Quantity.String(), props.Text{Size: 7})),
				col.New(6).Add(text.New(d.Description, props.Text{Size: 7})),
				col.New(4).Add(text.New(g.money(d.LineTotal), props.Text{Size: 7, Align: align.Right})),
			),
			row.New(lineHeight-1).Add(
				col.New(2),
				col.New(10).Add(text.New("P.U. "+g.money(d.UnitPrice), props.Text{Size: 6, Color: colorGray})),
			),
		)
	}
	return out
}

func (g *MarotoPDFGenerator) totalRows(doc *entity.Document, meta ticketMeta) []core.Row {
	pair := func(label, value string, bold bool) core.Row {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		return row.New(lineHeight).Add(
			col.New(7).Add(text.New(label, props.Text{Size: 8, Style: style, Align: align.Right})),
			col.New(5).Add(text.New(value, props.Text{Size: 8, Style: style, Align: align.Right})),
		)
	}
	rows := []core.Row{pair("Subtotal:", g.money(doc.Subtotal), false)}
	if d, err := decimal.NewFromString(meta.Discount); err == nil && d.IsPositive() {
		rows = append(rows, pair("Descuento:", "-"+g.money(d), false))
	}
	if s, err := decimal.NewFromString(meta.Surcharge); err == nil && s.IsPositive() {
		rows = append(rows, pair("Recargo:", g.money(s), false))
	}
	rows = append(rows,
		pair("TOTAL "+doc.Currency+":", g.money(doc.Total), true),
		pair("Pago:", nonEmpty(paymentLabels[doc.PaymentMethod], string(doc.PaymentMethod)), false),
		row.New(lineHeight+2).Add(col.New(12).Add(
			text.New("Gracias por su visita", props.Text{Size: 7, Align: align.Center, Top: 2, Color: colorGray}),
		)),
	)
	return rows
}

// money formatea con separadores del idioma configurado y dos decimales.
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprint(number.Decimal(f, number.Scale(2)))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
