// Package pdf implementa la representación gráfica de las facturas del parqueo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor / Empresa     │  N° Factura + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + usuario que emite                         │
//	│  ESTADÍA: Lugar | Vehículo | Entrada | Salida | Estado       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA / TOTAL A PAGAR                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Pago (forma + estado) + QR + notas                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

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
	"github.com/shopspring/decimal"

	appbilling "github.com/jhoicas/parqueo-api/internal/application/billing"
	"github.com/jhoicas/parqueo-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const dateLayout = "02/01/2006 15:04"

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	loc *time.Location
}

// NewMarotoPDFGenerator construye el generador. Las fechas se imprimen en loc (UTC si es nil).
func NewMarotoPDFGenerator(loc *time.Location) *MarotoPDFGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoPDFGenerator{loc: loc}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, doc appbilling.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil {
		return nil, fmt.Errorf("pdf: factura vacía")
	}
	inv := doc.Invoice

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Factura %d", inv.ID), true).
		WithAuthor(nonEmpty(doc.Issuer, "parqueo-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(inv))
	if doc.Reservation != nil {
		m.AddRows(g.stayRows(doc.Reservation)...)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRows(inv)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(doc appbilling.InvoiceDocument) core.Row {
	inv := doc.Invoice
	company := nonEmpty(inv.CompanyName, nonEmpty(doc.Issuer, "Parqueo"))
	fecha := "—"
	if inv.EmittedAt != nil {
		fecha = inv.EmittedAt.In(g.loc).Format(dateLayout)
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Servicio de estacionamiento", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N° %06d", inv.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func clientRow(inv *entity.Invoice) core.Row {
	client := strings.TrimSpace(inv.ClientName + " " + inv.ClientLastName)
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(client, "Consumidor final"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("Emitida por: "+nonEmpty(inv.UserEmail, "—"), props.Text{
				Size: 8, Top: 12, Color: colorGray,
			}),
		),
	)
}

// stayRows: datos de la reservación facturada.
func (g *MarotoPDFGenerator) stayRows(r *entity.Reservation) []core.Row {
	cell := func(label, value string, size int) core.Col {
		return col.New(size).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 5}),
		)
	}
	return []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("ESTADÍA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
		row.New(11).Add(
			cell("Lugar", nonEmpty(r.SpotName, fmt.Sprintf("#%d", r.SpotID)), 2),
			cell("Vehículo", nonEmpty(r.VehicleType, "—"), 2),
			cell("Entrada", g.formatTime(r.EntryTime), 3),
			cell("Salida", g.formatTime(r.ExitTime), 3),
			cell("Estado", r.Status, 2),
		),
	}
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string, grand bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}
		if grand {
			p.Size, p.Color = 10, colorPrimary
		}
		return text.New(s, p)
	}
	value := func(d decimal.Decimal, grand bool, top float64) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return text.New("$"+formatMoney(d), p)
	}

	return row.New(22).Add(
		col.New(4),
		col.New(4).Add(
			label("Subtotal:", false),
			text.New("IVA:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			text.New("TOTAL A PAGAR:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: 13, Color: colorPrimary,
			}),
		),
		col.New(4).Add(
			value(inv.Subtotal, false, 0),
			value(inv.VATAmount, false, 6),
			value(inv.TotalAmount, true, 13),
		),
	)
}

// footerRows: forma y estado de pago, QR con los datos de verificación y notas.
func (g *MarotoPDFGenerator) footerRows(inv *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(40).Add(
			col.New(4).Add(code.NewQr(qrPayload(inv), props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("PAGO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 3}),
				text.New("Forma de pago: "+nonEmpty(inv.PaymentMethod, "—"), props.Text{Size: 9, Top: 8, Left: 3}),
				text.New("Estado: "+nonEmpty(inv.PaymentState, "—"), props.Text{Size: 9, Top: 14, Left: 3}),
			),
		),
	}
	if inv.Notes != nil && strings.TrimSpace(*inv.Notes) != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Notas: "+*inv.Notes, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

// qrPayload datos impresos en el QR para verificar la factura en caja.
func qrPayload(inv *entity.Invoice) string {
	parts := []string{
		fmt.Sprintf("FACTURA:%d", inv.ID),
		"SUBTOTAL:" + inv.Subtotal.StringFixed(2),
		"IVA:" + inv.VATAmount.StringFixed(2),
		"TOTAL:" + inv.TotalAmount.StringFixed(2),
	}
	if inv.ReservationID != nil {
		parts = append(parts, fmt.Sprintf("RESERVACION:%d", *inv.ReservationID))
	}
	return strings.Join(parts, "|")
}

func (g *MarotoPDFGenerator) formatTime(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.In(g.loc).Format(dateLayout)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney separa miles con punto y decimales con coma.
// Ej: 25000 → "25.000,00", 1234.5 → "1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	out := string(buf) + "," + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
