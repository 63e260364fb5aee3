// Package pdf genera la hoja imprimible con el enlace de registro biométrico remoto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Registro biométrico  │  Vence: fecha y hora         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMPLEADO: nombre                                            │
//	│  QR del enlace  │  Instrucciones                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  URL completa partida en líneas                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
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

	"github.com/jhoicas/biometria-api/internal/application/ports"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// bogota es la zona en la que se imprime la fecha de vencimiento.
var bogota = time.FixedZone("COT", -5*3600)

var _ ports.LinkSheetGenerator = (*MarotoLinkSheetGenerator)(nil)

// MarotoLinkSheetGenerator implementa ports.LinkSheetGenerator usando Maroto v2.
type MarotoLinkSheetGenerator struct{}

// NewMarotoLinkSheetGenerator construye el generador.
func NewMarotoLinkSheetGenerator() *MarotoLinkSheetGenerator { return &MarotoLinkSheetGenerator{} }

// GenerateLinkSheet genera el PDF y devuelve sus bytes.
func (g *MarotoLinkSheetGenerator) GenerateLinkSheet(ctx context.Context, sheet ports.LinkSheet) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sheet.URL == "" {
		return nil, fmt.Errorf("pdf: enlace vacío")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Registro biométrico remoto", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet.ExpiresAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(employeeRow(sheet.EmployeeName))
	m.AddRows(qrRow(sheet.URL))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range urlRows(sheet.URL) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(expiresAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REGISTRO BIOMÉTRICO REMOTO", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(5).Add(
			text.New("Vence:", props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(expiresAt.In(bogota).Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
		),
	)
}

func employeeRow(name string) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("EMPLEADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
			}),
			text.New(nonEmpty(name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 12, Top: 8,
			}),
		),
	)
}

func qrRow(url string) core.Row {
	return row.New(70).Add(
		col.New(5).Add(code.NewQr(url, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(7).Add(
			text.New("Escanea el código QR con el celular o abre el enlace en un navegador con cámara.", props.Text{
				Size: 10, Top: 8, Left: 4,
			}),
			text.New("Ubícate en un lugar iluminado y centra tu rostro en el recuadro.", props.Text{
				Size: 10, Top: 24, Left: 4,
			}),
			text.New("El enlace es personal y sirve una sola vez.", props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 40, Left: 4, Color: colorPrimary,
			}),
		),
	)
}

// urlRows: la URL completa partida en fragmentos de 90 caracteres.
func urlRows(url string) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("Enlace:", props.Text{Style: fontstyle.Bold, Size: 8, Top: 2}),
		)),
	}
	for _, chunk := range splitEvery(url, 90) {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 8, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n bytes.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
