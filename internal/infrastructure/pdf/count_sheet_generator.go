// Package pdf implementa la generación de la hoja de conteo imprimible que
// el operario lleva al pasillo durante un conteo cíclico.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Sesión + Bodega  │  Fecha programada            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Ubicación | SKU | Producto | Lote | Esperado |  │
//	│         Contado (en blanco) | Firma                         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: contado por / fecha / firma supervisor             │
//	└─────────────────────────────────────────────────────────────┘
//
// En conteo ciego la columna Esperado va vacía.
package pdf

import (
	"context"
	"fmt"

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

	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ cyclecount.CountSheetGenerator = (*CountSheetGenerator)(nil)

// CountSheetGenerator implementa cyclecount.CountSheetGenerator usando Maroto v2.
type CountSheetGenerator struct{}

// NewCountSheetGenerator construye el generador.
func NewCountSheetGenerator() *CountSheetGenerator { return &CountSheetGenerator{} }

// GenerateCountSheet genera el PDF de la hoja de conteo y devuelve sus bytes.
func (g *CountSheetGenerator) GenerateCountSheet(
	_ context.Context,
	session *entity.CycleCountSession,
	lines []cyclecount.CountSheetLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Hoja de Conteo "+session.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(session))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar hoja de conteo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: número de sesión + bodega (izq) y fecha programada (der).
func headerRow(session *entity.CycleCountSession) core.Row {
	fecha := "—"
	if session.ScheduledFor != nil {
		fecha = session.ScheduledFor.Format("02/01/2006")
	}
	modo := "CONTEO ESTÁNDAR"
	if session.BlindCount {
		modo = "CONTEO CIEGO"
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("HOJA DE CONTEO CÍCLICO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(session.Number+"   |   Bodega: "+session.WarehouseID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(modo, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Programado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de conteo.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Ubicación", 2, align.Left),
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Lote", 1, align.Center),
		h("Esperado", 1, align.Right),
		h("Contado", 2, align.Center),
	)
}

// tableLineRows: una fila por ítem; la columna Contado queda en blanco para
// escribir a mano.
func tableLineRows(lines []cyclecount.CountSheetLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(8).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.LineNumber),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				l.LocationCode,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				l.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				l.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				nonEmpty(l.BatchNumber, "—"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				nonEmpty(l.Expected, ""),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"__________",
				props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorGray},
			)),
		))
	}
	return result
}

// signatureRow: bloque de firmas al pie.
func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(4).Add(
			text.New("______________________", props.Text{
				Size: 9, Align: align.Center, Top: 6, Color: colorGray,
			}),
			text.New(label, props.Text{
				Size: 8, Align: align.Center, Top: 12, Color: colorGray,
			}),
		)
	}
	return row.New(18).Add(
		sig("Contado por"),
		sig("Fecha"),
		sig("Supervisor"),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
