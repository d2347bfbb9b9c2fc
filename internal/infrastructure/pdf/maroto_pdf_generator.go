// Package pdf implementa la representación PDF del reporte de cumplimiento.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + período    │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total | Bloqueadas | Críticas | Negocios          │
//	│  POR CLASIFICACIÓN                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Negocio | Producto | Clasificación | Sev.   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECOMENDACIONES                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"

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

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 170, Green: 20, Blue: 20}
)

// maxTableRows evita documentos de cientos de páginas; el detalle completo va en el XML.
const maxTableRows = 500

var _ compliance.ReportPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa compliance.ReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

// GenerateReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReportPDF(_ context.Context, r *compliance.Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de cumplimiento regulatorio", true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(r))
	m.AddRows(classificationRows(r)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(r.Violations)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(recommendationRows(r.Recommendations)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + período (izq) y fecha de generación (der).
func headerRow(r *compliance.Report) core.Row {
	period := fmt.Sprintf("Período: %s a %s", r.Start.Format("02/01/2006 15:04"), r.End.Format("02/01/2006 15:04"))
	return row.New(18).Add(
		col.New(8).Add(
			text.New("REPORTE DE CUMPLIMIENTO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(period, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

// summaryRow: cuatro indicadores del período.
func summaryRow(r *compliance.Report) core.Row {
	box := func(label string, value int, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(fmt.Sprintf("%d", value), props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Center, Color: c, Top: 6}),
		)
	}
	critColor := colorPrimary
	if r.CriticalViolations > 0 {
		critColor = colorCritical
	}
	return row.New(16).Add(
		box("Violaciones", r.TotalViolations, colorPrimary),
		box("Bloqueadas", r.BlockedViolations, colorPrimary),
		box("Críticas", r.CriticalViolations, critColor),
		box("Negocios", len(r.OffendingBusinessIDs), colorPrimary),
	)
}

// classificationRows: conteo por clasificación, en orden alfabético.
func classificationRows(r *compliance.Report) []core.Row {
	if len(r.ByClassification) == 0 {
		return nil
	}
	classes := make([]string, 0, len(r.ByClassification))
	for c := range r.ByClassification {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)

	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("POR CLASIFICACIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, c := range classes {
		rows = append(rows, row.New(5).Add(
			col.New(9).Add(text.New(c, props.Text{Size: 8, Left: 2})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", r.ByClassification[entity.ViolationClass(c)]), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// tableHeaderRow: cabecera de la tabla de violaciones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Negocio", 2, align.Left),
		h("Producto", 2, align.Left),
		h("Clasificación", 4, align.Left),
		h("Severidad", 2, align.Center),
	)
}

// tableDetailRows: una fila por violación.
func tableDetailRows(violations []*entity.ComplianceViolation) []core.Row {
	if len(violations) == 0 {
		return []core.Row{row.New(7).Add(col.New(12).Add(
			text.New("Sin violaciones en el período.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
		))}
	}
	n := min(len(violations), maxTableRows)
	result := make([]core.Row, 0, n+1)
	for _, v := range violations[:n] {
		sevProps := props.Text{Size: 8, Align: align.Center, Top: 1}
		if v.Severity == entity.SeverityCritical {
			sevProps.Style = fontstyle.Bold
			sevProps.Color = colorCritical
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(v.Timestamp.Format("02/01 15:04:05"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(v.BusinessID, "—"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(v.ProductID, "—"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(4).Add(text.New(string(v.Classification), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(string(v.Severity), sevProps)),
		))
	}
	if rest := len(violations) - n; rest > 0 {
		result = append(result, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("… y %d violaciones más (ver exportación XML).", rest), props.Text{Size: 7.5, Color: colorGray, Top: 1, Left: 1}),
		)))
	}
	return result
}

// recommendationRows: lista de recomendaciones.
func recommendationRows(recs []string) []core.Row {
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("RECOMENDACIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, rec := range recs {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("• "+rec, props.Text{Size: 8, Top: 1, Left: 2}),
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
