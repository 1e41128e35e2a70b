// Package pdf genera la guía de traslado: el documento impreso que acompaña la mercancía
// desde la ubicación de origen hasta la de destino.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRASLADO      │  N° Traslado + Fecha + Estado│
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: Nombre + Dirección  │  DESTINO: Nombre + Dirección   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | SKU | Descripción | Unidad | Solicitada | Recibida │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTAS + QR con el número del traslado                       │
//	│  FIRMAS: Despacha / Transporta / Recibe                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
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

	"github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

var _ transfer.DispatchNoteRenderer = (*DispatchNoteRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var statusLabels = map[entity.TransferStatus]string{
	entity.TransferDraft:        "Borrador",
	entity.TransferPendingCheck: "Pendiente de revisión",
	entity.TransferChecked:      "Revisado",
	entity.TransferInTransit:    "En tránsito",
	entity.TransferArrived:      "Recibido en destino",
	entity.TransferVerifying:    "En verificación",
	entity.TransferCompleted:    "Completado",
	entity.TransferCancelled:    "Anulado",
}

// ── Renderer ──────────────────────────────────────────────────────────────────

// DispatchNoteRenderer implementa transfer.DispatchNoteRenderer usando Maroto v2.
type DispatchNoteRenderer struct {
	author string
}

// NewDispatchNoteRenderer construye el renderer. author aparece en los metadatos del PDF.
func NewDispatchNoteRenderer(author string) *DispatchNoteRenderer {
	return &DispatchNoteRenderer{author: author}
}

// Render genera el PDF y devuelve sus bytes.
func (r *DispatchNoteRenderer) Render(note transfer.DispatchNote) ([]byte, error) {
	if note.Transfer == nil || note.FromLocation == nil || note.ToLocation == nil {
		return nil, fmt.Errorf("pdf: guía incompleta")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de traslado "+note.Transfer.TransferNumber, true).
		WithAuthor(nonEmpty(r.author, "traslados-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(note.Transfer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(locationsRow(note.FromLocation, note.ToLocation))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(note.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(notesRow(note.Transfer))
	m.AddRows(row.New(10))
	m.AddRows(signaturesRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(t *entity.Transfer) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("GUÍA DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Mercancía en tránsito entre ubicaciones del mismo negocio", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+t.TransferDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+nonEmpty(statusLabels[t.Status], string(t.Status)), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func locationsRow(from, to *entity.Location) core.Row {
	block := func(title string, loc *entity.Location) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(loc.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Dirección: "+nonEmpty(loc.Address, "—"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(block("ORIGEN", from), block("DESTINO", to))
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
		h("Descripción", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Solicitada", 2, align.Right),
		h("Recibida", 2, align.Right),
	)
}

func tableDetailRows(lines []transfer.DispatchNoteLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(nonEmpty(l.Name, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(l.Unit, "und"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.QuantityRequested, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			// La columna recibida queda en blanco para diligenciarla a mano en destino.
			col.New(2).Add(text.New(nonEmpty(l.QuantityReceived, "________"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return result
}

func notesRow(t *entity.Transfer) core.Row {
	return row.New(40).Add(
		col.New(8).Add(
			text.New("OBSERVACIONES", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
			text.New(nonEmpty(t.Notes, "Sin observaciones."), props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(code.NewQr(t.TransferNumber, props.Rect{Percent: 80, Center: true})),
	)
}

func signaturesRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(4).Add(
			text.New("______________________________", props.Text{Size: 8, Align: align.Center, Top: 8}),
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 13}),
		)
	}
	return row.New(20).Add(sign("Despacha"), sign("Transporta"), sign("Recibe"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
