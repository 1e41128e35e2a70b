package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
)

// DispatchNoteLine línea de la guía de traslado.
type DispatchNoteLine struct {
	SKU               string
	Name              string
	Unit              string
	QuantityRequested string
	QuantityReceived  string
}

// DispatchNote datos de la guía de traslado (documento que acompaña la mercancía).
type DispatchNote struct {
	Transfer     *entity.Transfer
	FromLocation *entity.Location
	ToLocation   *entity.Location
	Lines        []DispatchNoteLine
}

// DispatchNote genera el PDF de la guía y devuelve el nombre de archivo sugerido.
func (s *Service) DispatchNote(ctx context.Context, actor Actor, transferID string) ([]byte, string, error) {
	t, err := s.Get(ctx, actor, transferID)
	if err != nil {
		return nil, "", err
	}
	if t.Status == entity.TransferCancelled {
		return nil, "", fmt.Errorf("%w: el traslado %s está anulado", domain.ErrImmutableState, t.TransferNumber)
	}
	from, err := s.locations.GetByID(ctx, t.FromLocationID)
	if err != nil {
		return nil, "", err
	}
	to, err := s.locations.GetByID(ctx, t.ToLocationID)
	if err != nil {
		return nil, "", err
	}
	if from == nil || to == nil {
		return nil, "", fmt.Errorf("%w: ubicación del traslado %s", domain.ErrNotFound, t.TransferNumber)
	}

	note := DispatchNote{Transfer: t, FromLocation: from, ToLocation: to}
	for _, it := range t.Items {
		line := DispatchNoteLine{
			SKU:               it.VariationID,
			QuantityRequested: it.QuantityRequested.String(),
		}
		v, err := s.variations.GetByID(ctx, it.VariationID)
		if err != nil {
			return nil, "", err
		}
		if v != nil {
			line.SKU, line.Name, line.Unit = v.SKU, v.Name, v.Unit
		}
		if it.QuantityReceived != nil {
			line.QuantityReceived = it.QuantityReceived.String()
		}
		note.Lines = append(note.Lines, line)
	}

	pdf, err := s.renderer.Render(note)
	if err != nil {
		return nil, "", fmt.Errorf("render dispatch note: %w", err)
	}
	filename := "guia-" + strings.NewReplacer("/", "-", " ", "_").Replace(t.TransferNumber) + ".pdf"
	return pdf, filename, nil
}
