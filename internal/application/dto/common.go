package dto

// Topes de paginación de los listados (traslados, ubicaciones, asientos).
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest limit/offset leídos de la query.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica el límite por defecto, recorta al máximo y descarta offsets negativos.
func (p PageRequest) Normalize() PageRequest {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PageResponse página devuelta junto a un listado.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: código estable para el cliente y detalle legible.
type ErrorResponse struct {
	Code    string `json:"code" example:"INSUFFICIENT_STOCK"`
	Message string `json:"message"`
}
