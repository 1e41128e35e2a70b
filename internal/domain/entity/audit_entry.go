package entity

import (
	"encoding/json"
	"time"
)

// AuditEntry registro inmutable de una transición (una por transición).
type AuditEntry struct {
	ID         string
	BusinessID string
	EntityType string
	EntityID   string
	Action     string
	ActorID    string
	Timestamp  time.Time
	Before     json.RawMessage // resumen del estado previo
	After      json.RawMessage // resumen del estado posterior
	Metadata   json.RawMessage // libre: asientos generados, motivo, ítem verificado...
}
