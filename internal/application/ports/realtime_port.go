package ports

import (
	"context"
	"time"
)

// Tablas publicadas en el canal de cambios.
const (
	TableProfiles        = "profiles"
	TableNotifications   = "notifications"
	TableCompanyMessages = "company_messages"
	TableDocuments       = "documents"
	TableOrganizations   = "organizations"
)

// Acciones de cambio.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Change señal de que una fila cambió. Solo dispara una relectura del estado real:
// puede llegar duplicada, desordenada o más de una vez.
type Change struct {
	Table  string            `json:"table"`
	Action string            `json:"action"`
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields,omitempty"`
	At     time.Time         `json:"at"`
}

// Filter igualdad sobre un campo del cambio (p. ej. organization_id = X). Vacío acepta todo.
type Filter struct {
	Column string
	Value  string
}

// Matches informa si c satisface el filtro.
func (f Filter) Matches(c Change) bool {
	if f.Column == "" {
		return true
	}
	if f.Column == "id" {
		return c.ID == f.Value
	}
	return c.Fields[f.Column] == f.Value
}

// ChangeFeed canal de cambios. Subscribe devuelve la función para dejar de escuchar;
// la suscripción también termina al cancelarse ctx.
type ChangeFeed interface {
	Publish(ctx context.Context, c Change) error
	Subscribe(ctx context.Context, table string, filter Filter, onChange func(Change)) (func(), error)
}
