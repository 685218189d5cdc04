package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMemberLimit cupo de personal cuando la empresa no define uno válido.
const DefaultMemberLimit = 5

// Organization empresa/tenant: límite de personal, suscripción y créditos.
type Organization struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	MemberLimit         int             `json:"member_limit"`
	SubscriptionEndDate *time.Time      `json:"subscription_end_date"` // define premium de TODOS los miembros
	Credits             decimal.Decimal `json:"credits"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// EffectiveMemberLimit devuelve MemberLimit o DefaultMemberLimit si es < 1.
func (o *Organization) EffectiveMemberLimit() int {
	if o == nil || o.MemberLimit < 1 {
		return DefaultMemberLimit
	}
	return o.MemberLimit
}

// OrganizationRef relación perfil→empresa tal como la entrega el almacén externo:
// puede llegar como objeto, como arreglo de un elemento o como null.
// Se normaliza aquí para que la lógica de negocio solo vea *Organization.
type OrganizationRef struct {
	Org *Organization
}

// UnmarshalJSON acepta objeto, arreglo (se toma el primer elemento) o null.
func (r *OrganizationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	r.Org = nil
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		var o Organization
		if err := json.Unmarshal(data, &o); err != nil {
			return fmt.Errorf("organization: %w", err)
		}
		r.Org = &o
	case '[':
		var list []*Organization
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("organization list: %w", err)
		}
		if len(list) > 0 {
			r.Org = list[0]
		}
	default:
		return fmt.Errorf("organization: forma no soportada")
	}
	return nil
}

// MarshalJSON serializa siempre como objeto o null.
func (r OrganizationRef) MarshalJSON() ([]byte, error) {
	if r.Org == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.Org)
}
