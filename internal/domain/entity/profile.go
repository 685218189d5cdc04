package entity

import "time"

// Profile perfil de usuario: rol, pertenencia a empresa y permisos.
type Profile struct {
	ID                  string
	Email               string
	FullName            string
	Role                Role
	OrganizationID      *string
	SubscriptionEndDate *time.Time // solo relevante para premium_individual
	Permissions         Permissions
	Organization        *Organization // relación ya normalizada; nil si no hay empresa o no se cargó
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrgID devuelve el ID de empresa actual o "" si no pertenece a ninguna. Seguro con p == nil.
func (p *Profile) OrgID() string {
	if p == nil || p.OrganizationID == nil {
		return ""
	}
	return *p.OrganizationID
}

// InOrganization informa si el perfil pertenece AHORA a orgID.
func (p *Profile) InOrganization(orgID string) bool {
	return orgID != "" && p.OrgID() == orgID
}

// RoleOrNormal devuelve el rol o RoleNormal si p == nil.
func (p *Profile) RoleOrNormal() Role {
	if p == nil {
		return RoleNormal
	}
	return ParseRole(string(p.Role))
}
