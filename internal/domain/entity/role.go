package entity

// Role rol de un perfil. Conjunto cerrado: ParseRole degrada cualquier valor desconocido a RoleNormal.
type Role string

const (
	RoleNormal            Role = "normal"
	RolePremiumIndividual Role = "premium_individual"
	RolePremiumCorporate  Role = "premium_corporate" // propietario de la empresa
	RoleCorporateChief    Role = "corporate_chief"
	RoleCorporateStaff    Role = "corporate_staff"
	RoleAdmin             Role = "admin" // administrador del sistema
)

// ParseRole convierte el texto almacenado en un Role. Valores desconocidos → RoleNormal (mínimo privilegio).
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RoleNormal, RolePremiumIndividual, RolePremiumCorporate, RoleCorporateChief, RoleCorporateStaff, RoleAdmin:
		return r
	default:
		return RoleNormal
	}
}

// IsCorporate informa si el rol pertenece a la jerarquía de una empresa.
func (r Role) IsCorporate() bool {
	switch r {
	case RolePremiumCorporate, RoleCorporateChief, RoleCorporateStaff:
		return true
	case RoleNormal, RolePremiumIndividual, RoleAdmin:
		return false
	default:
		return false
	}
}

// Permission nombre de un permiso de jefe de departamento.
type Permission string

const (
	PermInvite         Permission = "can_invite"
	PermViewTeamDocs   Permission = "can_view_team_docs"
	PermEditTeamDocs   Permission = "can_edit_team_docs"
	PermDeleteTeamDocs Permission = "can_delete_team_docs"
)

// Permissions banderas de un corporate_chief. Solo tienen efecto con ese rol.
// Un permiso ausente en la fila almacenada se lee como false.
type Permissions struct {
	CanInvite         bool `json:"can_invite"`
	CanViewTeamDocs   bool `json:"can_view_team_docs"`
	CanEditTeamDocs   bool `json:"can_edit_team_docs"`
	CanDeleteTeamDocs bool `json:"can_delete_team_docs"`
}

// Has devuelve el valor del permiso; nombres desconocidos → false.
func (p Permissions) Has(name Permission) bool {
	switch name {
	case PermInvite:
		return p.CanInvite
	case PermViewTeamDocs:
		return p.CanViewTeamDocs
	case PermEditTeamDocs:
		return p.CanEditTeamDocs
	case PermDeleteTeamDocs:
		return p.CanDeleteTeamDocs
	}
	return false
}

// With devuelve una copia con el permiso fijado. ok=false si el nombre no existe.
func (p Permissions) With(name Permission, value bool) (Permissions, bool) {
	switch name {
	case PermInvite:
		p.CanInvite = value
	case PermViewTeamDocs:
		p.CanViewTeamDocs = value
	case PermEditTeamDocs:
		p.CanEditTeamDocs = value
	case PermDeleteTeamDocs:
		p.CanDeleteTeamDocs = value
	default:
		return p, false
	}
	return p, true
}
