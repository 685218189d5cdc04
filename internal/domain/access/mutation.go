package access

import "github.com/jhoicas/evraklab-api/internal/domain/entity"

// Operation tipo de mutación sobre un documento.
type Operation string

const (
	OpEdit   Operation = "edit"
	OpRenew  Operation = "renew"
	OpDelete Operation = "delete"
)

// CanMutateDocument decide edición, renovación o borrado.
// Un jefe necesita can_edit_team_docs para editar/renovar y además can_delete_team_docs para borrar.
func CanMutateDocument(p *entity.Profile, d *entity.Document, op Operation) bool {
	if p == nil || d == nil {
		return false
	}
	role := p.RoleOrNormal()
	if role == entity.RoleAdmin {
		return true
	}
	if isUploader(p, d) {
		return true
	}
	if !d.IsCorporate() || !p.InOrganization(d.OrgID()) {
		return false
	}
	switch role {
	case entity.RolePremiumCorporate:
		return true
	case entity.RoleCorporateChief:
		if !p.Permissions.CanEditTeamDocs {
			return false
		}
		switch op {
		case OpEdit, OpRenew:
			return true
		case OpDelete:
			return p.Permissions.CanDeleteTeamDocs
		}
		return false
	case entity.RoleNormal, entity.RolePremiumIndividual, entity.RoleCorporateStaff, entity.RoleAdmin:
		return false
	}
	return false
}

// CanUploadCorporate solo premium (o admin) con empresa puede subir al ámbito corporativo.
func CanUploadCorporate(p *entity.Profile, premium bool) bool {
	if p.OrgID() == "" {
		return false
	}
	return premium || p.RoleOrNormal() == entity.RoleAdmin
}
