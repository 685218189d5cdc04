package access

import "github.com/jhoicas/evraklab-api/internal/domain/entity"

// noIdentity UUID nulo: ningún documento tiene ese cargador.
const noIdentity = "00000000-0000-0000-0000-000000000000"

// Predicate decide si un documento entra en un listado o detalle.
type Predicate func(d *entity.Document) bool

// Apply devuelve los documentos que cumplen el predicado (nil se descarta).
func (pred Predicate) Apply(docs []*entity.Document) []*entity.Document {
	out := make([]*entity.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil && pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// VisibilityPredicate regla de visibilidad de documentos para p.
func VisibilityPredicate(p *entity.Profile) Predicate {
	if p.RoleOrNormal() == entity.RoleAdmin {
		return func(d *entity.Document) bool { return d != nil }
	}
	return func(d *entity.Document) bool { return CanView(p, d) }
}

// CanView aplica la regla a un documento concreto:
//   - admin ve todo;
//   - el cargador siempre ve lo suyo;
//   - un documento personal no lo ve nadie más;
//   - uno corporativo lo ven el propietario y los jefes con can_view_team_docs,
//     solo si pertenecen AHORA a la empresa del documento.
func CanView(p *entity.Profile, d *entity.Document) bool {
	if p == nil || d == nil {
		return false
	}
	if p.RoleOrNormal() == entity.RoleAdmin {
		return true
	}
	if isUploader(p, d) {
		return true
	}
	if !d.IsCorporate() {
		return false
	}
	return p.InOrganization(d.OrgID()) && isOwnerOrAuthorizedViewer(p)
}

// DocumentFilter traduce la regla a una consulta remota.
// El OR remoto puede traer de más; el llamador debe pasar el resultado por VisibilityPredicate.
func DocumentFilter(p *entity.Profile) entity.DocumentFilter {
	if p.RoleOrNormal() == entity.RoleAdmin {
		return entity.DocumentFilter{All: true}
	}
	if p == nil || p.ID == "" {
		// Sin identidad no hay rama que pueda coincidir.
		return entity.DocumentFilter{UploaderID: noIdentity}
	}
	f := entity.DocumentFilter{UploaderID: p.ID}
	if isOwnerOrAuthorizedViewer(p) && p.OrgID() != "" {
		f.OrganizationID = p.OrgID()
	}
	return f
}

func isOwnerOrAuthorizedViewer(p *entity.Profile) bool {
	switch p.RoleOrNormal() {
	case entity.RolePremiumCorporate:
		return true
	case entity.RoleCorporateChief:
		return p.Permissions.CanViewTeamDocs
	case entity.RoleNormal, entity.RolePremiumIndividual, entity.RoleCorporateStaff, entity.RoleAdmin:
		return false
	}
	return false
}

func isUploader(p *entity.Profile, d *entity.Document) bool {
	return p.ID != "" && d.UploaderID == p.ID
}
