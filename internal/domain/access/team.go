package access

import "github.com/jhoicas/evraklab-api/internal/domain/entity"

// CanManageTeam invitar y gestionar invitaciones: propietario, admin o jefe con can_invite.
func CanManageTeam(p *entity.Profile) bool {
	switch p.RoleOrNormal() {
	case entity.RolePremiumCorporate, entity.RoleAdmin:
		return true
	case entity.RoleCorporateChief:
		return p.Permissions.CanInvite
	case entity.RoleNormal, entity.RolePremiumIndividual, entity.RoleCorporateStaff:
		return false
	}
	return false
}

// IsOrganizationOwner cambios de rol y permisos del personal: solo el propietario.
func IsOrganizationOwner(p *entity.Profile) bool {
	return p.RoleOrNormal() == entity.RolePremiumCorporate && p.OrgID() != ""
}

// CanRemoveMember expulsar personal de orgID: propietario de esa empresa o admin.
func CanRemoveMember(p *entity.Profile, orgID string) bool {
	if p.RoleOrNormal() == entity.RoleAdmin {
		return true
	}
	return IsOrganizationOwner(p) && p.InOrganization(orgID)
}

// CanSeeForwardedDocument enlace a documento reenviado en el chat: lo abre quien lo envió,
// admin/propietario/jefe, o cualquiera si llegó por canal directo.
func CanSeeForwardedDocument(actorRole entity.Role, isOwnMessage, isDirectChannel bool) bool {
	if isOwnMessage || isDirectChannel {
		return true
	}
	switch entity.ParseRole(string(actorRole)) {
	case entity.RoleAdmin, entity.RolePremiumCorporate, entity.RoleCorporateChief:
		return true
	case entity.RoleNormal, entity.RolePremiumIndividual, entity.RoleCorporateStaff:
		return false
	}
	return false
}
