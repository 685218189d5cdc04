package dto

import (
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// OrganizationFromEntity nil → nil.
func OrganizationFromEntity(o *entity.Organization) *OrganizationResponse {
	if o == nil {
		return nil
	}
	return &OrganizationResponse{
		ID:                  o.ID,
		Name:                o.Name,
		MemberLimit:         o.EffectiveMemberLimit(),
		SubscriptionEndDate: o.SubscriptionEndDate,
		Credits:             o.Credits.String(),
		CreatedAt:           o.CreatedAt,
	}
}

func ProfileFromEntity(p *entity.Profile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID,
		Email:               p.Email,
		FullName:            p.FullName,
		Role:                string(p.RoleOrNormal()),
		OrganizationID:      p.OrganizationID,
		SubscriptionEndDate: p.SubscriptionEndDate,
		Permissions: PermissionsResponse{
			CanInvite:         p.Permissions.CanInvite,
			CanViewTeamDocs:   p.Permissions.CanViewTeamDocs,
			CanEditTeamDocs:   p.Permissions.CanEditTeamDocs,
			CanDeleteTeamDocs: p.Permissions.CanDeleteTeamDocs,
		},
		Organization: OrganizationFromEntity(p.Organization),
	}
}

func ProfilesFromEntities(list []*entity.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ProfileFromEntity(p))
	}
	return out
}

func InvitationFromEntity(i *entity.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        i.ID,
		Code:      i.Code,
		Email:     i.Email,
		Status:    string(i.Status),
		IsUsed:    i.IsUsed(),
		CreatedAt: i.CreatedAt,
	}
}

func NotificationFromEntity(n *entity.Notification) NotificationResponse {
	meta := map[string]string{}
	put := func(k, v string) {
		if v != "" {
			meta[k] = v
		}
	}
	put("org_id", n.Metadata.OrgID)
	put("org_name", n.Metadata.OrgName)
	put("invite_code", n.Metadata.InviteCode)
	put("invitation_id", n.Metadata.InvitationID)
	put("requester_id", n.Metadata.RequesterID)
	put("requester_name", n.Metadata.RequesterName)
	if len(meta) == 0 {
		meta = nil
	}
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Metadata:  meta,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func DefinitionFromEntity(d *entity.Definition) DefinitionResponse {
	return DefinitionResponse{ID: d.ID, Category: string(d.Category), Label: d.Label, CreatedAt: d.CreatedAt}
}
