package dto

import "time"

// InvitationResponse invitación pendiente.
type InvitationResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Email     *string   `json:"email"`
	Status    string    `json:"status"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageResponse ocupación de personal.
type UsageResponse struct {
	Members           int `json:"members"`
	UnusedInvitations int `json:"unused_invitations"`
	Used              int `json:"used"`
	Limit             int `json:"limit"`
}

// TeamOverviewResponse panel de empresa.
type TeamOverviewResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Members      []ProfileResponse    `json:"members"`
	Invitations  []InvitationResponse `json:"invitations"`
	Usage        UsageResponse        `json:"usage"`
	Documents    int                  `json:"documents"`
}

// EmailInviteRequest invitación por email.
type EmailInviteRequest struct {
	Email string `json:"email"`
}

// JoinRequest canje de código.
type JoinRequest struct {
	Code string `json:"code"`
}

// SetPermissionRequest un permiso de jefe.
type SetPermissionRequest struct {
	Permission string `json:"permission"`
	Value      bool   `json:"value"`
}

// RoleResponse rol resultante tras alternar.
type RoleResponse struct {
	Role string `json:"role"`
}
