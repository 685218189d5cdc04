package dto

import "time"

// RegisterRequest alta en el emisor de identidad de desarrollo.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest email + password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT + perfil.
type LoginResponse struct {
	Token   string          `json:"token"`
	Profile ProfileResponse `json:"profile"`
}

// OrganizationResponse datos públicos de una empresa.
type OrganizationResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	MemberLimit         int        `json:"member_limit"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	Credits             string     `json:"credits"`
	CreatedAt           time.Time  `json:"created_at"`
}

// PermissionsResponse banderas de un jefe.
type PermissionsResponse struct {
	CanInvite         bool `json:"can_invite"`
	CanViewTeamDocs   bool `json:"can_view_team_docs"`
	CanEditTeamDocs   bool `json:"can_edit_team_docs"`
	CanDeleteTeamDocs bool `json:"can_delete_team_docs"`
}

// ProfileResponse perfil de un usuario.
type ProfileResponse struct {
	ID                  string                `json:"id"`
	Email               string                `json:"email"`
	FullName            string                `json:"full_name"`
	Role                string                `json:"role"`
	OrganizationID      *string               `json:"organization_id"`
	SubscriptionEndDate *time.Time            `json:"subscription_end_date"`
	Permissions         PermissionsResponse   `json:"permissions"`
	Organization        *OrganizationResponse `json:"organization,omitempty"`
}

// MeResponse perfil de la sesión y lo que puede hacer.
type MeResponse struct {
	Profile       ProfileResponse `json:"profile"`
	IsPremium     bool            `json:"is_premium"`
	CanManageTeam bool            `json:"can_manage_team"`
	IsOwner       bool            `json:"is_owner"`
	CanUploadCorp bool            `json:"can_upload_corporate"`
}
