package dto

import "time"

// ProvisionCorporatePlanRequest alta de empresa y su dueño.
type ProvisionCorporatePlanRequest struct {
	OwnerID             string     `json:"owner_id"`
	Name                string     `json:"name"`
	MemberLimit         int        `json:"member_limit"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	Credits             string     `json:"credits"`
}

// UpdateOrganizationRequest campos opcionales.
type UpdateOrganizationRequest struct {
	Name                *string    `json:"name"`
	MemberLimit         *int       `json:"member_limit"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	Credits             *string    `json:"credits"`
}

// OrganizationListResponse listado de empresas.
type OrganizationListResponse struct {
	Items []OrganizationResponse `json:"items"`
}

// ProfileListResponse listado paginado de perfiles.
type ProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AnnouncementRequest aviso del administrador. UserID vacío = a todos.
type AnnouncementRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AnnouncementResponse cuántas notificaciones se crearon.
type AnnouncementResponse struct {
	Sent int `json:"sent"`
}
