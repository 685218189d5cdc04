package entity

import "time"

// NotificationType tipo de notificación.
type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationInvite       NotificationType = "invite"
	NotificationJoinRequest  NotificationType = "join_request"
	NotificationJoinApproved NotificationType = "join_approved"
	NotificationJoinRejected NotificationType = "join_rejected"
	NotificationAnnouncement NotificationType = "admin_announcement"
	NotificationAdminMessage NotificationType = "admin_msg"
)

// NotificationMetadata datos del flujo de invitación adjuntos a la notificación.
type NotificationMetadata struct {
	OrgID         string `json:"org_id,omitempty"`
	OrgName       string `json:"org_name,omitempty"`
	InviteCode    string `json:"invite_code,omitempty"`
	InvitationID  string `json:"invitation_id,omitempty"`
	RequesterID   string `json:"requester_id,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
}

// Notification mensaje dirigido a un usuario.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	Metadata  NotificationMetadata
	IsRead    bool
	CreatedAt time.Time
}
