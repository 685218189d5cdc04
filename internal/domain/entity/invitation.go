package entity

import "time"

// InvitationStatus estado explícito de una invitación.
type InvitationStatus string

const (
	InvitationUnused    InvitationStatus = "unused"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation código de un solo uso para unirse a una empresa.
// Mientras está Unused ocupa cupo de personal.
type Invitation struct {
	ID             string
	OrganizationID string
	Code           string
	Email          *string // nil para códigos generados manualmente
	Status         InvitationStatus
	UsedBy         *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsUsed equivale a la columna is_used: cualquier estado terminal.
func (i *Invitation) IsUsed() bool {
	return i.Status != InvitationUnused
}
