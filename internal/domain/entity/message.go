package entity

import "time"

// CompanyMessage mensaje del chat de empresa. ReceiverID nil = canal general.
type CompanyMessage struct {
	ID             string
	OrganizationID string
	SenderID       string
	ReceiverID     *string
	Message        string
	DocumentID     *string
	DocumentTitle  string
	CreatedAt      time.Time
}

// IsDirect informa si el mensaje va a una persona concreta.
func (m *CompanyMessage) IsDirect() bool {
	return m.ReceiverID != nil
}
