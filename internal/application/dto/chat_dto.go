package dto

import "time"

// ForwardRequest reenvío de un documento al chat. Sin receiver_id va al canal general.
type ForwardRequest struct {
	DocumentID string  `json:"document_id"`
	ReceiverID *string `json:"receiver_id"`
	Message    string  `json:"message"`
}

// MessageItem mensaje del chat. DocumentID vacío si el enlace está oculto para el lector.
type MessageItem struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     *string   `json:"receiver_id"`
	Message        string    `json:"message"`
	DocumentID     *string   `json:"document_id"`
	DocumentTitle  string    `json:"document_title,omitempty"`
	DocumentHidden bool      `json:"document_hidden,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageListResponse conversación.
type MessageListResponse struct {
	Items []MessageItem `json:"items"`
}
