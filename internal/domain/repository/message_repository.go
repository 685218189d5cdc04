package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// MessageRepository define el puerto de persistencia para CompanyMessage (DIP).
type MessageRepository interface {
	Create(ctx context.Context, m *entity.CompanyMessage) error
	// ListGeneral mensajes del canal general de la empresa.
	ListGeneral(ctx context.Context, orgID string, limit int) ([]*entity.CompanyMessage, error)
	// ListDirect conversación entre dos usuarios dentro de la empresa.
	ListDirect(ctx context.Context, orgID, userA, userB string, limit int) ([]*entity.CompanyMessage, error)
}
