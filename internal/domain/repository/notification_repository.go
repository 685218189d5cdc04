package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification (DIP).
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) error
	// Delete borra solo si pertenece a userID. false si no existía.
	Delete(ctx context.Context, id, userID string) (bool, error)
	// Broadcast crea una copia de n para cada perfil existente. Devuelve cuántas.
	Broadcast(ctx context.Context, n entity.Notification) (int, error)
}
