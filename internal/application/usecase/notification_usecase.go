package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// NotificationUseCase bandeja de notificaciones del propio usuario.
type NotificationUseCase struct {
	repo repository.NotificationRepository
	log  zerolog.Logger
}

// NewNotificationUseCase construye el caso de uso con el puerto de persistencia.
func NewNotificationUseCase(repo repository.NotificationRepository, log zerolog.Logger) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, log: log}
}

// List notificaciones del actor, más recientes primero, y cuántas siguen sin leer.
func (uc *NotificationUseCase) List(ctx context.Context, caps *access.Capabilities) ([]*entity.Notification, int, error) {
	list, err := uc.repo.ListByUser(ctx, caps.UserID())
	if err != nil {
		return nil, 0, err
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	return list, unread, nil
}

// MarkRead solo sobre notificaciones propias; las ajenas se reportan como inexistentes.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, caps *access.Capabilities, id string) error {
	ok, err := uc.repo.MarkRead(ctx, id, caps.UserID())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, caps *access.Capabilities) error {
	return uc.repo.MarkAllRead(ctx, caps.UserID())
}

func (uc *NotificationUseCase) Delete(ctx context.Context, caps *access.Capabilities, id string) error {
	ok, err := uc.repo.Delete(ctx, id, caps.UserID())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	uc.log.Debug().Str("user_id", caps.UserID()).Str("notification_id", id).Msg("notificación eliminada")
	return nil
}
