package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

const notificationColumns = `id, user_id, title, message, type, metadata, is_read, created_at`

// NotificationRepo implementación del puerto NotificationRepository sobre PostgreSQL.
type NotificationRepo struct {
	db Querier
}

func NewNotificationRepository(db Querier) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.Metadata, n.IsRead, n.CreatedAt,
	)
	return wrapErr("insert notification", err)
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	n, err := scanNotification(r.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get notification", err)
	}
	return n, nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, wrapErr("list notifications", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrapErr("scan notification", err)
		}
		list = append(list, n)
	}
	return list, wrapErr("list notifications", rows.Err())
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, wrapErr("mark notification read", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID)
	return wrapErr("mark all read", err)
}

func (r *NotificationRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, wrapErr("delete notification", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Broadcast una fila por perfil, en una sola sentencia.
func (r *NotificationRepo) Broadcast(ctx context.Context, n entity.Notification) (int, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, metadata, is_read, created_at)
		SELECT gen_random_uuid(), p.id, $1, $2, $3, $4, false, $5
		FROM profiles p`,
		n.Title, n.Message, string(n.Type), n.Metadata, n.CreatedAt,
	)
	if err != nil {
		return 0, wrapErr("broadcast notification", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var (
		n   entity.Notification
		typ string
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.Metadata, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = entity.NotificationType(typ)
	return &n, nil
}
