package postgres

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.MessageRepository = (*MessageRepo)(nil)

const messageColumns = `id, organization_id, sender_id, receiver_id, message, document_id, document_title, created_at`

// MessageRepo chat de empresa sobre PostgreSQL.
type MessageRepo struct {
	db Querier
}

func NewMessageRepository(db Querier) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, m *entity.CompanyMessage) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO company_messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.OrganizationID, m.SenderID, m.ReceiverID, m.Message, m.DocumentID, m.DocumentTitle, m.CreatedAt,
	)
	return wrapErr("insert message", err)
}

// ListGeneral últimos limit mensajes del canal general, en orden cronológico.
func (r *MessageRepo) ListGeneral(ctx context.Context, orgID string, limit int) ([]*entity.CompanyMessage, error) {
	return r.list(ctx, "list general messages", `
		SELECT * FROM (
			SELECT `+messageColumns+` FROM company_messages
			WHERE organization_id = $1 AND receiver_id IS NULL
			ORDER BY created_at DESC LIMIT $2
		) m ORDER BY created_at`, orgID, limit)
}

func (r *MessageRepo) ListDirect(ctx context.Context, orgID, userA, userB string, limit int) ([]*entity.CompanyMessage, error) {
	return r.list(ctx, "list direct messages", `
		SELECT * FROM (
			SELECT `+messageColumns+` FROM company_messages
			WHERE organization_id = $1
			  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
			ORDER BY created_at DESC LIMIT $4
		) m ORDER BY created_at`, orgID, userA, userB, limit)
}

func (r *MessageRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.CompanyMessage, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.CompanyMessage
	for rows.Next() {
		var m entity.CompanyMessage
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.SenderID, &m.ReceiverID, &m.Message,
			&m.DocumentID, &m.DocumentTitle, &m.CreatedAt); err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, &m)
	}
	return list, wrapErr(op, rows.Err())
}
