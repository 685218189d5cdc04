package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

const invitationColumns = `id, organization_id, code, email, status, used_by, created_at, updated_at`

// InvitationRepo implementación del puerto InvitationRepository sobre PostgreSQL.
type InvitationRepo struct {
	db Querier
}

func NewInvitationRepository(db Querier) *InvitationRepo {
	return &InvitationRepo{db: db}
}

// CreateWithinQuota bloquea la fila de la empresa y después cuenta e inserta en una sentencia nueva,
// así dos altas simultáneas no superan el límite. Un código repetido no aborta la transacción
// (ON CONFLICT DO NOTHING); se distingue después del cupo agotado.
func (r *InvitationRepo) CreateWithinQuota(ctx context.Context, inv *entity.Invitation, limit int) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, wrapErr("begin invitation insert", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `SELECT id FROM organizations WHERE id = $1 FOR UPDATE`, inv.OrganizationID)
	if err != nil {
		return false, wrapErr("lock organization", err)
	}
	if tag.RowsAffected() == 0 {
		return false, domain.ErrNotFound
	}

	query := `
		INSERT INTO invitations (id, organization_id, code, email, status, used_by, created_at, updated_at)
		SELECT $1, $2, $3, $4, $5, NULL, $6, $6
		WHERE (
			(SELECT count(*) FROM profiles WHERE organization_id = $2 AND role <> 'premium_corporate')
		  + (SELECT count(*) FROM invitations WHERE organization_id = $2 AND status = 'unused')
		) < $7
		ON CONFLICT (code) DO NOTHING
		RETURNING id`
	var id string
	err = tx.QueryRow(ctx, query,
		inv.ID, inv.OrganizationID, inv.Code, inv.Email, string(inv.Status), inv.CreatedAt, limit,
	).Scan(&id)
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return false, wrapErr("commit invitation insert", err)
		}
		return true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return false, wrapErr("insert invitation", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE code = $1)`, inv.Code).Scan(&exists); err != nil {
		return false, wrapErr("check invitation code", err)
	}
	if exists {
		return false, domain.ErrDuplicate
	}
	return false, nil
}

func (r *InvitationRepo) GetByID(ctx context.Context, id string) (*entity.Invitation, error) {
	return r.one(ctx, "get invitation", `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
}

func (r *InvitationRepo) GetUnusedByCode(ctx context.Context, code string) (*entity.Invitation, error) {
	return r.one(ctx, "get invitation by code",
		`SELECT `+invitationColumns+` FROM invitations WHERE code = $1 AND status = 'unused'`, code)
}

func (r *InvitationRepo) FindPendingByEmail(ctx context.Context, orgID, email string) (*entity.Invitation, error) {
	return r.one(ctx, "find pending invitation",
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE organization_id = $1 AND lower(email) = lower($2) AND status = 'unused' LIMIT 1`, orgID, email)
}

func (r *InvitationRepo) ListUnused(ctx context.Context, orgID string) ([]*entity.Invitation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE organization_id = $1 AND status = 'unused' ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, wrapErr("list invitations", err)
	}
	defer rows.Close()
	var list []*entity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, wrapErr("scan invitation", err)
		}
		list = append(list, inv)
	}
	return list, wrapErr("list invitations", rows.Err())
}

func (r *InvitationRepo) CountUnused(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM invitations WHERE organization_id = $1 AND status = 'unused'`, orgID,
	).Scan(&n)
	return n, wrapErr("count invitations", err)
}

// Consume la condición status = 'unused' hace que solo una de dos resoluciones simultáneas gane.
func (r *InvitationRepo) Consume(ctx context.Context, id string, status entity.InvitationStatus, usedBy *string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invitations SET status = $2, used_by = $3, updated_at = now()
		WHERE id = $1 AND status = 'unused'`,
		id, string(status), usedBy,
	)
	if err != nil {
		return false, wrapErr("consume invitation", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *InvitationRepo) DeleteByOrganization(ctx context.Context, orgID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM invitations WHERE organization_id = $1`, orgID)
	return wrapErr("delete invitations", err)
}

func (r *InvitationRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return inv, nil
}

func scanInvitation(row pgx.Row) (*entity.Invitation, error) {
	var (
		inv    entity.Invitation
		status string
	)
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Code, &inv.Email, &status, &inv.UsedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvitationStatus(status)
	return &inv, nil
}
