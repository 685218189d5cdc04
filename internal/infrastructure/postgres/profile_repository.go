package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// profileSelect une la empresa como jsonb. Según la vista consultada la relación llega como
// objeto, arreglo o NULL; entity.OrganizationRef la normaliza.
const profileSelect = `
	SELECT p.id, p.email, p.full_name, p.role, p.organization_id, p.subscription_end_date,
	       p.permissions, p.created_at, p.updated_at,
	       CASE WHEN o.id IS NULL THEN NULL ELSE to_jsonb(o) END
	FROM profiles p
	LEFT JOIN organizations o ON o.id = p.organization_id`

// ProfileRepo implementación del puerto ProfileRepository sobre PostgreSQL.
type ProfileRepo struct {
	db Querier
}

func NewProfileRepository(db Querier) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role, organization_id, subscription_end_date, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Email, p.FullName, string(p.RoleOrNormal()), p.OrganizationID, p.SubscriptionEndDate,
		p.Permissions, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert profile", err)
	}
	return nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return r.one(ctx, "get profile", profileSelect+` WHERE p.id = $1`, id)
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return r.one(ctx, "get profile by email", profileSelect+` WHERE lower(p.email) = lower($1) LIMIT 1`, email)
}

func (r *ProfileRepo) List(ctx context.Context, limit, offset int) ([]*entity.Profile, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.many(ctx, "list profiles", profileSelect+` ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ProfileRepo) ListByOrganization(ctx context.Context, orgID string) ([]*entity.Profile, error) {
	return r.many(ctx, "list members", profileSelect+` WHERE p.organization_id = $1 ORDER BY p.created_at`, orgID)
}

func (r *ProfileRepo) FindOwner(ctx context.Context, orgID string) (*entity.Profile, error) {
	return r.one(ctx, "find owner",
		profileSelect+` WHERE p.organization_id = $1 AND p.role = 'premium_corporate' LIMIT 1`, orgID)
}

func (r *ProfileRepo) CountNonOwnerMembers(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM profiles WHERE organization_id = $1 AND role <> 'premium_corporate'`, orgID,
	).Scan(&n)
	return n, wrapErr("count members", err)
}

// JoinOrganization condicionado a organization_id IS NULL: dos aprobaciones simultáneas no pisan empresa.
func (r *ProfileRepo) JoinOrganization(ctx context.Context, profileID, orgID string, role entity.Role) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET organization_id = $2, role = $3, permissions = '{}'::jsonb, updated_at = now()
		WHERE id = $1 AND organization_id IS NULL`,
		profileID, orgID, string(role),
	)
	if err != nil {
		return false, wrapErr("join organization", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfileRepo) Detach(ctx context.Context, profileID, orgID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET organization_id = NULL, role = 'normal', permissions = '{}'::jsonb, updated_at = now()
		WHERE id = $1 AND organization_id = $2`,
		profileID, orgID,
	)
	if err != nil {
		return false, wrapErr("detach profile", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfileRepo) DetachAll(ctx context.Context, orgID string) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET organization_id = NULL, role = 'normal', permissions = '{}'::jsonb, updated_at = now()
		WHERE organization_id = $1`,
		orgID,
	)
	if err != nil {
		return 0, wrapErr("detach members", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, profileID, orgID string, role entity.Role, perms entity.Permissions) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET role = $3, permissions = $4, updated_at = now()
		WHERE id = $1 AND organization_id = $2`,
		profileID, orgID, string(role), perms,
	)
	if err != nil {
		return false, wrapErr("update role", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfileRepo) UpdatePermissions(ctx context.Context, profileID, orgID string, perms entity.Permissions) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles SET permissions = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND role = 'corporate_chief'`,
		profileID, orgID, perms,
	)
	if err != nil {
		return false, wrapErr("update permissions", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfileRepo) MakeOwner(ctx context.Context, profileID, orgID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET organization_id = $2, role = 'premium_corporate', permissions = '{}'::jsonb, updated_at = now()
		WHERE id = $1`,
		profileID, orgID,
	)
	if err != nil {
		return wrapErr("make owner", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ProfileRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

func (r *ProfileRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.Profile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, p)
	}
	return list, wrapErr(op, rows.Err())
}

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var (
		p       entity.Profile
		role    string
		orgJSON []byte
	)
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &role, &p.OrganizationID, &p.SubscriptionEndDate,
		&p.Permissions, &p.CreatedAt, &p.UpdatedAt, &orgJSON)
	if err != nil {
		return nil, err
	}
	p.Role = entity.ParseRole(role)
	if len(orgJSON) > 0 {
		var ref entity.OrganizationRef
		if err := json.Unmarshal(orgJSON, &ref); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.ID, err)
		}
		p.Organization = ref.Org
	}
	return &p, nil
}
