package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.OrganizationRepository = (*OrganizationRepo)(nil)

const organizationColumns = `id, name, member_limit, subscription_end_date, credits, created_at, updated_at`

// OrganizationRepo implementación del puerto OrganizationRepository sobre PostgreSQL.
type OrganizationRepo struct {
	db Querier
}

func NewOrganizationRepository(db Querier) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

func (r *OrganizationRepo) Create(ctx context.Context, org *entity.Organization) error {
	query := `
		INSERT INTO organizations (` + organizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		org.ID, org.Name, org.MemberLimit, org.SubscriptionEndDate, org.Credits, org.CreatedAt, org.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert organization", err)
	}
	return nil
}

func (r *OrganizationRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	o, err := scanOrganization(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get organization", err)
	}
	return o, nil
}

func (r *OrganizationRepo) List(ctx context.Context) ([]*entity.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list organizations", err)
	}
	defer rows.Close()
	var list []*entity.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, wrapErr("scan organization", err)
		}
		list = append(list, o)
	}
	return list, wrapErr("list organizations", rows.Err())
}

func (r *OrganizationRepo) Update(ctx context.Context, org *entity.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, member_limit = $3, subscription_end_date = $4, credits = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		org.ID, org.Name, org.MemberLimit, org.SubscriptionEndDate, org.Credits, org.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update organization", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete los documentos quedan con organization_id NULL (FK ON DELETE SET NULL).
func (r *OrganizationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return wrapErr("delete organization", err)
}

func scanOrganization(row pgx.Row) (*entity.Organization, error) {
	var o entity.Organization
	err := row.Scan(&o.ID, &o.Name, &o.MemberLimit, &o.SubscriptionEndDate, &o.Credits, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
