package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.DefinitionRepository = (*DefinitionRepo)(nil)

// DefinitionRepo tipos de documento y ubicaciones de cada usuario (tabla user_definitions).
type DefinitionRepo struct {
	db Querier
}

func NewDefinitionRepository(db Querier) *DefinitionRepo {
	return &DefinitionRepo{db: db}
}

func (r *DefinitionRepo) Create(ctx context.Context, d *entity.Definition) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_definitions (id, user_id, category, label, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.UserID, string(d.Category), d.Label, d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert definition", err)
	}
	return nil
}

func (r *DefinitionRepo) GetByID(ctx context.Context, id string) (*entity.Definition, error) {
	d, err := scanDefinition(r.db.QueryRow(ctx,
		`SELECT id, user_id, category, label, created_at FROM user_definitions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get definition", err)
	}
	return d, nil
}

func (r *DefinitionRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Definition, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, category, label, created_at FROM user_definitions
		WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, wrapErr("list definitions", err)
	}
	defer rows.Close()
	var list []*entity.Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, wrapErr("scan definition", err)
		}
		list = append(list, d)
	}
	return list, wrapErr("list definitions", rows.Err())
}

func (r *DefinitionRepo) Rename(ctx context.Context, id, userID, label string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE user_definitions SET label = $3 WHERE id = $1 AND user_id = $2`, id, userID, label)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrDuplicate
		}
		return false, wrapErr("rename definition", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DefinitionRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_definitions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, wrapErr("delete definition", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanDefinition(row pgx.Row) (*entity.Definition, error) {
	var (
		d        entity.Definition
		category string
	)
	if err := row.Scan(&d.ID, &d.UserID, &category, &d.Label, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Category = entity.DefinitionCategory(category)
	return &d, nil
}
