package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, uploader_id, organization_id, type_def_id, location_def_id, title, description,
	acquisition_date, is_indefinite, expiry_date, application_deadline, reminder_days, reminder_based_on,
	is_archived, file_url, file_path, file_type, file_size, created_at, updated_at`

// DocumentRepo implementación del puerto DocumentRepository sobre PostgreSQL.
type DocumentRepo struct {
	db Querier
}

func NewDocumentRepository(db Querier) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.db.Exec(ctx, query,
		d.ID, d.UploaderID, d.OrganizationID, d.TypeDefID, d.LocationDefID, d.Title, d.Description,
		d.AcquisitionDate, d.IsIndefinite, d.ExpiryDate, d.ApplicationDeadline, d.ReminderDays, d.ReminderBasedOn,
		d.IsArchived, d.FileURL, d.FilePath, d.FileType, d.FileSizeBytes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert document", err)
	}
	return nil
}

// CreateWithinQuota bloquea el perfil del cargador y después cuenta e inserta, así dos subidas
// simultáneas no superan el límite de documentos activos.
func (r *DocumentRepo) CreateWithinQuota(ctx context.Context, d *entity.Document, limit int) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, wrapErr("begin document insert", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `SELECT id FROM profiles WHERE id = $1 FOR UPDATE`, d.UploaderID)
	if err != nil {
		return false, wrapErr("lock uploader", err)
	}
	if tag.RowsAffected() == 0 {
		return false, domain.ErrNotFound
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		WHERE (SELECT count(*) FROM documents WHERE uploader_id = $2 AND NOT is_archived) < $21`
	tag, err = tx.Exec(ctx, query,
		d.ID, d.UploaderID, d.OrganizationID, d.TypeDefID, d.LocationDefID, d.Title, d.Description,
		d.AcquisitionDate, d.IsIndefinite, d.ExpiryDate, d.ApplicationDeadline, d.ReminderDays, d.ReminderBasedOn,
		d.IsArchived, d.FileURL, d.FilePath, d.FileType, d.FileSizeBytes, d.CreatedAt, d.UpdatedAt, limit,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, domain.ErrDuplicate
		}
		return false, wrapErr("insert document", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if err := tx.Commit(ctx); err != nil {
		return false, wrapErr("commit document insert", err)
	}
	return true, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	d, err := scanDocument(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get document", err)
	}
	return d, nil
}

// List filtro remoto: uploader_id = self OR organization_id = org. Con All no se filtra.
func (r *DocumentRepo) List(ctx context.Context, f entity.DocumentFilter, archived bool) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE is_archived = $1
		  AND ($2 OR uploader_id = $3 OR ($4 <> '' AND organization_id::text = $4))
		ORDER BY created_at DESC`
	return r.many(ctx, "list documents", query, archived, f.All, f.UploaderID, f.OrganizationID)
}

// ListVersions misma ubicación solo si se indicó; misma empresa si es corporativo, si no mismo cargador sin empresa.
func (r *DocumentRepo) ListVersions(ctx context.Context, q entity.VersionQuery, excludeID string) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE is_archived AND id <> $1 AND type_def_id = $2
		  AND ($3::text IS NULL OR location_def_id = $3)
		  AND (
		        ($4::uuid IS NOT NULL AND organization_id = $4)
		     OR ($4::uuid IS NULL AND organization_id IS NULL AND uploader_id = $5)
		  )
		ORDER BY created_at DESC`
	return r.many(ctx, "list versions", query, excludeID, q.TypeDefID, q.LocationDefID, q.OrganizationID, q.UploaderID)
}

func (r *DocumentRepo) CountActiveByUploader(ctx context.Context, uploaderID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE uploader_id = $1 AND NOT is_archived`, uploaderID,
	).Scan(&n)
	return n, wrapErr("count documents", err)
}

func (r *DocumentRepo) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE organization_id = $1 AND NOT is_archived`, orgID,
	).Scan(&n)
	return n, wrapErr("count organization documents", err)
}

func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents SET
			type_def_id = $2, location_def_id = $3, title = $4, description = $5, acquisition_date = $6,
			is_indefinite = $7, expiry_date = $8, application_deadline = $9, reminder_days = $10,
			reminder_based_on = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		d.ID, d.TypeDefID, d.LocationDefID, d.Title, d.Description, d.AcquisitionDate,
		d.IsIndefinite, d.ExpiryDate, d.ApplicationDeadline, d.ReminderDays, d.ReminderBasedOn, d.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Archive(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET is_archived = true, updated_at = now() WHERE id = $1 AND NOT is_archived`, id)
	if err != nil {
		return false, wrapErr("archive document", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return wrapErr("delete document", err)
}

func (r *DocumentRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, d)
	}
	return list, wrapErr(op, rows.Err())
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(
		&d.ID, &d.UploaderID, &d.OrganizationID, &d.TypeDefID, &d.LocationDefID, &d.Title, &d.Description,
		&d.AcquisitionDate, &d.IsIndefinite, &d.ExpiryDate, &d.ApplicationDeadline, &d.ReminderDays, &d.ReminderBasedOn,
		&d.IsArchived, &d.FileURL, &d.FilePath, &d.FileType, &d.FileSizeBytes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
