package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para Document (DIP).
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	// CreateWithinQuota inserta solo si el cargador tiene menos de limit documentos activos.
	// false si el cupo está agotado.
	CreateWithinQuota(ctx context.Context, d *entity.Document, limit int) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// List aplica el filtro remoto; puede traer de más, el llamador filtra fila a fila.
	List(ctx context.Context, f entity.DocumentFilter, archived bool) ([]*entity.Document, error)
	// ListVersions documentos archivados que comparten tipo y ubicación (ver VersionQuery).
	ListVersions(ctx context.Context, q entity.VersionQuery, excludeID string) ([]*entity.Document, error)
	CountActiveByUploader(ctx context.Context, uploaderID string) (int, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
	Update(ctx context.Context, d *entity.Document) error
	// Archive marca archivado solo si sigue activo. false si ya lo estaba.
	Archive(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
