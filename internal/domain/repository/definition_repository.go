package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// DefinitionRepository catálogos de tipos y ubicaciones por usuario.
type DefinitionRepository interface {
	Create(ctx context.Context, d *entity.Definition) error
	GetByID(ctx context.Context, id string) (*entity.Definition, error)
	// ListByUser más antiguas primero.
	ListByUser(ctx context.Context, userID string) ([]*entity.Definition, error)
	Rename(ctx context.Context, id, userID, label string) (bool, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}
