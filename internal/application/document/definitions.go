package document

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

const maxLabelLength = 120

// Definitions catálogo de tipos y ubicaciones del actor.
func (s *Service) Definitions(ctx context.Context, caps *access.Capabilities) ([]*entity.Definition, error) {
	return s.repos.Definitions.ListByUser(ctx, caps.UserID())
}

// AddDefinition crea una etiqueta en la categoría indicada.
func (s *Service) AddDefinition(ctx context.Context, caps *access.Capabilities, category entity.DefinitionCategory, label string) (*entity.Definition, error) {
	if !category.Valid() {
		return nil, domain.Invalid("category", "debe ser doc_type o location")
	}
	label, err := cleanLabel(label)
	if err != nil {
		return nil, err
	}
	d := &entity.Definition{
		ID:        uuid.New().String(),
		UserID:    caps.UserID(),
		Category:  category,
		Label:     label,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repos.Definitions.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// RenameDefinition solo sobre etiquetas propias.
func (s *Service) RenameDefinition(ctx context.Context, caps *access.Capabilities, id, label string) error {
	label, err := cleanLabel(label)
	if err != nil {
		return err
	}
	ok, err := s.repos.Definitions.Rename(ctx, id, caps.UserID(), label)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDefinition solo sobre etiquetas propias.
func (s *Service) DeleteDefinition(ctx context.Context, caps *access.Capabilities, id string) error {
	ok, err := s.repos.Definitions.Delete(ctx, id, caps.UserID())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func cleanLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", domain.Invalid("label", "requerido")
	}
	if len([]rune(label)) > maxLabelLength {
		return "", domain.Invalid("label", "demasiado largo")
	}
	return label, nil
}
