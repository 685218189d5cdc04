package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// InvitationRepository define el puerto de persistencia para Invitation (DIP).
type InvitationRepository interface {
	// CreateWithinQuota inserta solo si miembros no dueños + invitaciones sin usar < limit.
	// false si la empresa está al límite; domain.ErrDuplicate si el código ya existe.
	CreateWithinQuota(ctx context.Context, inv *entity.Invitation, limit int) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Invitation, error)
	// GetUnusedByCode solo devuelve invitaciones en estado unused.
	GetUnusedByCode(ctx context.Context, code string) (*entity.Invitation, error)
	FindPendingByEmail(ctx context.Context, orgID, email string) (*entity.Invitation, error)
	ListUnused(ctx context.Context, orgID string) ([]*entity.Invitation, error)
	CountUnused(ctx context.Context, orgID string) (int, error)
	// Consume pasa de unused a status de forma condicional. false si ya estaba consumida.
	Consume(ctx context.Context, id string, status entity.InvitationStatus, usedBy *string) (bool, error)
	DeleteByOrganization(ctx context.Context, orgID string) error
}
