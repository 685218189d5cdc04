package repository

import (
	"context"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia para Profile (DIP).
// Las lecturas devuelven (nil, nil) si no existe la fila.
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	// GetByID incluye la empresa ya normalizada en p.Organization.
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Profile, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*entity.Profile, error)
	// FindOwner perfil premium_corporate de la empresa.
	FindOwner(ctx context.Context, orgID string) (*entity.Profile, error)
	CountNonOwnerMembers(ctx context.Context, orgID string) (int, error)

	// JoinOrganization asigna empresa y rol solo si el perfil no pertenece a ninguna.
	// false si la condición no se cumplió.
	JoinOrganization(ctx context.Context, profileID, orgID string, role entity.Role) (bool, error)
	// Detach deja el perfil como normal sin empresa si sigue en orgID.
	Detach(ctx context.Context, profileID, orgID string) (bool, error)
	// DetachAll desvincula a todos los miembros de la empresa.
	DetachAll(ctx context.Context, orgID string) (int, error)
	// UpdateRole cambia rol y permisos de un miembro de orgID.
	UpdateRole(ctx context.Context, profileID, orgID string, role entity.Role, perms entity.Permissions) (bool, error)
	// UpdatePermissions solo aplica a jefes de orgID.
	UpdatePermissions(ctx context.Context, profileID, orgID string, perms entity.Permissions) (bool, error)
	// MakeOwner convierte el perfil en dueño (premium_corporate) de orgID.
	MakeOwner(ctx context.Context, profileID, orgID string) error
}
