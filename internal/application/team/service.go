// Package team gestión del personal de una empresa: resumen, roles, permisos, expulsión y salida.
package team

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// UsageCounter cupo de personal ocupado.
type UsageCounter interface {
	Usage(ctx context.Context, org *entity.Organization) (invitation.Usage, error)
}

// Overview panel de la empresa. Invitations solo se rellena para quien gestiona el equipo.
type Overview struct {
	Organization *entity.Organization
	Members      []*entity.Profile
	Invitations  []*entity.Invitation
	Usage        invitation.Usage
	Documents    int
}

// Service casos de uso de gestión de equipo.
type Service struct {
	repos   repository.Repositories
	usage   UsageCounter
	events  *events.Emitter
	metrics ports.Recorder
	log     zerolog.Logger
}

// NewService construye el servicio.
func NewService(repos repository.Repositories, usage UsageCounter, ev *events.Emitter, metrics ports.Recorder, log zerolog.Logger) *Service {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &Service{repos: repos, usage: usage, events: ev, metrics: metrics, log: log}
}

// Overview miembros (sin el propio actor), invitaciones pendientes, cupo y documentos activos.
func (s *Service) Overview(ctx context.Context, caps *access.Capabilities) (*Overview, error) {
	orgID := caps.OrgID()
	if orgID == "" {
		return nil, domain.ErrNotFound
	}
	org, err := s.repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	out := &Overview{Organization: org}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := s.repos.Profiles.ListByOrganization(gctx, orgID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.ID != caps.UserID() {
				out.Members = append(out.Members, m)
			}
		}
		return nil
	})
	g.Go(func() error {
		u, err := s.usage.Usage(gctx, org)
		out.Usage = u
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Documents.CountByOrganization(gctx, orgID)
		out.Documents = n
		return err
	})
	if caps.CanManageTeam() {
		g.Go(func() error {
			list, err := s.repos.Invitations.ListUnused(gctx, orgID)
			out.Invitations = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resumen de equipo: %w", err)
	}
	return out, nil
}

// ToggleRole alterna personal ↔ jefe. Los permisos vuelven a cero en ambos sentidos.
func (s *Service) ToggleRole(ctx context.Context, caps *access.Capabilities, memberID string) (entity.Role, error) {
	target, err := s.ownedMember(ctx, caps, memberID, "toggle_role")
	if err != nil {
		return "", err
	}
	var next entity.Role
	switch target.Role {
	case entity.RoleCorporateStaff:
		next = entity.RoleCorporateChief
	case entity.RoleCorporateChief:
		next = entity.RoleCorporateStaff
	default:
		return "", domain.Invalid("role", "solo se alterna entre personal y jefe")
	}
	ok, err := s.repos.Profiles.UpdateRole(ctx, target.ID, caps.OrgID(), next, entity.Permissions{})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNotFound
	}
	s.events.ProfileChanged(ctx, caps.OrgID(), target.ID)
	s.log.Info().Str("member_id", target.ID).Str("role", string(next)).Msg("rol cambiado")
	return next, nil
}

// SetPermission activa o desactiva un permiso de un jefe.
func (s *Service) SetPermission(ctx context.Context, caps *access.Capabilities, memberID string, name entity.Permission, value bool) (entity.Permissions, error) {
	target, err := s.ownedMember(ctx, caps, memberID, "set_permission")
	if err != nil {
		return entity.Permissions{}, err
	}
	if target.Role != entity.RoleCorporateChief {
		return entity.Permissions{}, domain.Invalid("role", "los permisos solo aplican a jefes")
	}
	perms, ok := target.Permissions.With(name, value)
	if !ok {
		return entity.Permissions{}, domain.Invalid("permission", fmt.Sprintf("permiso desconocido: %q", name))
	}
	updated, err := s.repos.Profiles.UpdatePermissions(ctx, target.ID, caps.OrgID(), perms)
	if err != nil {
		return entity.Permissions{}, err
	}
	if !updated {
		return entity.Permissions{}, domain.ErrNotFound
	}
	s.events.ProfileChanged(ctx, caps.OrgID(), target.ID)
	return perms, nil
}

// Kick expulsa a un miembro: queda como usuario normal sin empresa. El dueño no puede ser expulsado.
func (s *Service) Kick(ctx context.Context, caps *access.Capabilities, memberID string) error {
	target, err := s.repos.Profiles.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if target == nil || target.OrgID() == "" {
		return domain.ErrNotFound
	}
	orgID := target.OrgID()
	if !caps.CanRemoveMember(orgID) {
		if !caps.IsOwner() {
			s.denied(caps, "kick_member")
			return domain.ErrUnauthorized
		}
		return domain.ErrNotFound
	}
	if target.Role == entity.RolePremiumCorporate {
		return fmt.Errorf("%w: el dueño no puede ser expulsado", domain.ErrConflict)
	}
	ok, err := s.repos.Profiles.Detach(ctx, target.ID, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.events.ProfileChanged(ctx, orgID, target.ID)
	s.log.Info().Str("member_id", target.ID).Str("org_id", orgID).Str("actor_id", caps.UserID()).Msg("miembro expulsado")
	return nil
}

// Leave el actor abandona su empresa. El dueño no puede salir.
func (s *Service) Leave(ctx context.Context, caps *access.Capabilities) error {
	orgID := caps.OrgID()
	if orgID == "" {
		return domain.Invalid("organization_id", "el usuario no pertenece a una empresa")
	}
	if caps.IsOwner() {
		return fmt.Errorf("%w: el dueño no puede abandonar su empresa", domain.ErrConflict)
	}
	ok, err := s.repos.Profiles.Detach(ctx, caps.UserID(), orgID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrConflict
	}
	s.events.ProfileChanged(ctx, orgID, caps.UserID())
	s.log.Info().Str("user_id", caps.UserID()).Str("org_id", orgID).Msg("miembro abandonó la empresa")
	return nil
}

// ownedMember cambios de rol y permisos: solo el dueño, sobre miembros de su empresa.
func (s *Service) ownedMember(ctx context.Context, caps *access.Capabilities, memberID, op string) (*entity.Profile, error) {
	if !caps.IsOwner() {
		s.denied(caps, op)
		return nil, domain.ErrUnauthorized
	}
	if memberID == caps.UserID() {
		return nil, domain.Invalid("member_id", "no aplica al propio dueño")
	}
	target, err := s.repos.Profiles.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.InOrganization(caps.OrgID()) {
		return nil, domain.ErrNotFound
	}
	return target, nil
}

func (s *Service) denied(caps *access.Capabilities, op string) {
	s.metrics.AccessDenied(op)
	s.log.Debug().Str("user_id", caps.UserID()).Str("op", op).Msg("acceso denegado")
}
