package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// CorporatePlanInput alta de una empresa para un usuario existente.
type CorporatePlanInput struct {
	OwnerID             string
	Name                string
	MemberLimit         int
	SubscriptionEndDate *time.Time
	Credits             decimal.Decimal
}

// OrganizationPatch campos nil no se tocan.
type OrganizationPatch struct {
	Name                *string
	MemberLimit         *int
	SubscriptionEndDate *time.Time
	Credits             *decimal.Decimal
}

// AnnouncementInput UserID vacío = todos los usuarios.
type AnnouncementInput struct {
	UserID  string
	Title   string
	Message string
}

// AdminUseCase operaciones del administrador del sistema.
type AdminUseCase struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	events  *events.Emitter
	metrics ports.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(repos repository.Repositories, tx ports.TxRunner, ev *events.Emitter, metrics ports.Recorder, log zerolog.Logger) *AdminUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &AdminUseCase{repos: repos, tx: tx, events: ev, metrics: metrics, log: log, now: time.Now}
}

func (uc *AdminUseCase) requireAdmin(caps *access.Capabilities, op string) error {
	if caps.IsAdmin() {
		return nil
	}
	uc.metrics.AccessDenied(op)
	uc.log.Debug().Str("user_id", caps.UserID()).Str("op", op).Msg("acceso denegado")
	return domain.ErrUnauthorized
}

// ProvisionCorporatePlan crea la empresa y convierte al usuario en su dueño.
func (uc *AdminUseCase) ProvisionCorporatePlan(ctx context.Context, caps *access.Capabilities, in CorporatePlanInput) (*entity.Organization, error) {
	if err := uc.requireAdmin(caps, "provision_corporate_plan"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.MemberLimit < 0 {
		return nil, domain.Invalid("member_limit", "no puede ser negativo")
	}
	owner, err := uc.repos.Profiles.GetByID(ctx, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	if owner.Role == entity.RoleAdmin {
		return nil, domain.Invalid("owner_id", "un administrador no puede ser dueño de una empresa")
	}
	if owner.OrgID() != "" {
		return nil, fmt.Errorf("%w: el usuario ya pertenece a una empresa", domain.ErrConflict)
	}
	limit := in.MemberLimit
	if limit == 0 {
		limit = entity.DefaultMemberLimit
	}
	now := uc.now()
	org := &entity.Organization{
		ID:                  uuid.NewString(),
		Name:                name,
		MemberLimit:         limit,
		SubscriptionEndDate: in.SubscriptionEndDate,
		Credits:             in.Credits,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		if err := r.Organizations.Create(ctx, org); err != nil {
			return err
		}
		return r.Profiles.MakeOwner(ctx, owner.ID, org.ID)
	})
	if err != nil {
		return nil, err
	}
	uc.events.ProfileChanged(ctx, org.ID, owner.ID)
	uc.log.Info().Str("org_id", org.ID).Str("owner_id", owner.ID).Msg("plan corporativo creado")
	return org, nil
}

// UpdateOrganization límites, suscripción o créditos. Afecta al premium de todos los miembros.
func (uc *AdminUseCase) UpdateOrganization(ctx context.Context, caps *access.Capabilities, id string, patch OrganizationPatch) (*entity.Organization, error) {
	if err := uc.requireAdmin(caps, "update_organization"); err != nil {
		return nil, err
	}
	org, err := uc.repos.Organizations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		org.Name = name
	}
	if patch.MemberLimit != nil {
		if *patch.MemberLimit < 1 {
			return nil, domain.Invalid("member_limit", "debe ser al menos 1")
		}
		org.MemberLimit = *patch.MemberLimit
	}
	if patch.SubscriptionEndDate != nil {
		org.SubscriptionEndDate = patch.SubscriptionEndDate
	}
	if patch.Credits != nil {
		if patch.Credits.IsNegative() {
			return nil, domain.Invalid("credits", "no puede ser negativo")
		}
		org.Credits = *patch.Credits
	}
	org.UpdatedAt = uc.now()
	if err := uc.repos.Organizations.Update(ctx, org); err != nil {
		return nil, err
	}
	uc.events.OrganizationChanged(ctx, org.ID, ports.ActionUpdate)
	return org, nil
}

// DeleteOrganization desvincula a todos los miembros, borra invitaciones y la empresa, en una transacción.
func (uc *AdminUseCase) DeleteOrganization(ctx context.Context, caps *access.Capabilities, id string) error {
	if err := uc.requireAdmin(caps, "delete_organization"); err != nil {
		return err
	}
	org, err := uc.repos.Organizations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if org == nil {
		return domain.ErrNotFound
	}
	detached := 0
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		n, err := r.Profiles.DetachAll(ctx, id)
		if err != nil {
			return err
		}
		detached = n
		if err := r.Invitations.DeleteByOrganization(ctx, id); err != nil {
			return err
		}
		return r.Organizations.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.events.OrganizationChanged(ctx, id, ports.ActionDelete)
	uc.log.Info().Str("org_id", id).Int("detached", detached).Msg("empresa eliminada")
	return nil
}

func (uc *AdminUseCase) Organizations(ctx context.Context, caps *access.Capabilities) ([]*entity.Organization, error) {
	if err := uc.requireAdmin(caps, "list_organizations"); err != nil {
		return nil, err
	}
	return uc.repos.Organizations.List(ctx)
}

func (uc *AdminUseCase) Profiles(ctx context.Context, caps *access.Capabilities, limit, offset int) ([]*entity.Profile, error) {
	if err := uc.requireAdmin(caps, "list_profiles"); err != nil {
		return nil, err
	}
	return uc.repos.Profiles.List(ctx, limit, offset)
}

// Announce aviso general a todos o mensaje directo a un usuario. Devuelve cuántas notificaciones se crearon.
func (uc *AdminUseCase) Announce(ctx context.Context, caps *access.Capabilities, in AnnouncementInput) (int, error) {
	if err := uc.requireAdmin(caps, "announce"); err != nil {
		return 0, err
	}
	title := strings.TrimSpace(in.Title)
	msg := strings.TrimSpace(in.Message)
	if title == "" {
		return 0, domain.Invalid("title", "requerido")
	}
	if msg == "" {
		return 0, domain.Invalid("message", "requerido")
	}
	n := entity.Notification{Title: title, Message: msg, CreatedAt: uc.now()}
	if in.UserID == "" {
		n.Type = entity.NotificationAnnouncement
		sent, err := uc.repos.Notifications.Broadcast(ctx, n)
		if err != nil {
			return 0, err
		}
		uc.log.Info().Int("sent", sent).Msg("anuncio enviado")
		return sent, nil
	}
	target, err := uc.repos.Profiles.GetByID(ctx, in.UserID)
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, domain.ErrUserNotFound
	}
	n.ID = uuid.NewString()
	n.UserID = target.ID
	n.Type = entity.NotificationAdminMessage
	if err := uc.repos.Notifications.Create(ctx, &n); err != nil {
		return 0, err
	}
	uc.events.NotificationCreated(ctx, &n)
	return 1, nil
}
