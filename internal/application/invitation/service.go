// Package invitation flujo de códigos de invitación, solicitudes de unión e invitaciones por email.
//
// Cada transición que consume una invitación es una actualización condicional
// (unused → estado terminal); la segunda llamada sobre la misma invitación observa
// el estado terminal y falla con domain.ErrAlreadyConsumed sin efectos.
package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// Transiciones registradas en métricas.
const (
	TransitionCreated   = "created"
	TransitionRequested = "requested"
	TransitionApproved  = "approved"
	TransitionRejected  = "rejected"
	TransitionCancelled = "cancelled"
	TransitionAccepted  = "accepted"
	TransitionDeclined  = "declined"
)

// Usage ocupación de personal de una empresa.
type Usage struct {
	Members           int
	UnusedInvitations int
	Limit             int
}

// Used miembros no dueños + invitaciones sin usar.
func (u Usage) Used() int { return u.Members + u.UnusedInvitations }

// Service casos de uso del flujo de invitaciones.
type Service struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	events  *events.Emitter
	metrics ports.Recorder
	log     zerolog.Logger

	newCode func() (string, error)
	now     func() time.Time
}

// NewService construye el servicio. events y metrics pueden ser nil.
func NewService(repos repository.Repositories, tx ports.TxRunner, ev *events.Emitter, metrics ports.Recorder, log zerolog.Logger) *Service {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &Service{
		repos:   repos,
		tx:      tx,
		events:  ev,
		metrics: metrics,
		log:     log,
		newCode: NewCode,
		now:     time.Now,
	}
}

// WithCodeGenerator reemplaza el generador de códigos.
func (s *Service) WithCodeGenerator(gen func() (string, error)) *Service {
	s.newCode = gen
	return s
}

// Usage cuenta miembros e invitaciones en paralelo.
func (s *Service) Usage(ctx context.Context, org *entity.Organization) (Usage, error) {
	u := Usage{Limit: org.EffectiveMemberLimit()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repos.Profiles.CountNonOwnerMembers(gctx, org.ID)
		u.Members = n
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Invitations.CountUnused(gctx, org.ID)
		u.UnusedInvitations = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Usage{}, fmt.Errorf("contar cupo: %w", err)
	}
	return u, nil
}

// CreateCode genera un código manual para la empresa del actor.
func (s *Service) CreateCode(ctx context.Context, caps *access.Capabilities) (*entity.Invitation, error) {
	org, err := s.managedOrganization(ctx, caps, "create_code")
	if err != nil {
		return nil, err
	}
	inv, err := s.insertWithinQuota(ctx, s.repos.Invitations, org, nil)
	if err != nil {
		return nil, err
	}
	s.metrics.InvitationTransition(TransitionCreated)
	s.log.Info().Str("org_id", org.ID).Str("invitation_id", inv.ID).Msg("código de invitación creado")
	return inv, nil
}

// SendEmailInvite invita a un usuario existente sin empresa y le envía la notificación de invitación.
func (s *Service) SendEmailInvite(ctx context.Context, caps *access.Capabilities, targetEmail string) (*entity.Invitation, error) {
	org, err := s.managedOrganization(ctx, caps, "send_invite")
	if err != nil {
		return nil, err
	}
	email, err := NormalizeEmail(targetEmail)
	if err != nil {
		return nil, err
	}

	pending, err := s.repos.Invitations.FindPendingByEmail(ctx, org.ID, email)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, domain.ErrDuplicateInvite
	}
	target, err := s.repos.Profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}
	// Pertenecer a esta u otra empresa es DuplicateInvite, igual que una invitación pendiente.
	if target.OrgID() != "" {
		return nil, domain.ErrDuplicateInvite
	}

	var (
		inv   *entity.Invitation
		notif *entity.Notification
	)
	err = s.tx.Run(ctx, func(r repository.Repositories) error {
		created, err := s.insertWithinQuota(ctx, r.Invitations, org, &email)
		if err != nil {
			return err
		}
		n := s.notification(target.ID, entity.NotificationInvite,
			"Şirket Daveti",
			fmt.Sprintf("%s şirketi sizi ekibine katılmaya davet etti.", org.Name),
			entity.NotificationMetadata{OrgID: org.ID, OrgName: org.Name, InviteCode: created.Code, InvitationID: created.ID},
		)
		if err := r.Notifications.Create(ctx, n); err != nil {
			return err
		}
		inv, notif = created, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.NotificationCreated(ctx, notif)
	s.metrics.InvitationTransition(TransitionCreated)
	s.log.Info().Str("org_id", org.ID).Str("target_id", target.ID).Msg("invitación por email enviada")
	return inv, nil
}

// RequestJoin canjea un código: no consume la invitación, avisa al dueño de la empresa.
func (s *Service) RequestJoin(ctx context.Context, caps *access.Capabilities, code string) (*entity.Notification, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	// Un código inexistente o consumido es InvalidCode antes que cualquier otra comprobación.
	inv, err := s.repos.Invitations.GetUnusedByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvalidCode
	}
	if caps.OrgID() != "" {
		return nil, domain.ErrConflict
	}
	owner, err := s.repos.Profiles.FindOwner(ctx, inv.OrganizationID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrOwnerNotFound
	}

	me := caps.Profile()
	name := me.FullName
	if name == "" {
		name = me.Email
	}
	n := s.notification(owner.ID, entity.NotificationJoinRequest,
		"Yeni Personel Talebi",
		fmt.Sprintf("%s (%s) şirketinize katılmak için kod kullandı. Onaylıyor musunuz?", name, me.Email),
		entity.NotificationMetadata{
			OrgID:         inv.OrganizationID,
			RequesterID:   me.ID,
			RequesterName: name,
			InvitationID:  inv.ID,
			InviteCode:    inv.Code,
		},
	)
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	s.events.NotificationCreated(ctx, n)
	s.metrics.InvitationTransition(TransitionRequested)
	s.log.Info().Str("invitation_id", inv.ID).Str("requester_id", me.ID).Msg("solicitud de unión enviada")
	return n, nil
}

// ApproveJoin acepta una solicitud: consume la invitación, une al solicitante como personal,
// le notifica y descarta la notificación del dueño. Todo o nada.
func (s *Service) ApproveJoin(ctx context.Context, caps *access.Capabilities, notificationID string) error {
	return s.resolveJoin(ctx, caps, notificationID, true)
}

// RejectJoin consume la invitación sin unir al solicitante.
func (s *Service) RejectJoin(ctx context.Context, caps *access.Capabilities, notificationID string) error {
	return s.resolveJoin(ctx, caps, notificationID, false)
}

func (s *Service) resolveJoin(ctx context.Context, caps *access.Capabilities, notificationID string, approve bool) error {
	op := "reject_join"
	if approve {
		op = "approve_join"
	}
	if !caps.CanManageTeam() {
		s.metrics.AccessDenied(op)
		return domain.ErrUnauthorized
	}

	n, err := s.ownNotification(ctx, caps, notificationID, entity.NotificationJoinRequest)
	if err != nil {
		return err
	}
	meta := n.Metadata
	inv, err := s.repos.Invitations.GetByID(ctx, meta.InvitationID)
	if err != nil {
		return err
	}
	if inv == nil || inv.IsUsed() {
		return domain.ErrAlreadyConsumed
	}
	if !caps.IsAdmin() && inv.OrganizationID != caps.OrgID() {
		s.metrics.AccessDenied(op)
		return domain.ErrUnauthorized
	}

	orgName := inv.OrganizationID
	if org, err := s.repos.Organizations.GetByID(ctx, inv.OrganizationID); err == nil && org != nil {
		orgName = org.Name
	}

	var reply *entity.Notification
	err = s.tx.Run(ctx, func(r repository.Repositories) error {
		status := entity.InvitationRejected
		if approve {
			status = entity.InvitationAccepted
		}
		requester := meta.RequesterID
		ok, err := r.Invitations.Consume(ctx, inv.ID, status, &requester)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyConsumed
		}

		if approve {
			joined, err := r.Profiles.JoinOrganization(ctx, requester, inv.OrganizationID, entity.RoleCorporateStaff)
			if err != nil {
				return err
			}
			if !joined {
				// el solicitante ya se unió a otra empresa o no existe
				return domain.ErrConflict
			}
			reply = s.notification(requester, entity.NotificationJoinApproved,
				"Katılım Onaylandı",
				fmt.Sprintf("%s şirketine katılım talebiniz onaylandı.", orgName),
				entity.NotificationMetadata{OrgID: inv.OrganizationID, OrgName: orgName, InvitationID: inv.ID},
			)
		} else {
			reply = s.notification(requester, entity.NotificationJoinRejected,
				"Katılım Reddedildi",
				fmt.Sprintf("%s şirketine katılım talebiniz reddedildi.", orgName),
				entity.NotificationMetadata{OrgID: inv.OrganizationID, OrgName: orgName, InvitationID: inv.ID},
			)
		}
		if err := r.Notifications.Create(ctx, reply); err != nil {
			return err
		}
		_, err = r.Notifications.Delete(ctx, n.ID, n.UserID)
		return err
	})
	if err != nil {
		return err
	}

	if approve {
		s.events.ProfileChanged(ctx, inv.OrganizationID, meta.RequesterID)
		s.metrics.InvitationTransition(TransitionApproved)
	} else {
		s.metrics.InvitationTransition(TransitionRejected)
	}
	s.events.NotificationCreated(ctx, reply)
	s.log.Info().
		Str("invitation_id", inv.ID).
		Str("requester_id", meta.RequesterID).
		Bool("approved", approve).
		Msg("solicitud de unión resuelta")
	return nil
}

// CancelInvitation invalida un código pendiente sin avisar a nadie.
func (s *Service) CancelInvitation(ctx context.Context, caps *access.Capabilities, invitationID string) error {
	if !caps.CanManageTeam() {
		s.metrics.AccessDenied("cancel_invitation")
		return domain.ErrUnauthorized
	}
	inv, err := s.repos.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv == nil || (!caps.IsAdmin() && inv.OrganizationID != caps.OrgID()) {
		return domain.ErrNotFound
	}
	ok, err := s.repos.Invitations.Consume(ctx, inv.ID, entity.InvitationCancelled, nil)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAlreadyConsumed
	}
	s.metrics.InvitationTransition(TransitionCancelled)
	s.log.Info().Str("invitation_id", inv.ID).Msg("invitación cancelada")
	return nil
}

// AcceptEmailInvite el invitado acepta desde su notificación de invitación.
func (s *Service) AcceptEmailInvite(ctx context.Context, caps *access.Capabilities, notificationID string) error {
	return s.answerEmailInvite(ctx, caps, notificationID, true)
}

// DeclineEmailInvite el invitado rechaza; la invitación queda consumida.
func (s *Service) DeclineEmailInvite(ctx context.Context, caps *access.Capabilities, notificationID string) error {
	return s.answerEmailInvite(ctx, caps, notificationID, false)
}

func (s *Service) answerEmailInvite(ctx context.Context, caps *access.Capabilities, notificationID string, accept bool) error {
	n, err := s.ownNotification(ctx, caps, notificationID, entity.NotificationInvite)
	if err != nil {
		return err
	}
	if accept && caps.OrgID() != "" {
		return domain.ErrConflict
	}
	inv, err := s.repos.Invitations.GetUnusedByCode(ctx, n.Metadata.InviteCode)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrAlreadyConsumed
	}
	if inv.Email != nil {
		mine, err := NormalizeEmail(caps.Profile().Email)
		if err != nil || mine != *inv.Email {
			return domain.ErrInvalidCode
		}
	}

	userID := caps.UserID()
	err = s.tx.Run(ctx, func(r repository.Repositories) error {
		status := entity.InvitationRejected
		if accept {
			status = entity.InvitationAccepted
		}
		ok, err := r.Invitations.Consume(ctx, inv.ID, status, &userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAlreadyConsumed
		}
		if accept {
			joined, err := r.Profiles.JoinOrganization(ctx, userID, inv.OrganizationID, entity.RoleCorporateStaff)
			if err != nil {
				return err
			}
			if !joined {
				return domain.ErrConflict
			}
		}
		_, err = r.Notifications.Delete(ctx, n.ID, userID)
		return err
	})
	if err != nil {
		return err
	}

	if accept {
		s.events.ProfileChanged(ctx, inv.OrganizationID, userID)
		s.metrics.InvitationTransition(TransitionAccepted)
	} else {
		s.metrics.InvitationTransition(TransitionDeclined)
	}
	s.log.Info().Str("invitation_id", inv.ID).Str("user_id", userID).Bool("accepted", accept).Msg("invitación por email respondida")
	return nil
}

// managedOrganization exige permiso de gestión y una empresa cargada.
func (s *Service) managedOrganization(ctx context.Context, caps *access.Capabilities, op string) (*entity.Organization, error) {
	if !caps.CanManageTeam() {
		s.metrics.AccessDenied(op)
		s.log.Debug().Str("user_id", caps.UserID()).Str("op", op).Msg("acceso denegado")
		return nil, domain.ErrUnauthorized
	}
	orgID := caps.OrgID()
	if orgID == "" {
		return nil, domain.Invalid("organization_id", "el usuario no pertenece a una empresa")
	}
	org := caps.Organization()
	if org == nil || org.ID != orgID {
		loaded, err := s.repos.Organizations.GetByID(ctx, orgID)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			return nil, domain.ErrNotFound
		}
		org = loaded
	}
	return org, nil
}

// insertWithinQuota reintenta con otro código si colisiona con uno existente.
func (s *Service) insertWithinQuota(ctx context.Context, invitations repository.InvitationRepository, org *entity.Organization, email *string) (*entity.Invitation, error) {
	now := s.now().UTC()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generar código: %w", err)
		}
		inv := &entity.Invitation{
			ID:             uuid.New().String(),
			OrganizationID: org.ID,
			Code:           code,
			Email:          email,
			Status:         entity.InvitationUnused,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		ok, err := invitations.CreateWithinQuota(ctx, inv, org.EffectiveMemberLimit())
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrQuotaExceeded
		}
		return inv, nil
	}
	return nil, fmt.Errorf("generar código único tras %d intentos: %w", maxCodeAttempts, domain.ErrConflict)
}

// ownNotification una notificación ya descartada se trata como invitación ya procesada.
func (s *Service) ownNotification(ctx context.Context, caps *access.Capabilities, id string, typ entity.NotificationType) (*entity.Notification, error) {
	n, err := s.repos.Notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrAlreadyConsumed
	}
	if n.UserID != caps.UserID() {
		return nil, domain.ErrNotFound
	}
	if n.Type != typ {
		return nil, domain.Invalid("notification", fmt.Sprintf("se esperaba tipo %s", typ))
	}
	return n, nil
}

func (s *Service) notification(userID string, typ entity.NotificationType, title, message string, meta entity.NotificationMetadata) *entity.Notification {
	return &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Metadata:  meta,
		CreatedAt: s.now().UTC(),
	}
}
