package invitation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	repos repository.Repositories
	svc   *invitation.Service
	org   *entity.Organization
}

func newFixture(t *testing.T, memberLimit int) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	end := time.Now().Add(30 * 24 * time.Hour)
	org := &entity.Organization{ID: "org-1", Name: "Acme", MemberLimit: memberLimit, SubscriptionEndDate: &end}
	require.NoError(t, repos.Organizations.Create(context.Background(), org))

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store,
		repos: repos,
		svc:   invitation.NewService(repos, store, nil, nil, zerolog.Nop()),
		org:   org,
	}
	f.addProfile("owner", "owner@acme.test", entity.RolePremiumCorporate, org.ID)
	return f
}

func (f *fixture) addProfile(id, email string, role entity.Role, orgID string) {
	f.t.Helper()
	p := &entity.Profile{ID: id, Email: email, FullName: id, Role: role, CreatedAt: time.Now()}
	if orgID != "" {
		p.OrganizationID = &orgID
	}
	require.NoError(f.t, f.repos.Profiles.Create(f.ctx, p))
}

// caps relee el perfil como lo haría una sesión nueva.
func (f *fixture) caps(id string) *access.Capabilities {
	f.t.Helper()
	p, err := f.repos.Profiles.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, p)
	return access.New(p, p.Organization, time.Now())
}

func (f *fixture) notifications(userID string) []*entity.Notification {
	f.t.Helper()
	list, err := f.repos.Notifications.ListByUser(f.ctx, userID)
	require.NoError(f.t, err)
	return list
}

// requestJoin crea código y solicitud; devuelve la notificación del dueño.
func (f *fixture) requestJoin(requester string) *entity.Notification {
	f.t.Helper()
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(f.t, err)
	n, err := f.svc.RequestJoin(f.ctx, f.caps(requester), " "+inv.Code+" ")
	require.NoError(f.t, err)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateCode / cupo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateCode_FormatoDelCodigo(t *testing.T) {
	f := newFixture(t, 5)
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-Z]{6}$`, inv.Code)
	assert.Equal(t, entity.InvitationUnused, inv.Status)
	assert.Nil(t, inv.Email)
}

func TestCreateCode_LimiteDeCupo(t *testing.T) {
	f := newFixture(t, 3)
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	_, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err, "1 miembro + 1 invitación < 3")

	// 1 + 1 = 2, uno por debajo del límite: todavía entra
	_, err = f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)

	// 1 + 2 = 3 == límite
	_, err = f.svc.CreateCode(f.ctx, f.caps("owner"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestCreateCode_EscenarioA(t *testing.T) {
	f := newFixture(t, 5)
	for i := 1; i <= 3; i++ {
		f.addProfile(fmt.Sprintf("staff-%d", i), fmt.Sprintf("s%d@acme.test", i), entity.RoleCorporateStaff, f.org.ID)
	}
	first, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	_, err = f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)

	_, err = f.svc.CreateCode(f.ctx, f.caps("owner"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	require.NoError(t, f.svc.CancelInvitation(f.ctx, f.caps("owner"), first.ID))
	_, err = f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)

	usage, err := f.svc.Usage(f.ctx, f.org)
	require.NoError(t, err)
	assert.Equal(t, 5, usage.Used())
	assert.Equal(t, 5, usage.Limit)
}

func TestCreateCode_LimiteInvalidoUsaCincoPorDefecto(t *testing.T) {
	f := newFixture(t, 0)
	for i := 0; i < entity.DefaultMemberLimit; i++ {
		_, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
		require.NoError(t, err)
	}
	_, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestCreateCode_ReintentaAnteColision(t *testing.T) {
	f := newFixture(t, 5)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	f.svc.WithCodeGenerator(func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	})
	first, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	second, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code)
	assert.Equal(t, "BBBBBB", second.Code)
}

func TestCreateCode_SinPermiso(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	f.addProfile("chief-1", "c1@acme.test", entity.RoleCorporateChief, f.org.ID)

	_, err := f.svc.CreateCode(f.ctx, f.caps("staff-1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.CreateCode(f.ctx, f.caps("chief-1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "jefe sin can_invite")

	ok, err := f.repos.Profiles.UpdatePermissions(f.ctx, "chief-1", f.org.ID, entity.Permissions{CanInvite: true})
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.svc.CreateCode(f.ctx, f.caps("chief-1"))
	assert.NoError(t, err)
}

func TestCreateCode_CupoConcurrente(t *testing.T) {
	f := newFixture(t, 3)
	caps := f.caps("owner")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		exceeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateCode(f.ctx, caps)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, domain.ErrQuotaExceeded) {
				exceeded++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, created)
	assert.Equal(t, 7, exceeded)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequestJoin / ApproveJoin / RejectJoin
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestJoin_NotificaAlDueno(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")

	n := f.requestJoin("ali")
	assert.Equal(t, "owner", n.UserID)
	assert.Equal(t, entity.NotificationJoinRequest, n.Type)
	assert.Equal(t, "ali", n.Metadata.RequesterID)
	assert.NotEmpty(t, n.Metadata.InvitationID)

	inv, err := f.repos.Invitations.GetByID(f.ctx, n.Metadata.InvitationID)
	require.NoError(t, err)
	assert.False(t, inv.IsUsed(), "la solicitud no consume la invitación")
}

func TestRequestJoin_EscenarioC_CodigoUsado(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelInvitation(f.ctx, f.caps("owner"), inv.ID))

	_, err = f.svc.RequestJoin(f.ctx, f.caps("ali"), inv.Code)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	assert.Empty(t, f.notifications("owner"))
}

func TestRequestJoin_CodigoUsadoPorMiembroEsInvalido(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelInvitation(f.ctx, f.caps("owner"), inv.ID))

	_, err = f.svc.RequestJoin(f.ctx, f.caps("staff-1"), inv.Code)
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.notifications("owner"))
}

func TestRequestJoin_Errores(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)

	_, err := f.svc.RequestJoin(f.ctx, f.caps("ali"), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
	_, err = f.svc.RequestJoin(f.ctx, f.caps("ali"), "ZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(f.ctx, f.caps("staff-1"), inv.Code)
	assert.ErrorIs(t, err, domain.ErrConflict, "ya pertenece a una empresa")
}

func TestRequestJoin_SinDueno(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)
	ok, err := f.repos.Profiles.Detach(f.ctx, "owner", f.org.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.RequestJoin(f.ctx, f.caps("ali"), inv.Code)
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
}

func TestApproveJoin_UneComoPersonal(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	n := f.requestJoin("ali")

	require.NoError(t, f.svc.ApproveJoin(f.ctx, f.caps("owner"), n.ID))

	ali := f.caps("ali")
	assert.Equal(t, f.org.ID, ali.OrgID())
	assert.Equal(t, entity.RoleCorporateStaff, ali.Role())

	inv, err := f.repos.Invitations.GetByID(f.ctx, n.Metadata.InvitationID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationAccepted, inv.Status)
	assert.Equal(t, "ali", *inv.UsedBy)

	assert.Empty(t, f.notifications("owner"), "la solicitud se descarta")
	replies := f.notifications("ali")
	require.Len(t, replies, 1)
	assert.Equal(t, entity.NotificationJoinApproved, replies[0].Type)
}

func TestApproveJoin_DobleInvocacion(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	n := f.requestJoin("ali")

	require.NoError(t, f.svc.ApproveJoin(f.ctx, f.caps("owner"), n.ID))
	err := f.svc.ApproveJoin(f.ctx, f.caps("owner"), n.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)

	assert.Len(t, f.notifications("ali"), 1, "un solo aviso de éxito")
	members, err := f.repos.Profiles.CountNonOwnerMembers(f.ctx, f.org.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, members)
}

func TestApproveJoin_Concurrente(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	n := f.requestJoin("ali")
	caps := f.caps("owner")

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.ApproveJoin(f.ctx, caps, n.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyConsumed)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.notifications("ali"), 1)
}

func TestApproveJoin_SolicitanteYaEnOtraEmpresa(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	n := f.requestJoin("ali")

	// mientras tanto ali se une a otra empresa
	joined, err := f.repos.Profiles.JoinOrganization(f.ctx, "ali", "org-2", entity.RoleCorporateStaff)
	require.NoError(t, err)
	require.True(t, joined)

	err = f.svc.ApproveJoin(f.ctx, f.caps("owner"), n.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	inv, err := f.repos.Invitations.GetByID(f.ctx, n.Metadata.InvitationID)
	require.NoError(t, err)
	assert.False(t, inv.IsUsed(), "la transacción se revierte completa")
	assert.Len(t, f.notifications("owner"), 1)
	assert.Empty(t, f.notifications("ali"))
}

func TestApproveJoin_SoloGestores(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	n := f.requestJoin("ali")

	err := f.svc.ApproveJoin(f.ctx, f.caps("staff-1"), n.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRejectJoin(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ali", "ali@mail.test", entity.RoleNormal, "")
	n := f.requestJoin("ali")

	require.NoError(t, f.svc.RejectJoin(f.ctx, f.caps("owner"), n.ID))
	assert.ErrorIs(t, f.svc.RejectJoin(f.ctx, f.caps("owner"), n.ID), domain.ErrAlreadyConsumed)

	ali := f.caps("ali")
	assert.Empty(t, ali.OrgID())
	inv, err := f.repos.Invitations.GetByID(f.ctx, n.Metadata.InvitationID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationRejected, inv.Status)

	replies := f.notifications("ali")
	require.Len(t, replies, 1)
	assert.Equal(t, entity.NotificationJoinRejected, replies[0].Type)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invitación por email
// ──────────────────────────────────────────────────────────────────────────────

func TestSendEmailInvite_NotificaAlDestinatario(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")

	inv, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "  Ayse@Mail.test ")
	require.NoError(t, err)
	require.NotNil(t, inv.Email)
	assert.Equal(t, "ayse@mail.test", *inv.Email)

	list := f.notifications("ayse")
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationInvite, list[0].Type)
	assert.Equal(t, inv.Code, list[0].Metadata.InviteCode)
	assert.Equal(t, "Acme", list[0].Metadata.OrgName)
}

func TestSendEmailInvite_Errores(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	f.addProfile("other", "other@mail.test", entity.RoleCorporateStaff, "org-2")

	_, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "no-es-un-email")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "nadie@mail.test")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "s1@acme.test")
	assert.ErrorIs(t, err, domain.ErrDuplicateInvite, "ya es miembro")

	_, err = f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "other@mail.test")
	assert.ErrorIs(t, err, domain.ErrDuplicateInvite, "miembro de otra empresa")
	assert.Empty(t, f.notifications("other"))

	_, err = f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "ayse@mail.test")
	require.NoError(t, err)
	_, err = f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "AYSE@mail.test")
	assert.ErrorIs(t, err, domain.ErrDuplicateInvite)
}

func TestSendEmailInvite_CupoAgotadoNoNotifica(t *testing.T) {
	f := newFixture(t, 1)
	f.addProfile("staff-1", "s1@acme.test", entity.RoleCorporateStaff, f.org.ID)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")

	_, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "ayse@mail.test")
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Empty(t, f.notifications("ayse"))
}

func TestAcceptEmailInvite(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")
	_, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "ayse@mail.test")
	require.NoError(t, err)
	n := f.notifications("ayse")[0]

	require.NoError(t, f.svc.AcceptEmailInvite(f.ctx, f.caps("ayse"), n.ID))
	ayse := f.caps("ayse")
	assert.Equal(t, f.org.ID, ayse.OrgID())
	assert.Equal(t, entity.RoleCorporateStaff, ayse.Role())
	assert.Empty(t, f.notifications("ayse"))

	assert.ErrorIs(t, f.svc.AcceptEmailInvite(f.ctx, f.caps("ayse"), n.ID), domain.ErrAlreadyConsumed)
}

func TestDeclineEmailInvite(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")
	inv, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "ayse@mail.test")
	require.NoError(t, err)
	n := f.notifications("ayse")[0]

	require.NoError(t, f.svc.DeclineEmailInvite(f.ctx, f.caps("ayse"), n.ID))
	assert.Empty(t, f.caps("ayse").OrgID())

	stored, err := f.repos.Invitations.GetByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationRejected, stored.Status)
}

func TestAcceptEmailInvite_NotificacionAjena(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("ayse", "ayse@mail.test", entity.RoleNormal, "")
	f.addProfile("mehmet", "mehmet@mail.test", entity.RoleNormal, "")
	_, err := f.svc.SendEmailInvite(f.ctx, f.caps("owner"), "ayse@mail.test")
	require.NoError(t, err)
	n := f.notifications("ayse")[0]

	assert.ErrorIs(t, f.svc.AcceptEmailInvite(f.ctx, f.caps("mehmet"), n.ID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelInvitation
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelInvitation(t *testing.T) {
	f := newFixture(t, 5)
	f.addProfile("stranger", "x@other.test", entity.RolePremiumCorporate, "org-2")
	inv, err := f.svc.CreateCode(f.ctx, f.caps("owner"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CancelInvitation(f.ctx, f.caps("stranger"), inv.ID), domain.ErrNotFound)
	require.NoError(t, f.svc.CancelInvitation(f.ctx, f.caps("owner"), inv.ID))
	assert.ErrorIs(t, f.svc.CancelInvitation(f.ctx, f.caps("owner"), inv.ID), domain.ErrAlreadyConsumed)

	stored, err := f.repos.Invitations.GetByID(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvitationCancelled, stored.Status)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12CD", invitation.NormalizeCode("  ab12cd\n"))
}
