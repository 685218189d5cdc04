package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/application/session"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/cache"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/memory"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/realtime"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	repos    repository.Repositories
	feed     *realtime.LocalFeed
	sessions *session.Service
	ev       *events.Emitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	feed := realtime.NewLocalFeed()
	sessions := session.NewService(repos.Profiles, cache.NewProfileCache(64, time.Minute), zerolog.Nop())
	f := &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		repos:    repos,
		feed:     feed,
		sessions: sessions,
		ev:       events.NewEmitter(feed, sessions, zerolog.Nop()),
	}
	end := time.Now().Add(60 * 24 * time.Hour)
	require.NoError(t, repos.Organizations.Create(f.ctx, &entity.Organization{ID: "org-1", Name: "Acme", SubscriptionEndDate: &end}))
	f.addProfile("owner", entity.RolePremiumCorporate, "org-1")
	f.addProfile("chief", entity.RoleCorporateChief, "org-1")
	f.addProfile("staff", entity.RoleCorporateStaff, "org-1")
	f.addProfile("solo", entity.RoleNormal, "")
	f.addProfile("admin", entity.RoleAdmin, "")
	return f
}

func (f *fixture) addProfile(id string, role entity.Role, orgID string) {
	f.t.Helper()
	p := &entity.Profile{ID: id, Email: id + "@mail.test", FullName: id, Role: role, CreatedAt: time.Now()}
	if orgID != "" {
		p.OrganizationID = &orgID
	}
	require.NoError(f.t, f.repos.Profiles.Create(f.ctx, p))
}

func (f *fixture) caps(id string) *access.Capabilities {
	f.t.Helper()
	c, err := f.sessions.Load(f.ctx, id)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) addDocument(id, uploader, orgID string) {
	f.t.Helper()
	d := &entity.Document{ID: id, UploaderID: uploader, TypeDefID: "t", Title: "Doc " + id, CreatedAt: time.Now()}
	if orgID != "" {
		d.OrganizationID = &orgID
	}
	require.NoError(f.t, f.repos.Documents.Create(f.ctx, d))
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestNotifications_SoloPropias(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewNotificationUseCase(f.repos.Notifications, zerolog.Nop())
	for i, user := range []string{"staff", "staff", "chief"} {
		require.NoError(t, f.repos.Notifications.Create(f.ctx, &entity.Notification{
			ID: "n" + string(rune('1'+i)), UserID: user, Title: "x", Type: entity.NotificationInfo,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	list, unread, err := uc.List(f.ctx, f.caps("staff"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID, "más recientes primero")
	assert.Equal(t, 2, unread)

	assert.ErrorIs(t, uc.MarkRead(f.ctx, f.caps("staff"), "n3"), domain.ErrNotFound, "ajena")
	require.NoError(t, uc.MarkRead(f.ctx, f.caps("staff"), "n1"))
	_, unread, err = uc.List(f.ctx, f.caps("staff"))
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, uc.MarkAllRead(f.ctx, f.caps("staff")))
	_, unread, err = uc.List(f.ctx, f.caps("staff"))
	require.NoError(t, err)
	assert.Zero(t, unread)

	assert.ErrorIs(t, uc.Delete(f.ctx, f.caps("staff"), "n3"), domain.ErrNotFound)
	require.NoError(t, uc.Delete(f.ctx, f.caps("staff"), "n1"))
	list, _, err = uc.List(f.ctx, f.caps("staff"))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Chat
// ──────────────────────────────────────────────────────────────────────────────

func TestChat_ReenvioYOcultacion(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewChatUseCase(f.repos, f.ev, nil, zerolog.Nop())
	f.addDocument("doc-1", "owner", "org-1")

	var seen []ports.Change
	stop, err := f.feed.Subscribe(f.ctx, ports.TableCompanyMessages, ports.Filter{}, func(c ports.Change) { seen = append(seen, c) })
	require.NoError(t, err)
	defer stop()

	m, err := uc.Forward(f.ctx, f.caps("owner"), usecase.ForwardInput{DocumentID: "doc-1"})
	require.NoError(t, err)
	assert.Equal(t, "Doc doc-1", m.Message, "sin texto se usa el título")
	require.Len(t, seen, 1)

	_, err = uc.Forward(f.ctx, f.caps("owner"), usecase.ForwardInput{DocumentID: "doc-1", ReceiverID: ptr("staff"), Message: "mira"})
	require.NoError(t, err)

	general, err := uc.Messages(f.ctx, f.caps("staff"), "", 0)
	require.NoError(t, err)
	require.Len(t, general, 1)
	assert.True(t, general[0].DocumentHidden, "el personal no abre reenvíos del canal general")
	assert.Nil(t, general[0].DocumentID)

	general, err = uc.Messages(f.ctx, f.caps("chief"), "", 0)
	require.NoError(t, err)
	require.Len(t, general, 1)
	assert.False(t, general[0].DocumentHidden)

	direct, err := uc.Messages(f.ctx, f.caps("staff"), "owner", 0)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.False(t, direct[0].DocumentHidden, "el canal directo siempre muestra el enlace")
	assert.Equal(t, "doc-1", *direct[0].DocumentID)
}

func TestChat_ReenvioRequiereVisibilidad(t *testing.T) {
	f := newFixture(t)
	uc := usecase.NewChatUseCase(f.repos, f.ev, nil, zerolog.Nop())
	f.addDocument("doc-owner", "owner", "org-1")
	f.addDocument("doc-solo", "solo", "")
	f.addDocument("doc-personal", "staff", "")

	_, err := uc.Forward(f.ctx, f.caps("staff"), usecase.ForwardInput{DocumentID: "doc-owner"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "el personal no ve documentos ajenos")

	_, err = uc.Forward(f.ctx, f.caps("staff"), usecase.ForwardInput{DocumentID: "doc-personal"})
	assert.ErrorIs(t, err, domain.ErrValidation, "documento personal")

	_, err = uc.Forward(f.ctx, f.caps("solo"), usecase.ForwardInput{DocumentID: "doc-solo"})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin empresa")

	_, err = uc.Forward(f.ctx, f.caps("owner"), usecase.ForwardInput{DocumentID: "doc-owner", ReceiverID: ptr("solo")})
	assert.ErrorIs(t, err, domain.ErrNotFound, "receptor de otra empresa")

	_, err = uc.Forward(f.ctx, f.caps("owner"), usecase.ForwardInput{DocumentID: "doc-owner", ReceiverID: ptr("owner")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración
// ──────────────────────────────────────────────────────────────────────────────

func newAdmin(f *fixture) *usecase.AdminUseCase {
	return usecase.NewAdminUseCase(f.repos, f.store, f.ev, nil, zerolog.Nop())
}

func TestAdmin_SoloAdministrador(t *testing.T) {
	f := newFixture(t)
	uc := newAdmin(f)
	_, err := uc.ProvisionCorporatePlan(f.ctx, f.caps("owner"), usecase.CorporatePlanInput{OwnerID: "solo", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, uc.DeleteOrganization(f.ctx, f.caps("owner"), "org-1"), domain.ErrUnauthorized)
	_, err = uc.Organizations(f.ctx, f.caps("chief"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdmin_ProvisionCorporatePlan(t *testing.T) {
	f := newFixture(t)
	uc := newAdmin(f)
	assert.False(t, f.caps("solo").IsPremium())

	end := time.Now().Add(30 * 24 * time.Hour)
	org, err := uc.ProvisionCorporatePlan(f.ctx, f.caps("admin"), usecase.CorporatePlanInput{
		OwnerID: "solo", Name: " Beta ", SubscriptionEndDate: &end, Credits: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "Beta", org.Name)
	assert.Equal(t, entity.DefaultMemberLimit, org.MemberLimit)

	owner := f.caps("solo")
	assert.Equal(t, entity.RolePremiumCorporate, owner.Role())
	assert.Equal(t, org.ID, owner.OrgID())
	assert.True(t, owner.IsPremium(), "la sesión cacheada se invalidó")

	_, err = uc.ProvisionCorporatePlan(f.ctx, f.caps("admin"), usecase.CorporatePlanInput{OwnerID: "staff", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.ProvisionCorporatePlan(f.ctx, f.caps("admin"), usecase.CorporatePlanInput{OwnerID: "nadie", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAdmin_UpdateOrganizationInvalidaSesiones(t *testing.T) {
	f := newFixture(t)
	uc := newAdmin(f)
	require.True(t, f.caps("staff").IsPremium())

	past := time.Now().Add(-time.Hour)
	org, err := uc.UpdateOrganization(f.ctx, f.caps("admin"), "org-1", usecase.OrganizationPatch{
		SubscriptionEndDate: &past, MemberLimit: ptr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, org.MemberLimit)
	assert.False(t, f.caps("staff").IsPremium(), "la suscripción vencida se ve de inmediato")

	_, err = uc.UpdateOrganization(f.ctx, f.caps("admin"), "org-1", usecase.OrganizationPatch{MemberLimit: ptr(0)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.UpdateOrganization(f.ctx, f.caps("admin"), "org-x", usecase.OrganizationPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdmin_DeleteOrganization(t *testing.T) {
	f := newFixture(t)
	uc := newAdmin(f)
	f.addDocument("doc-1", "staff", "org-1")
	ok, err := f.repos.Invitations.CreateWithinQuota(f.ctx, &entity.Invitation{ID: "inv-1", OrganizationID: "org-1", Code: "ABC123", Status: entity.InvitationUnused}, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "org-1", f.caps("staff").OrgID())

	require.NoError(t, uc.DeleteOrganization(f.ctx, f.caps("admin"), "org-1"))

	for _, id := range []string{"owner", "chief", "staff"} {
		c := f.caps(id)
		assert.Empty(t, c.OrgID(), id)
		assert.Equal(t, entity.RoleNormal, c.Role(), id)
	}
	inv, err := f.repos.Invitations.GetByID(f.ctx, "inv-1")
	require.NoError(t, err)
	assert.Nil(t, inv)
	org, err := f.repos.Organizations.GetByID(f.ctx, "org-1")
	require.NoError(t, err)
	assert.Nil(t, org)

	doc, err := f.repos.Documents.GetByID(f.ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, doc.IsCorporate(), "el documento pasa a ser personal")
	assert.True(t, f.caps("staff").CanView(doc))

	assert.ErrorIs(t, uc.DeleteOrganization(f.ctx, f.caps("admin"), "org-1"), domain.ErrNotFound)
}

func TestAdmin_Announce(t *testing.T) {
	f := newFixture(t)
	uc := newAdmin(f)

	sent, err := uc.Announce(f.ctx, f.caps("admin"), usecase.AnnouncementInput{Title: "Mantenimiento", Message: "Esta noche"})
	require.NoError(t, err)
	assert.Equal(t, 5, sent)
	list, err := f.repos.Notifications.ListByUser(f.ctx, "staff")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.NotificationAnnouncement, list[0].Type)

	sent, err = uc.Announce(f.ctx, f.caps("admin"), usecase.AnnouncementInput{UserID: "solo", Title: "Hola", Message: "Directo"})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	list, err = f.repos.Notifications.ListByUser(f.ctx, "solo")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = uc.Announce(f.ctx, f.caps("admin"), usecase.AnnouncementInput{Title: " ", Message: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
