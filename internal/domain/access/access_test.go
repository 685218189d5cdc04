package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func profile(id string, role entity.Role, orgID string) *entity.Profile {
	p := &entity.Profile{ID: id, Role: role}
	if orgID != "" {
		p.OrganizationID = ptr(orgID)
	}
	return p
}

func corporateDoc(uploaderID, orgID string) *entity.Document {
	return &entity.Document{ID: "doc-" + uploaderID, UploaderID: uploaderID, OrganizationID: ptr(orgID)}
}

func personalDoc(uploaderID string) *entity.Document {
	return &entity.Document{ID: "doc-" + uploaderID, UploaderID: uploaderID}
}

// ──────────────────────────────────────────────────────────────────────────────
// IsPremium
// ──────────────────────────────────────────────────────────────────────────────

func TestIsPremium_AdminSiempre(t *testing.T) {
	p := profile("a", entity.RoleAdmin, "")
	assert.True(t, access.IsPremium(p, nil, now))
	p.SubscriptionEndDate = ptr(now.Add(-24 * time.Hour))
	assert.True(t, access.IsPremium(p, &entity.Organization{SubscriptionEndDate: ptr(now.Add(-time.Hour))}, now))
}

func TestIsPremium_IndividualFronteraEstricta(t *testing.T) {
	p := profile("u", entity.RolePremiumIndividual, "")

	p.SubscriptionEndDate = ptr(now.Add(-time.Second))
	assert.False(t, access.IsPremium(p, nil, now))

	p.SubscriptionEndDate = ptr(now.Add(time.Second))
	assert.True(t, access.IsPremium(p, nil, now))

	p.SubscriptionEndDate = ptr(now)
	assert.False(t, access.IsPremium(p, nil, now), "en la igualdad exacta ya no es premium")

	p.SubscriptionEndDate = nil
	assert.False(t, access.IsPremium(p, nil, now))
}

func TestIsPremium_CorporativoDependeDeLaEmpresa(t *testing.T) {
	active := &entity.Organization{ID: "o", SubscriptionEndDate: ptr(now.Add(48 * time.Hour))}
	expired := &entity.Organization{ID: "o", SubscriptionEndDate: ptr(now.Add(-48 * time.Hour))}

	for _, role := range []entity.Role{entity.RolePremiumCorporate, entity.RoleCorporateChief, entity.RoleCorporateStaff} {
		p := profile("u", role, "o")
		// La fecha individual no cuenta para roles corporativos.
		p.SubscriptionEndDate = ptr(now.Add(100 * time.Hour))

		assert.True(t, access.IsPremium(p, active, now), role)
		assert.False(t, access.IsPremium(p, expired, now), role)
		assert.False(t, access.IsPremium(p, nil, now), "sin empresa cargada: %s", role)
	}
}

func TestIsPremium_UsaRelacionDelPerfil(t *testing.T) {
	p := profile("u", entity.RoleCorporateStaff, "o")
	p.Organization = &entity.Organization{ID: "o", SubscriptionEndDate: ptr(now.Add(time.Hour))}
	assert.True(t, access.IsPremium(p, nil, now))
}

func TestIsPremium_NormalYNil(t *testing.T) {
	p := profile("u", entity.RoleNormal, "")
	p.SubscriptionEndDate = ptr(now.Add(time.Hour))
	assert.False(t, access.IsPremium(p, nil, now))
	assert.False(t, access.IsPremium(nil, nil, now))
	assert.False(t, access.IsPremium(profile("u", entity.Role("gold"), ""), nil, now))
}

func TestEffectiveReminderDays(t *testing.T) {
	assert.Equal(t, 10, access.EffectiveReminderDays(true, 10))
	assert.Equal(t, 0, access.EffectiveReminderDays(false, 10))
	assert.Equal(t, 0, access.EffectiveReminderDays(true, -3))
}

// ──────────────────────────────────────────────────────────────────────────────
// Visibilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestCanView_DocumentoPersonalSoloCargador(t *testing.T) {
	doc := personalDoc("owner")
	roles := []entity.Role{
		entity.RoleNormal, entity.RolePremiumIndividual, entity.RolePremiumCorporate,
		entity.RoleCorporateChief, entity.RoleCorporateStaff,
	}
	for _, role := range roles {
		assert.True(t, access.CanView(profile("owner", role, "o"), doc), role)
		assert.False(t, access.CanView(profile("other", role, "o"), doc), role)
	}
	// Admin ve todo aunque no sea el cargador.
	assert.True(t, access.CanView(profile("root", entity.RoleAdmin, ""), doc))
}

func TestCanView_JefeSinPermisoNoVeDocumentosDeCompaneros(t *testing.T) {
	chief := profile("chief", entity.RoleCorporateChief, "org-a")
	doc := corporateDoc("colleague", "org-a")

	assert.False(t, access.CanView(chief, doc))

	chief.Permissions.CanViewTeamDocs = true
	assert.True(t, access.CanView(chief, doc))
}

func TestCanView_PropietarioVeDocumentosDeSuEmpresa(t *testing.T) {
	owner := profile("owner", entity.RolePremiumCorporate, "org-a")
	assert.True(t, access.CanView(owner, corporateDoc("staff", "org-a")))
	assert.False(t, access.CanView(owner, corporateDoc("staff", "org-b")), "otra empresa")
}

func TestCanView_PersonalNoVeDocumentosDelEquipo(t *testing.T) {
	staff := profile("staff", entity.RoleCorporateStaff, "org-a")
	staff.Permissions.CanViewTeamDocs = true // sin efecto fuera de corporate_chief
	assert.False(t, access.CanView(staff, corporateDoc("colleague", "org-a")))
	assert.True(t, access.CanView(staff, corporateDoc("staff", "org-a")))
}

func TestCanView_SalirDeLaEmpresa(t *testing.T) {
	doc := corporateDoc("uploader", "org-a")

	// El cargador sale: su documento sigue en org-a pero lo sigue viendo por ser el cargador.
	uploader := profile("uploader", entity.RoleNormal, "")
	assert.True(t, access.CanView(uploader, doc))

	// Un jefe autorizado lo veía mientras era miembro...
	chief := profile("chief", entity.RoleCorporateChief, "org-a")
	chief.Permissions.CanViewTeamDocs = true
	assert.True(t, access.CanView(chief, doc))

	// ...y lo pierde al salir, aunque conserve rol y permisos por inconsistencia de datos.
	chief.OrganizationID = nil
	assert.False(t, access.CanView(chief, doc))

	chief.OrganizationID = ptr("org-b")
	assert.False(t, access.CanView(chief, doc))
}

func TestCanView_EntradasNil(t *testing.T) {
	assert.False(t, access.CanView(nil, personalDoc("x")))
	assert.False(t, access.CanView(profile("x", entity.RoleNormal, ""), nil))
	assert.False(t, access.CanView(profile("", entity.RoleNormal, ""), personalDoc("")), "sin identidad no coincide con cargador vacío")
}

func TestVisibilityPredicate_FiltraSobreFetch(t *testing.T) {
	chief := profile("chief", entity.RoleCorporateChief, "org-a")
	docs := []*entity.Document{
		corporateDoc("chief", "org-a"),
		corporateDoc("colleague", "org-a"), // lo traería organization_id = org-a
		personalDoc("chief"),
		nil,
	}
	got := access.VisibilityPredicate(chief).Apply(docs)
	assert.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, "chief", d.UploaderID)
	}

	admin := profile("root", entity.RoleAdmin, "")
	assert.Len(t, access.VisibilityPredicate(admin).Apply(docs), 3)
}

func TestDocumentFilter(t *testing.T) {
	assert.True(t, access.DocumentFilter(profile("root", entity.RoleAdmin, "")).All)

	owner := access.DocumentFilter(profile("owner", entity.RolePremiumCorporate, "org-a"))
	assert.Equal(t, entity.DocumentFilter{UploaderID: "owner", OrganizationID: "org-a"}, owner)

	chief := profile("chief", entity.RoleCorporateChief, "org-a")
	assert.Equal(t, entity.DocumentFilter{UploaderID: "chief"}, access.DocumentFilter(chief))
	chief.Permissions.CanViewTeamDocs = true
	assert.Equal(t, "org-a", access.DocumentFilter(chief).OrganizationID)

	// Propietario con datos inconsistentes (sin empresa): solo lo suyo.
	orphan := access.DocumentFilter(profile("o", entity.RolePremiumCorporate, ""))
	assert.Equal(t, entity.DocumentFilter{UploaderID: "o"}, orphan)

	anon := access.DocumentFilter(nil)
	assert.False(t, anon.All)
	assert.NotEmpty(t, anon.UploaderID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutación
// ──────────────────────────────────────────────────────────────────────────────

func TestCanMutateDocument(t *testing.T) {
	doc := corporateDoc("staff", "org-a")

	chief := func(edit, del bool) *entity.Profile {
		p := profile("chief", entity.RoleCorporateChief, "org-a")
		p.Permissions = entity.Permissions{CanEditTeamDocs: edit, CanDeleteTeamDocs: del}
		return p
	}

	cases := []struct {
		name  string
		actor *entity.Profile
		doc   *entity.Document
		op    access.Operation
		want  bool
	}{
		{"admin borra cualquiera", profile("root", entity.RoleAdmin, ""), personalDoc("x"), access.OpDelete, true},
		{"cargador borra lo suyo", profile("staff", entity.RoleCorporateStaff, "org-a"), doc, access.OpDelete, true},
		{"cargador fuera de la empresa", profile("staff", entity.RoleNormal, ""), doc, access.OpEdit, true},
		{"propietario edita", profile("owner", entity.RolePremiumCorporate, "org-a"), doc, access.OpEdit, true},
		{"propietario borra", profile("owner", entity.RolePremiumCorporate, "org-a"), doc, access.OpDelete, true},
		{"propietario de otra empresa", profile("owner", entity.RolePremiumCorporate, "org-b"), doc, access.OpEdit, false},
		{"propietario y documento personal ajeno", profile("owner", entity.RolePremiumCorporate, "org-a"), personalDoc("staff"), access.OpEdit, false},
		{"jefe sin permisos", chief(false, false), doc, access.OpEdit, false},
		{"jefe con edición edita", chief(true, false), doc, access.OpEdit, true},
		{"jefe con edición renueva", chief(true, false), doc, access.OpRenew, true},
		{"jefe con edición no borra", chief(true, false), doc, access.OpDelete, false},
		{"jefe con edición y borrado borra", chief(true, true), doc, access.OpDelete, true},
		{"jefe solo con borrado no borra", chief(false, true), doc, access.OpDelete, false},
		{"personal no edita ajeno", profile("other", entity.RoleCorporateStaff, "org-a"), doc, access.OpEdit, false},
		{"nil", nil, doc, access.OpEdit, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.CanMutateDocument(tc.actor, tc.doc, tc.op))
		})
	}
}

func TestCanUploadCorporate(t *testing.T) {
	assert.True(t, access.CanUploadCorporate(profile("o", entity.RolePremiumCorporate, "org"), true))
	assert.False(t, access.CanUploadCorporate(profile("o", entity.RolePremiumCorporate, "org"), false))
	assert.False(t, access.CanUploadCorporate(profile("o", entity.RolePremiumIndividual, ""), true))
	assert.True(t, access.CanUploadCorporate(profile("root", entity.RoleAdmin, "org"), false))
}

// ──────────────────────────────────────────────────────────────────────────────
// Equipo y chat
// ──────────────────────────────────────────────────────────────────────────────

func TestCanManageTeam(t *testing.T) {
	assert.True(t, access.CanManageTeam(profile("o", entity.RolePremiumCorporate, "org")))
	assert.True(t, access.CanManageTeam(profile("root", entity.RoleAdmin, "")))
	assert.False(t, access.CanManageTeam(profile("s", entity.RoleCorporateStaff, "org")))
	assert.False(t, access.CanManageTeam(nil))

	chief := profile("c", entity.RoleCorporateChief, "org")
	assert.False(t, access.CanManageTeam(chief))
	chief.Permissions.CanInvite = true
	assert.True(t, access.CanManageTeam(chief))
}

func TestCanRemoveMember(t *testing.T) {
	assert.True(t, access.CanRemoveMember(profile("o", entity.RolePremiumCorporate, "org"), "org"))
	assert.False(t, access.CanRemoveMember(profile("o", entity.RolePremiumCorporate, "org"), "other"))
	assert.True(t, access.CanRemoveMember(profile("root", entity.RoleAdmin, ""), "org"))
	chief := profile("c", entity.RoleCorporateChief, "org")
	chief.Permissions.CanInvite = true
	assert.False(t, access.CanRemoveMember(chief, "org"))
}

func TestCanSeeForwardedDocument(t *testing.T) {
	assert.True(t, access.CanSeeForwardedDocument(entity.RoleCorporateStaff, true, false), "mensaje propio")
	assert.True(t, access.CanSeeForwardedDocument(entity.RoleCorporateStaff, false, true), "canal directo")
	assert.False(t, access.CanSeeForwardedDocument(entity.RoleCorporateStaff, false, false), "canal general")
	for _, r := range []entity.Role{entity.RoleAdmin, entity.RolePremiumCorporate, entity.RoleCorporateChief} {
		assert.True(t, access.CanSeeForwardedDocument(r, false, false), r)
	}
}

func TestCapabilities_InstantaneaDeSesion(t *testing.T) {
	p := profile("owner", entity.RolePremiumCorporate, "org-a")
	org := &entity.Organization{ID: "org-a", SubscriptionEndDate: ptr(now.Add(time.Hour))}

	caps := access.New(p, org, now)
	assert.True(t, caps.IsPremium())
	assert.True(t, caps.IsOwner())
	assert.True(t, caps.CanUploadCorporate())
	assert.Equal(t, 7, caps.ReminderDays(7))
	assert.Equal(t, "org-a", caps.OrgID())
	assert.Same(t, org, caps.Organization())

	// Mutar el perfil original no altera la instantánea.
	p.Role = entity.RoleCorporateStaff
	assert.Equal(t, entity.RolePremiumCorporate, caps.Role())

	anon := access.New(nil, nil, now)
	assert.False(t, anon.IsPremium())
	assert.False(t, anon.CanView(personalDoc("")))
	assert.Equal(t, entity.RoleNormal, anon.Role())
}
