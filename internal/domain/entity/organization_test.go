package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

func TestOrganizationRef_AceptaObjetoArregloYNull(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		wantID string
	}{
		{"objeto", `{"id":"org-1","member_limit":5,"subscription_end_date":"2030-01-01T00:00:00+00:00","credits":"12.50"}`, "org-1"},
		{"arreglo", `[{"id":"org-2","member_limit":3,"credits":0}]`, "org-2"},
		{"arreglo vacío", `[]`, ""},
		{"null", `null`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ref entity.OrganizationRef
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &ref))
			if tc.wantID == "" {
				assert.Nil(t, ref.Org)
				return
			}
			require.NotNil(t, ref.Org)
			assert.Equal(t, tc.wantID, ref.Org.ID)
		})
	}
}

func TestOrganizationRef_ConservaFechaYCreditos(t *testing.T) {
	var ref entity.OrganizationRef
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"o","subscription_end_date":"2030-01-01T00:00:00+00:00","credits":"12.50"}]`), &ref))
	require.NotNil(t, ref.Org.SubscriptionEndDate)
	assert.Equal(t, 2030, ref.Org.SubscriptionEndDate.Year())
	assert.Equal(t, "12.5", ref.Org.Credits.String())
}

func TestOrganizationRef_FormaInvalida(t *testing.T) {
	var ref entity.OrganizationRef
	assert.Error(t, json.Unmarshal([]byte(`"org-1"`), &ref))
}

func TestEffectiveMemberLimit(t *testing.T) {
	var nilOrg *entity.Organization
	assert.Equal(t, entity.DefaultMemberLimit, nilOrg.EffectiveMemberLimit())
	assert.Equal(t, entity.DefaultMemberLimit, (&entity.Organization{MemberLimit: 0}).EffectiveMemberLimit())
	assert.Equal(t, 12, (&entity.Organization{MemberLimit: 12}).EffectiveMemberLimit())
}

func TestParseRole_DesconocidoEsNormal(t *testing.T) {
	assert.Equal(t, entity.RoleCorporateChief, entity.ParseRole("corporate_chief"))
	assert.Equal(t, entity.RoleNormal, entity.ParseRole("superuser"))
	assert.Equal(t, entity.RoleNormal, entity.ParseRole(""))
}

func TestPermissions_WithYHas(t *testing.T) {
	var p entity.Permissions
	p, ok := p.With(entity.PermViewTeamDocs, true)
	require.True(t, ok)
	assert.True(t, p.Has(entity.PermViewTeamDocs))
	assert.False(t, p.Has(entity.PermDeleteTeamDocs))

	_, ok = p.With(entity.Permission("can_fly"), true)
	assert.False(t, ok)
}
