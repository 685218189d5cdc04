package access

import (
	"time"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// Capabilities instantánea de lo que un actor puede hacer, construida una vez por sesión/petición
// y pasada explícitamente a cada caso de uso.
type Capabilities struct {
	profile entity.Profile
	premium bool
	now     time.Time
}

// New construye las capacidades. p == nil produce un actor anónimo sin privilegios.
func New(p *entity.Profile, org *entity.Organization, now time.Time) *Capabilities {
	c := &Capabilities{now: now, premium: IsPremium(p, org, now)}
	if p != nil {
		c.profile = *p
		c.profile.Role = p.RoleOrNormal()
		if org != nil {
			c.profile.Organization = org
		}
	} else {
		c.profile.Role = entity.RoleNormal
	}
	return c
}

func (c *Capabilities) p() *entity.Profile { return &c.profile }

// Profile devuelve una copia del perfil de la sesión.
func (c *Capabilities) Profile() entity.Profile { return c.profile }

func (c *Capabilities) UserID() string      { return c.profile.ID }
func (c *Capabilities) Role() entity.Role   { return c.profile.Role }
func (c *Capabilities) OrgID() string       { return c.p().OrgID() }
func (c *Capabilities) Now() time.Time      { return c.now }
func (c *Capabilities) IsPremium() bool     { return c.premium }
func (c *Capabilities) IsAdmin() bool       { return c.profile.Role == entity.RoleAdmin }
func (c *Capabilities) IsOwner() bool       { return IsOrganizationOwner(c.p()) }
func (c *Capabilities) CanManageTeam() bool { return CanManageTeam(c.p()) }

// Organization relación de empresa cargada con el perfil (puede ser nil).
func (c *Capabilities) Organization() *entity.Organization { return c.profile.Organization }

func (c *Capabilities) CanView(d *entity.Document) bool { return CanView(c.p(), d) }

func (c *Capabilities) CanMutate(d *entity.Document, op Operation) bool {
	return CanMutateDocument(c.p(), d, op)
}

func (c *Capabilities) CanRemoveMember(orgID string) bool { return CanRemoveMember(c.p(), orgID) }

func (c *Capabilities) Visibility() Predicate { return VisibilityPredicate(c.p()) }

func (c *Capabilities) DocumentFilter() entity.DocumentFilter { return DocumentFilter(c.p()) }

func (c *Capabilities) CanUploadCorporate() bool { return CanUploadCorporate(c.p(), c.premium) }

func (c *Capabilities) ReminderDays(requested int) int {
	return EffectiveReminderDays(c.premium, requested)
}

func (c *Capabilities) CanSeeForwarded(m *entity.CompanyMessage) bool {
	if m == nil {
		return false
	}
	return CanSeeForwardedDocument(c.profile.Role, m.SenderID == c.profile.ID, m.IsDirect())
}
