// Package memory adaptadores en memoria de todos los puertos de persistencia.
// Respaldan STORAGE_DRIVER=memory y las pruebas de casos de uso y HTTP.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

var (
	_ repository.ProfileRepository      = (*profileRepo)(nil)
	_ repository.OrganizationRepository = (*organizationRepo)(nil)
	_ repository.DocumentRepository     = (*documentRepo)(nil)
	_ repository.InvitationRepository   = (*invitationRepo)(nil)
	_ repository.NotificationRepository = (*notificationRepo)(nil)
	_ repository.MessageRepository      = (*messageRepo)(nil)
	_ repository.UserRepository         = (*userRepo)(nil)
	_ repository.DefinitionRepository   = (*definitionRepo)(nil)
)

// Store estado compartido protegido por mu. txMu serializa las transacciones de Run
// frente a cualquier otra escritura.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	profiles      map[string]entity.Profile
	organizations map[string]entity.Organization
	documents     map[string]entity.Document
	invitations   map[string]entity.Invitation
	notifications map[string]entity.Notification
	messages      map[string]entity.CompanyMessage
	users         map[string]entity.User
	definitions   map[string]entity.Definition
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		profiles:      map[string]entity.Profile{},
		organizations: map[string]entity.Organization{},
		documents:     map[string]entity.Document{},
		invitations:   map[string]entity.Invitation{},
		notifications: map[string]entity.Notification{},
		messages:      map[string]entity.CompanyMessage{},
		users:         map[string]entity.User{},
		definitions:   map[string]entity.Definition{},
	}
}

// Repositories devuelve los adaptadores sobre este almacén.
func (s *Store) Repositories() repository.Repositories { return s.repositories(false) }

func (s *Store) repositories(tx bool) repository.Repositories {
	h := handle{s: s, tx: tx}
	return repository.Repositories{
		Profiles:      &profileRepo{h},
		Organizations: &organizationRepo{h},
		Documents:     &documentRepo{h},
		Invitations:   &invitationRepo{h},
		Notifications: &notificationRepo{h},
		Messages:      &messageRepo{h},
		Definitions:   &definitionRepo{h},
	}
}

// Users adaptador de credenciales.
func (s *Store) Users() repository.UserRepository { return &userRepo{handle{s: s}} }

// handle referencia al almacén. tx indica que el adaptador corre dentro de Run.
type handle struct {
	s  *Store
	tx bool
}

// write toma los cerrojos de una escritura. Fuera de Run también espera a txMu, así una
// escritura suelta no se intercala con una transacción ni la pierde si esta restaura su foto.
func (h handle) write() func() {
	if h.tx {
		h.s.mu.Lock()
		return h.s.mu.Unlock
	}
	h.s.txMu.Lock()
	h.s.mu.Lock()
	return func() {
		h.s.mu.Unlock()
		h.s.txMu.Unlock()
	}
}

// Run ejecuta fn como una unidad: las transacciones se serializan y, si fn falla,
// el estado vuelve a la foto tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(s.repositories(true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	profiles      map[string]entity.Profile
	organizations map[string]entity.Organization
	documents     map[string]entity.Document
	invitations   map[string]entity.Invitation
	notifications map[string]entity.Notification
	messages      map[string]entity.CompanyMessage
	definitions   map[string]entity.Definition
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		profiles:      cloneMap(s.profiles),
		organizations: cloneMap(s.organizations),
		documents:     cloneMap(s.documents),
		invitations:   cloneMap(s.invitations),
		notifications: cloneMap(s.notifications),
		messages:      cloneMap(s.messages),
		definitions:   cloneMap(s.definitions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = snap.profiles
	s.organizations = snap.organizations
	s.documents = snap.documents
	s.invitations = snap.invitations
	s.notifications = snap.notifications
	s.messages = snap.messages
	s.definitions = snap.definitions
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func strPtr(s string) *string { return &s }

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ─── users ───────────────────────────────────────────────────────────────────

type userRepo struct{ handle }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	defer r.write()()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// ─── organizations ───────────────────────────────────────────────────────────

type organizationRepo struct{ handle }

func (r *organizationRepo) Create(_ context.Context, org *entity.Organization) error {
	defer r.write()()
	if _, ok := r.s.organizations[org.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.organizations[org.ID] = *org
	return nil
}

func (r *organizationRepo) GetByID(_ context.Context, id string) (*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	org, ok := r.s.organizations[id]
	if !ok {
		return nil, nil
	}
	return &org, nil
}

func (r *organizationRepo) List(_ context.Context) ([]*entity.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Organization, 0, len(r.s.organizations))
	for _, org := range r.s.organizations {
		o := org
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *organizationRepo) Update(_ context.Context, org *entity.Organization) error {
	defer r.write()()
	if _, ok := r.s.organizations[org.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.organizations[org.ID] = *org
	return nil
}

func (r *organizationRepo) Delete(_ context.Context, id string) error {
	defer r.write()()
	delete(r.s.organizations, id)
	// Igual que la FK ON DELETE SET NULL: los documentos quedan como personales del cargador.
	for docID, d := range r.s.documents {
		if d.OrgID() == id {
			d.OrganizationID = nil
			r.s.documents[docID] = d
		}
	}
	return nil
}

// ─── profiles ────────────────────────────────────────────────────────────────

type profileRepo struct{ handle }

// withOrg copia el perfil y adjunta su empresa. Requiere mu tomado.
func (r *profileRepo) withOrg(p entity.Profile) *entity.Profile {
	p.Organization = nil
	if p.OrganizationID != nil {
		if org, ok := r.s.organizations[*p.OrganizationID]; ok {
			p.Organization = &org
		}
	}
	return &p
}

func (r *profileRepo) Create(_ context.Context, p *entity.Profile) error {
	defer r.write()()
	if _, ok := r.s.profiles[p.ID]; ok {
		return domain.ErrDuplicate
	}
	stored := *p
	stored.Organization = nil
	r.s.profiles[p.ID] = stored
	return nil
}

func (r *profileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	return r.withOrg(p), nil
}

func (r *profileRepo) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Email == email {
			return r.withOrg(p), nil
		}
	}
	return nil, nil
}

func (r *profileRepo) List(_ context.Context, limit, offset int) ([]*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Profile, 0, len(r.s.profiles))
	for _, p := range r.s.profiles {
		out = append(out, r.withOrg(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*entity.Profile{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *profileRepo) ListByOrganization(_ context.Context, orgID string) ([]*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Profile
	for _, p := range r.s.profiles {
		if p.InOrganization(orgID) {
			out = append(out, r.withOrg(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *profileRepo) FindOwner(_ context.Context, orgID string) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.InOrganization(orgID) && p.Role == entity.RolePremiumCorporate {
			return r.withOrg(p), nil
		}
	}
	return nil, nil
}

func (r *profileRepo) CountNonOwnerMembers(_ context.Context, orgID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countNonOwnerMembers(orgID), nil
}

func (s *Store) countNonOwnerMembers(orgID string) int {
	n := 0
	for _, p := range s.profiles {
		if p.InOrganization(orgID) && p.Role != entity.RolePremiumCorporate {
			n++
		}
	}
	return n
}

func (r *profileRepo) JoinOrganization(_ context.Context, profileID, orgID string, role entity.Role) (bool, error) {
	defer r.write()()
	p, ok := r.s.profiles[profileID]
	if !ok || p.OrganizationID != nil {
		return false, nil
	}
	p.OrganizationID = strPtr(orgID)
	p.Role = role
	p.Permissions = entity.Permissions{}
	r.s.profiles[profileID] = p
	return true, nil
}

func (r *profileRepo) Detach(_ context.Context, profileID, orgID string) (bool, error) {
	defer r.write()()
	p, ok := r.s.profiles[profileID]
	if !ok || !p.InOrganization(orgID) {
		return false, nil
	}
	r.s.profiles[profileID] = detached(p)
	return true, nil
}

func (r *profileRepo) DetachAll(_ context.Context, orgID string) (int, error) {
	defer r.write()()
	n := 0
	for id, p := range r.s.profiles {
		if p.InOrganization(orgID) {
			r.s.profiles[id] = detached(p)
			n++
		}
	}
	return n, nil
}

func detached(p entity.Profile) entity.Profile {
	p.OrganizationID = nil
	p.Role = entity.RoleNormal
	p.Permissions = entity.Permissions{}
	return p
}

func (r *profileRepo) UpdateRole(_ context.Context, profileID, orgID string, role entity.Role, perms entity.Permissions) (bool, error) {
	defer r.write()()
	p, ok := r.s.profiles[profileID]
	if !ok || !p.InOrganization(orgID) {
		return false, nil
	}
	p.Role = role
	p.Permissions = perms
	r.s.profiles[profileID] = p
	return true, nil
}

func (r *profileRepo) UpdatePermissions(_ context.Context, profileID, orgID string, perms entity.Permissions) (bool, error) {
	defer r.write()()
	p, ok := r.s.profiles[profileID]
	if !ok || !p.InOrganization(orgID) || p.Role != entity.RoleCorporateChief {
		return false, nil
	}
	p.Permissions = perms
	r.s.profiles[profileID] = p
	return true, nil
}

func (r *profileRepo) MakeOwner(_ context.Context, profileID, orgID string) error {
	defer r.write()()
	p, ok := r.s.profiles[profileID]
	if !ok {
		return domain.ErrUserNotFound
	}
	p.OrganizationID = strPtr(orgID)
	p.Role = entity.RolePremiumCorporate
	p.Permissions = entity.Permissions{}
	r.s.profiles[profileID] = p
	return nil
}

// ─── documents ───────────────────────────────────────────────────────────────

type documentRepo struct{ handle }

func (r *documentRepo) Create(_ context.Context, d *entity.Document) error {
	defer r.write()()
	if _, ok := r.s.documents[d.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.documents[d.ID] = *d
	return nil
}

func (r *documentRepo) CreateWithinQuota(_ context.Context, d *entity.Document, limit int) (bool, error) {
	defer r.write()()
	if _, ok := r.s.documents[d.ID]; ok {
		return false, domain.ErrDuplicate
	}
	if r.s.countActive(d.UploaderID) >= limit {
		return false, nil
	}
	r.s.documents[d.ID] = *d
	return true, nil
}

func (s *Store) countActive(uploaderID string) int {
	n := 0
	for _, d := range s.documents {
		if d.UploaderID == uploaderID && !d.IsArchived {
			n++
		}
	}
	return n
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.documents[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *documentRepo) List(_ context.Context, f entity.DocumentFilter, archived bool) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.s.documents {
		if d.IsArchived != archived {
			continue
		}
		match := f.All || d.UploaderID == f.UploaderID ||
			(f.OrganizationID != "" && d.OrgID() == f.OrganizationID)
		if match {
			doc := d
			out = append(out, &doc)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *documentRepo) ListVersions(_ context.Context, q entity.VersionQuery, excludeID string) ([]*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.s.documents {
		if !d.IsArchived || d.ID == excludeID || d.TypeDefID != q.TypeDefID {
			continue
		}
		if q.LocationDefID != nil && !ptrEq(d.LocationDefID, q.LocationDefID) {
			continue
		}
		if q.OrganizationID != nil {
			if !ptrEq(d.OrganizationID, q.OrganizationID) {
				continue
			}
		} else if d.OrganizationID != nil || d.UploaderID != q.UploaderID {
			continue
		}
		doc := d
		out = append(out, &doc)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(docs []*entity.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
}

func (r *documentRepo) CountActiveByUploader(_ context.Context, uploaderID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countActive(uploaderID), nil
}

func (r *documentRepo) CountByOrganization(_ context.Context, orgID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, d := range r.s.documents {
		if d.OrgID() == orgID && !d.IsArchived {
			n++
		}
	}
	return n, nil
}

func (r *documentRepo) Update(_ context.Context, d *entity.Document) error {
	defer r.write()()
	if _, ok := r.s.documents[d.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.documents[d.ID] = *d
	return nil
}

func (r *documentRepo) Archive(_ context.Context, id string) (bool, error) {
	defer r.write()()
	d, ok := r.s.documents[id]
	if !ok || d.IsArchived {
		return false, nil
	}
	d.IsArchived = true
	r.s.documents[id] = d
	return true, nil
}

func (r *documentRepo) Delete(_ context.Context, id string) error {
	defer r.write()()
	delete(r.s.documents, id)
	return nil
}

// ─── invitations ─────────────────────────────────────────────────────────────

type invitationRepo struct{ handle }

func (r *invitationRepo) CreateWithinQuota(_ context.Context, inv *entity.Invitation, limit int) (bool, error) {
	defer r.write()()
	for _, existing := range r.s.invitations {
		if existing.Code == inv.Code {
			return false, domain.ErrDuplicate
		}
	}
	if r.s.countNonOwnerMembers(inv.OrganizationID)+r.s.countUnused(inv.OrganizationID) >= limit {
		return false, nil
	}
	r.s.invitations[inv.ID] = *inv
	return true, nil
}

func (s *Store) countUnused(orgID string) int {
	n := 0
	for _, inv := range s.invitations {
		if inv.OrganizationID == orgID && !inv.IsUsed() {
			n++
		}
	}
	return n
}

func (r *invitationRepo) GetByID(_ context.Context, id string) (*entity.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (r *invitationRepo) GetUnusedByCode(_ context.Context, code string) (*entity.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.Code == code && !inv.IsUsed() {
			out := inv
			return &out, nil
		}
	}
	return nil, nil
}

func (r *invitationRepo) FindPendingByEmail(_ context.Context, orgID, email string) (*entity.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.OrganizationID == orgID && !inv.IsUsed() && inv.Email != nil && *inv.Email == email {
			out := inv
			return &out, nil
		}
	}
	return nil, nil
}

func (r *invitationRepo) ListUnused(_ context.Context, orgID string) ([]*entity.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invitation
	for _, inv := range r.s.invitations {
		if inv.OrganizationID == orgID && !inv.IsUsed() {
			i := inv
			out = append(out, &i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *invitationRepo) CountUnused(_ context.Context, orgID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.countUnused(orgID), nil
}

func (r *invitationRepo) Consume(_ context.Context, id string, status entity.InvitationStatus, usedBy *string) (bool, error) {
	defer r.write()()
	inv, ok := r.s.invitations[id]
	if !ok || inv.IsUsed() {
		return false, nil
	}
	inv.Status = status
	inv.UsedBy = usedBy
	r.s.invitations[id] = inv
	return true, nil
}

func (r *invitationRepo) DeleteByOrganization(_ context.Context, orgID string) error {
	defer r.write()()
	for id, inv := range r.s.invitations {
		if inv.OrganizationID == orgID {
			delete(r.s.invitations, id)
		}
	}
	return nil
}

// ─── notifications ───────────────────────────────────────────────────────────

type notificationRepo struct{ handle }

func (r *notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	defer r.write()()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string) ([]*entity.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			item := n
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID string) (bool, error) {
	defer r.write()()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return true, nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID string) error {
	defer r.write()()
	for id, n := range r.s.notifications {
		if n.UserID == userID {
			n.IsRead = true
			r.s.notifications[id] = n
		}
	}
	return nil
}

func (r *notificationRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	defer r.write()()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(r.s.notifications, id)
	return true, nil
}

func (r *notificationRepo) Broadcast(_ context.Context, n entity.Notification) (int, error) {
	defer r.write()()
	count := 0
	for id := range r.s.profiles {
		item := n
		item.ID = uuid.NewString()
		item.UserID = id
		r.s.notifications[item.ID] = item
		count++
	}
	return count, nil
}

// ─── messages ────────────────────────────────────────────────────────────────

type messageRepo struct{ handle }

func (r *messageRepo) Create(_ context.Context, m *entity.CompanyMessage) error {
	defer r.write()()
	r.s.messages[m.ID] = *m
	return nil
}

func (r *messageRepo) ListGeneral(_ context.Context, orgID string, limit int) ([]*entity.CompanyMessage, error) {
	return r.list(func(m entity.CompanyMessage) bool {
		return m.OrganizationID == orgID && m.ReceiverID == nil
	}, limit), nil
}

func (r *messageRepo) ListDirect(_ context.Context, orgID, userA, userB string, limit int) ([]*entity.CompanyMessage, error) {
	return r.list(func(m entity.CompanyMessage) bool {
		if m.OrganizationID != orgID || m.ReceiverID == nil {
			return false
		}
		return (m.SenderID == userA && *m.ReceiverID == userB) || (m.SenderID == userB && *m.ReceiverID == userA)
	}, limit), nil
}

// list más antiguos primero, conservando los últimos limit.
func (r *messageRepo) list(match func(entity.CompanyMessage) bool, limit int) []*entity.CompanyMessage {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.CompanyMessage
	for _, m := range r.s.messages {
		if match(m) {
			item := m
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// ─── definitions ─────────────────────────────────────────────────────────────

type definitionRepo struct{ handle }

func (r *definitionRepo) Create(_ context.Context, d *entity.Definition) error {
	defer r.write()()
	r.s.definitions[d.ID] = *d
	return nil
}

func (r *definitionRepo) GetByID(_ context.Context, id string) (*entity.Definition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.definitions[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *definitionRepo) ListByUser(_ context.Context, userID string) ([]*entity.Definition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Definition
	for _, d := range r.s.definitions {
		if d.UserID == userID {
			item := d
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *definitionRepo) Rename(_ context.Context, id, userID, label string) (bool, error) {
	defer r.write()()
	d, ok := r.s.definitions[id]
	if !ok || d.UserID != userID {
		return false, nil
	}
	d.Label = label
	r.s.definitions[id] = d
	return true, nil
}

func (r *definitionRepo) Delete(_ context.Context, id, userID string) (bool, error) {
	defer r.write()()
	d, ok := r.s.definitions[id]
	if !ok || d.UserID != userID {
		return false, nil
	}
	delete(r.s.definitions, id)
	return true, nil
}
