// Package events publica señales de cambio tras cada mutación confirmada e invalida
// las instantáneas de sesión afectadas.
package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// Invalidator descarta instantáneas de sesión cacheadas.
type Invalidator interface {
	Invalidate(userIDs ...string)
	InvalidateAll()
}

// Emitter un *Emitter nil no hace nada.
type Emitter struct {
	feed     ports.ChangeFeed
	sessions Invalidator
	log      zerolog.Logger
}

// NewEmitter feed y sessions pueden ser nil.
func NewEmitter(feed ports.ChangeFeed, sessions Invalidator, log zerolog.Logger) *Emitter {
	return &Emitter{feed: feed, sessions: sessions, log: log}
}

// ProfileChanged rol, empresa o permisos de estos usuarios cambiaron.
func (e *Emitter) ProfileChanged(ctx context.Context, orgID string, userIDs ...string) {
	if e == nil {
		return
	}
	if e.sessions != nil {
		e.sessions.Invalidate(userIDs...)
	}
	for _, id := range userIDs {
		e.publish(ctx, ports.Change{
			Table:  ports.TableProfiles,
			Action: ports.ActionUpdate,
			ID:     id,
			Fields: map[string]string{"organization_id": orgID},
		})
	}
}

// OrganizationChanged límites o suscripción de la empresa cambiaron: afecta a todos sus miembros.
func (e *Emitter) OrganizationChanged(ctx context.Context, orgID, action string) {
	if e == nil {
		return
	}
	if e.sessions != nil {
		e.sessions.InvalidateAll()
	}
	e.publish(ctx, ports.Change{Table: ports.TableOrganizations, Action: action, ID: orgID})
}

// NotificationCreated aviso para el destinatario.
func (e *Emitter) NotificationCreated(ctx context.Context, n *entity.Notification) {
	if e == nil || n == nil {
		return
	}
	e.publish(ctx, ports.Change{
		Table:  ports.TableNotifications,
		Action: ports.ActionInsert,
		ID:     n.ID,
		Fields: map[string]string{"user_id": n.UserID, "type": string(n.Type)},
	})
}

// MessageCreated nuevo mensaje en el chat de empresa.
func (e *Emitter) MessageCreated(ctx context.Context, m *entity.CompanyMessage) {
	if e == nil || m == nil {
		return
	}
	fields := map[string]string{"organization_id": m.OrganizationID, "sender_id": m.SenderID}
	if m.ReceiverID != nil {
		fields["receiver_id"] = *m.ReceiverID
	}
	e.publish(ctx, ports.Change{Table: ports.TableCompanyMessages, Action: ports.ActionInsert, ID: m.ID, Fields: fields})
}

// DocumentChanged alta, cambio o baja de un documento.
func (e *Emitter) DocumentChanged(ctx context.Context, d *entity.Document, action string) {
	if e == nil || d == nil {
		return
	}
	e.publish(ctx, ports.Change{
		Table:  ports.TableDocuments,
		Action: action,
		ID:     d.ID,
		Fields: map[string]string{"organization_id": d.OrgID(), "uploader_id": d.UploaderID},
	})
}

// publish no falla la operación: el cambio ya está confirmado y la señal es solo un aviso.
func (e *Emitter) publish(ctx context.Context, c ports.Change) {
	if e.feed == nil {
		return
	}
	c.At = time.Now().UTC()
	if err := e.feed.Publish(ctx, c); err != nil {
		e.log.Warn().Err(err).Str("table", c.Table).Str("id", c.ID).Msg("no se pudo publicar cambio")
	}
}
