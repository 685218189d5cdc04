package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

const (
	defaultChatLimit = 50
	maxChatLimit     = 200
)

// ForwardInput reenvío de un documento. ReceiverID nil = canal general.
type ForwardInput struct {
	DocumentID string
	ReceiverID *string
	Message    string
}

// ChatMessage mensaje tal como lo ve el lector. DocumentHidden indica que el enlace fue retirado.
type ChatMessage struct {
	entity.CompanyMessage
	DocumentHidden bool
}

// ChatUseCase chat de empresa con reenvío de documentos.
type ChatUseCase struct {
	repos   repository.Repositories
	events  *events.Emitter
	metrics ports.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// NewChatUseCase construye el caso de uso.
func NewChatUseCase(repos repository.Repositories, ev *events.Emitter, metrics ports.Recorder, log zerolog.Logger) *ChatUseCase {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &ChatUseCase{repos: repos, events: ev, metrics: metrics, log: log, now: time.Now}
}

// Forward publica un documento de la empresa en el chat. El actor debe poder verlo.
func (uc *ChatUseCase) Forward(ctx context.Context, caps *access.Capabilities, in ForwardInput) (*entity.CompanyMessage, error) {
	orgID := caps.OrgID()
	if orgID == "" {
		return nil, domain.Invalid("organization_id", "el usuario no pertenece a una empresa")
	}
	if strings.TrimSpace(in.DocumentID) == "" {
		return nil, domain.Invalid("document_id", "requerido")
	}
	doc, err := uc.repos.Documents.GetByID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc == nil || !caps.CanView(doc) {
		uc.metrics.AccessDenied("forward_document")
		return nil, domain.ErrNotFound
	}
	if doc.OrgID() != orgID {
		return nil, domain.Invalid("document_id", "solo se reenvían documentos de la empresa")
	}
	if in.ReceiverID != nil {
		if *in.ReceiverID == caps.UserID() {
			return nil, domain.Invalid("receiver_id", "no se puede enviar a uno mismo")
		}
		receiver, err := uc.repos.Profiles.GetByID(ctx, *in.ReceiverID)
		if err != nil {
			return nil, err
		}
		if receiver == nil || !receiver.InOrganization(orgID) {
			return nil, domain.ErrNotFound
		}
	}
	text := strings.TrimSpace(in.Message)
	if text == "" {
		text = doc.Title
	}
	docID := doc.ID
	m := &entity.CompanyMessage{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		SenderID:       caps.UserID(),
		ReceiverID:     in.ReceiverID,
		Message:        text,
		DocumentID:     &docID,
		DocumentTitle:  doc.Title,
		CreatedAt:      uc.now(),
	}
	if err := uc.repos.Messages.Create(ctx, m); err != nil {
		return nil, err
	}
	uc.events.MessageCreated(ctx, m)
	uc.log.Info().Str("sender_id", m.SenderID).Str("document_id", docID).Bool("direct", m.IsDirect()).Msg("documento reenviado")
	return m, nil
}

// Messages canal general (peerID vacío) o conversación directa con peerID.
// Los enlaces a documentos que el lector no puede abrir se retiran.
func (uc *ChatUseCase) Messages(ctx context.Context, caps *access.Capabilities, peerID string, limit int) ([]ChatMessage, error) {
	orgID := caps.OrgID()
	if orgID == "" {
		return nil, domain.Invalid("organization_id", "el usuario no pertenece a una empresa")
	}
	if limit <= 0 {
		limit = defaultChatLimit
	}
	if limit > maxChatLimit {
		limit = maxChatLimit
	}
	var (
		list []*entity.CompanyMessage
		err  error
	)
	if peerID == "" {
		list, err = uc.repos.Messages.ListGeneral(ctx, orgID, limit)
	} else {
		list, err = uc.repos.Messages.ListDirect(ctx, orgID, caps.UserID(), peerID, limit)
	}
	if err != nil {
		return nil, err
	}
	out := make([]ChatMessage, 0, len(list))
	for _, m := range list {
		view := ChatMessage{CompanyMessage: *m}
		if m.DocumentID != nil && !caps.CanSeeForwarded(m) {
			view.DocumentID = nil
			view.DocumentTitle = ""
			view.DocumentHidden = true
		}
		out = append(out, view)
	}
	return out, nil
}
