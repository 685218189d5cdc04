// Package document casos de uso de documentos: listado visible, detalle con versiones,
// carga, edición, renovación, borrado y resumen del panel.
package document

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/application/events"
	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	docpolicy "github.com/jhoicas/evraklab-api/internal/domain/document"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
)

// UntitledRecord título de un registro sin archivo adjunto.
const UntitledRecord = "Dosyasız Kayıt"

// File archivo recibido en la carga.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Details campos editables de un documento.
type Details struct {
	Title               string
	Description         string
	TypeDefID           string
	LocationDefID       *string
	AcquisitionDate     *time.Time
	IsIndefinite        bool
	ExpiryDate          *time.Time
	ApplicationDeadline *time.Time
	ReminderDays        int
	ReminderBasedOn     string
}

// UploadInput alta de un documento. Corporate pide el ámbito de la empresa del actor.
type UploadInput struct {
	Details
	Corporate bool
	File      *File
}

// RenewInput nueva vigencia de un documento; tipo, ubicación y empresa se heredan.
type RenewInput struct {
	AcquisitionDate     *time.Time
	ExpiryDate          *time.Time
	ApplicationDeadline *time.Time
	ReminderDays        int
	File                *File
}

// Detail documento con sus versiones archivadas visibles.
type Detail struct {
	Document *entity.Document
	Versions []*entity.Document
}

// Service casos de uso de documentos.
type Service struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	files   ports.FileStore
	events  *events.Emitter
	metrics ports.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// NewService construye el servicio. events y metrics pueden ser nil.
func NewService(repos repository.Repositories, tx ports.TxRunner, files ports.FileStore, ev *events.Emitter, metrics ports.Recorder, log zerolog.Logger) *Service {
	if metrics == nil {
		metrics = ports.NopRecorder{}
	}
	return &Service{repos: repos, tx: tx, files: files, events: ev, metrics: metrics, log: log, now: time.Now}
}

// List consulta con el filtro remoto y aplica la visibilidad fila a fila.
func (s *Service) List(ctx context.Context, caps *access.Capabilities, archived bool) ([]*entity.Document, error) {
	docs, err := s.repos.Documents.List(ctx, caps.DocumentFilter(), archived)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	return caps.Visibility().Apply(docs), nil
}

// Get un documento que el actor no puede ver se reporta como inexistente.
func (s *Service) Get(ctx context.Context, caps *access.Capabilities, id string) (*Detail, error) {
	d, err := s.visible(ctx, caps, id)
	if err != nil {
		return nil, err
	}
	versions, err := s.repos.Documents.ListVersions(ctx, entity.VersionQueryFor(d), d.ID)
	if err != nil {
		return nil, fmt.Errorf("listar versiones: %w", err)
	}
	return &Detail{Document: d, Versions: caps.Visibility().Apply(versions)}, nil
}

// Stats resumen de los documentos activos visibles.
func (s *Service) Stats(ctx context.Context, caps *access.Capabilities) (docpolicy.Stats, error) {
	docs, err := s.List(ctx, caps, false)
	if err != nil {
		return docpolicy.Stats{}, err
	}
	return docpolicy.ComputeStats(docs, caps.Now()), nil
}

// Upload valida, aplica cupo y ámbito, sube el archivo y registra el documento.
// reminder_days se fuerza a 0 si el actor no es premium.
func (s *Service) Upload(ctx context.Context, caps *access.Capabilities, in UploadInput) (*entity.Document, error) {
	if caps.UserID() == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validateDetails(in.Details); err != nil {
		return nil, err
	}
	premium := caps.IsPremium()
	if in.File != nil {
		if err := docpolicy.ValidateFile(in.File.ContentType, in.File.Size, premium); err != nil {
			return nil, err
		}
	}
	if !premium {
		n, err := s.repos.Documents.CountActiveByUploader(ctx, caps.UserID())
		if err != nil {
			return nil, err
		}
		if n >= docpolicy.MaxFreeDocuments {
			return nil, fmt.Errorf("%w: límite de %d documentos", domain.ErrQuotaExceeded, docpolicy.MaxFreeDocuments)
		}
	}

	var orgID *string
	if in.Corporate {
		if !caps.CanUploadCorporate() {
			s.denied(caps, "upload_corporate")
			return nil, domain.ErrUnauthorized
		}
		id := caps.OrgID()
		orgID = &id
	}

	now := s.now().UTC()
	d := &entity.Document{
		ID:              uuid.New().String(),
		UploaderID:      caps.UserID(),
		OrganizationID:  orgID,
		TypeDefID:       in.TypeDefID,
		LocationDefID:   in.LocationDefID,
		Description:     in.Description,
		AcquisitionDate: in.AcquisitionDate,
		IsIndefinite:    in.IsIndefinite,
		ReminderDays:    caps.ReminderDays(in.ReminderDays),
		ReminderBasedOn: in.ReminderBasedOn,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	d.ExpiryDate, d.ApplicationDeadline = docpolicy.NormalizeDates(in.IsIndefinite, in.ExpiryDate, in.ApplicationDeadline)
	d.Title = titleFor(in.Title, in.File, UntitledRecord)

	if err := s.store(ctx, d, in.File, now); err != nil {
		return nil, err
	}
	if err := s.insert(ctx, d, premium); err != nil {
		s.discard(ctx, d.FilePath)
		return nil, err
	}

	s.events.DocumentChanged(ctx, d, ports.ActionInsert)
	s.log.Info().Str("document_id", d.ID).Str("uploader_id", d.UploaderID).Bool("corporate", d.IsCorporate()).Msg("documento registrado")
	return d, nil
}

// insert registra el documento. Sin premium el cupo se vuelve a comprobar en la misma escritura:
// el conteo previo solo evita subir el archivo cuando ya no cabe.
func (s *Service) insert(ctx context.Context, d *entity.Document, premium bool) error {
	if premium {
		if err := s.repos.Documents.Create(ctx, d); err != nil {
			return fmt.Errorf("registrar documento: %w", err)
		}
		return nil
	}
	ok, err := s.repos.Documents.CreateWithinQuota(ctx, d, docpolicy.MaxFreeDocuments)
	if err != nil {
		return fmt.Errorf("registrar documento: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: límite de %d documentos", domain.ErrQuotaExceeded, docpolicy.MaxFreeDocuments)
	}
	return nil
}

// Update edita los campos de un documento visible y mutable por el actor.
func (s *Service) Update(ctx context.Context, caps *access.Capabilities, id string, in Details) (*entity.Document, error) {
	d, err := s.mutable(ctx, caps, id, access.OpEdit)
	if err != nil {
		return nil, err
	}
	if err := validateDetails(in); err != nil {
		return nil, err
	}

	d.Title = titleFor(in.Title, nil, d.Title)
	d.Description = in.Description
	d.TypeDefID = in.TypeDefID
	d.LocationDefID = in.LocationDefID
	d.AcquisitionDate = in.AcquisitionDate
	d.IsIndefinite = in.IsIndefinite
	d.ExpiryDate, d.ApplicationDeadline = docpolicy.NormalizeDates(in.IsIndefinite, in.ExpiryDate, in.ApplicationDeadline)
	d.ReminderDays = caps.ReminderDays(in.ReminderDays)
	d.ReminderBasedOn = in.ReminderBasedOn
	d.UpdatedAt = s.now().UTC()

	if err := s.repos.Documents.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("actualizar documento: %w", err)
	}
	s.events.DocumentChanged(ctx, d, ports.ActionUpdate)
	return d, nil
}

// Renew archiva el documento y registra su sucesor con las nuevas fechas. El renovador
// pasa a ser el cargador; tipo, ubicación y empresa se heredan.
func (s *Service) Renew(ctx context.Context, caps *access.Capabilities, id string, in RenewInput) (*entity.Document, error) {
	old, err := s.mutable(ctx, caps, id, access.OpRenew)
	if err != nil {
		return nil, err
	}
	if old.IsArchived {
		return nil, fmt.Errorf("%w: el documento ya está archivado", domain.ErrConflict)
	}
	if in.File == nil && in.AcquisitionDate == nil {
		return nil, domain.Invalid("acquisition_date", "requerido")
	}
	premium := caps.IsPremium()
	if in.File != nil {
		if err := docpolicy.ValidateFile(in.File.ContentType, in.File.Size, premium); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	next := *old
	next.ID = uuid.New().String()
	next.UploaderID = caps.UserID()
	next.Title = titleFor("", in.File, old.Title)
	next.AcquisitionDate = in.AcquisitionDate
	next.ExpiryDate, next.ApplicationDeadline = docpolicy.NormalizeDates(old.IsIndefinite, in.ExpiryDate, in.ApplicationDeadline)
	next.ReminderDays = caps.ReminderDays(in.ReminderDays)
	next.IsArchived = false
	next.CreatedAt = now
	next.UpdatedAt = now

	uploaded := false
	if in.File != nil {
		if err := s.store(ctx, &next, in.File, now); err != nil {
			return nil, err
		}
		uploaded = true
	}

	err = s.tx.Run(ctx, func(r repository.Repositories) error {
		ok, err := r.Documents.Archive(ctx, old.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: el documento ya fue renovado", domain.ErrConflict)
		}
		return r.Documents.Create(ctx, &next)
	})
	if err != nil {
		if uploaded {
			s.discard(ctx, next.FilePath)
		}
		return nil, err
	}

	s.events.DocumentChanged(ctx, old, ports.ActionUpdate)
	s.events.DocumentChanged(ctx, &next, ports.ActionInsert)
	s.log.Info().Str("document_id", old.ID).Str("renewed_id", next.ID).Msg("documento renovado")
	return &next, nil
}

// Delete borra la fila y, después, el archivo. Un fallo al borrar el archivo solo se registra.
func (s *Service) Delete(ctx context.Context, caps *access.Capabilities, id string) error {
	d, err := s.mutable(ctx, caps, id, access.OpDelete)
	if err != nil {
		return err
	}
	if err := s.repos.Documents.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("borrar documento: %w", err)
	}
	s.discard(ctx, d.FilePath)
	s.events.DocumentChanged(ctx, d, ports.ActionDelete)
	s.log.Info().Str("document_id", d.ID).Str("actor_id", caps.UserID()).Msg("documento borrado")
	return nil
}

func (s *Service) visible(ctx context.Context, caps *access.Capabilities, id string) (*entity.Document, error) {
	d, err := s.repos.Documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if d == nil || !caps.CanView(d) {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// mutable un documento visible sin permiso de mutación da ErrUnauthorized.
func (s *Service) mutable(ctx context.Context, caps *access.Capabilities, id string, op access.Operation) (*entity.Document, error) {
	d, err := s.visible(ctx, caps, id)
	if err != nil {
		return nil, err
	}
	if !caps.CanMutate(d, op) {
		s.denied(caps, string(op)+"_document")
		return nil, domain.ErrUnauthorized
	}
	return d, nil
}

// store sube el archivo (si hay) y completa ruta, URL, tipo y tamaño.
func (s *Service) store(ctx context.Context, d *entity.Document, f *File, at time.Time) error {
	if f == nil {
		return nil
	}
	ext := docpolicy.Extension(f.Name, f.ContentType)
	key := docpolicy.StoragePath(d.OrgID(), d.UploaderID, d.ID, ext, at)
	url, err := s.files.Put(ctx, key, f.ContentType, f.Body, f.Size)
	if err != nil {
		return fmt.Errorf("subir archivo: %w", err)
	}
	d.FilePath = key
	d.FileURL = url
	d.FileType = ext
	d.FileSizeBytes = f.Size
	return nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("no se pudo borrar el archivo")
	}
}

func (s *Service) denied(caps *access.Capabilities, op string) {
	s.metrics.AccessDenied(op)
	s.log.Debug().Str("user_id", caps.UserID()).Str("op", op).Msg("acceso denegado")
}

func validateDetails(in Details) error {
	if in.AcquisitionDate == nil {
		return domain.Invalid("acquisition_date", "requerido")
	}
	if strings.TrimSpace(in.TypeDefID) == "" {
		return domain.Invalid("type_def_id", "requerido")
	}
	if in.ReminderDays < 0 {
		return domain.Invalid("reminder_days", "no puede ser negativo")
	}
	return nil
}

// titleFor título explícito, si no el nombre del archivo, si no fallback.
func titleFor(title string, f *File, fallback string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	if f != nil && f.Name != "" {
		return f.Name
	}
	return fallback
}
