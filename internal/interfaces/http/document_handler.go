package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/evraklab-api/internal/application/document"
	"github.com/jhoicas/evraklab-api/internal/application/dto"
	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/access"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// DocumentHandler documentos, sus versiones y las definiciones del usuario.
type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// List godoc
// @Summary      Listar documentos visibles
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        archived  query  bool  false  "Archivados"
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	caps := GetCaps(c)
	docs, err := h.svc.List(c.UserContext(), caps, c.QueryBool("archived", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentListResponse{Items: documentResponses(caps, docs)})
}

// Stats godoc
// @Summary      Resumen de vencimientos
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DocumentStatsResponse
// @Router       /api/documents/stats [get]
func (h *DocumentHandler) Stats(c *fiber.Ctx) error {
	st, err := h.svc.Stats(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentStatsResponse{Total: st.Total, Expired: st.Expired, Warning: st.Warning})
}

// Get godoc
// @Summary      Documento con versiones archivadas
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	caps := GetCaps(c)
	detail, err := h.svc.Get(c.UserContext(), caps, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DocumentDetailResponse{
		Document: documentResponse(caps, detail.Document),
		Versions: documentResponses(caps, detail.Versions),
	})
}

// Upload godoc
// @Summary      Subir documento
// @Description  multipart/form-data; el archivo es opcional (registro sin archivo).
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file       formData  file    false  "Archivo (pdf, jpeg, png, doc, docx)"
// @Param        type_def_id  formData  string  true  "Tipo de documento"
// @Param        corporate  formData  bool    false  "Ámbito de empresa"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	details, err := formDetails(c)
	if err != nil {
		return writeError(c, err)
	}
	file, closeFile, err := formFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFile()

	caps := GetCaps(c)
	doc, err := h.svc.Upload(c.UserContext(), caps, document.UploadInput{
		Details:   details,
		Corporate: formBool(c, "corporate"),
		File:      file,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(documentResponse(caps, doc))
}

// Update godoc
// @Summary      Editar documento
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "ID del documento"
// @Param        body  body  dto.DocumentRequest  true  "Campos editables"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.DocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	caps := GetCaps(c)
	doc, err := h.svc.Update(c.UserContext(), caps, c.Params("id"), document.Details{
		Title:               in.Title,
		Description:         in.Description,
		TypeDefID:           in.TypeDefID,
		LocationDefID:       in.LocationDefID,
		AcquisitionDate:     in.AcquisitionDate,
		IsIndefinite:        in.IsIndefinite,
		ExpiryDate:          in.ExpiryDate,
		ApplicationDeadline: in.ApplicationDeadline,
		ReminderDays:        in.ReminderDays,
		ReminderBasedOn:     in.ReminderBasedOn,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(documentResponse(caps, doc))
}

// Renew godoc
// @Summary      Renovar documento (archiva el actual y crea la nueva versión)
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "ID del documento"
// @Param        file  formData  file    false  "Nuevo archivo"
// @Success      201  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/renew [post]
func (h *DocumentHandler) Renew(c *fiber.Ctx) error {
	in := document.RenewInput{}
	var err error
	if in.AcquisitionDate, err = formDate(c, "acquisition_date"); err != nil {
		return writeError(c, err)
	}
	if in.ExpiryDate, err = formDate(c, "expiry_date"); err != nil {
		return writeError(c, err)
	}
	if in.ApplicationDeadline, err = formDate(c, "application_deadline"); err != nil {
		return writeError(c, err)
	}
	if in.ReminderDays, err = formInt(c, "reminder_days"); err != nil {
		return writeError(c, err)
	}
	file, closeFile, err := formFile(c)
	if err != nil {
		return writeError(c, err)
	}
	defer closeFile()
	in.File = file

	caps := GetCaps(c)
	doc, err := h.svc.Renew(c.UserContext(), caps, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(documentResponse(caps, doc))
}

// Delete godoc
// @Summary      Eliminar documento
// @Tags         documents
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del documento"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), GetCaps(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── definiciones ────────────────────────────────────────────────────────────

// Definitions godoc
// @Summary      Tipos de documento y ubicaciones del usuario
// @Tags         definitions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.DefinitionResponse
// @Router       /api/definitions [get]
func (h *DocumentHandler) Definitions(c *fiber.Ctx) error {
	list, err := h.svc.Definitions(c.UserContext(), GetCaps(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.DefinitionResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.DefinitionFromEntity(d))
	}
	return c.JSON(out)
}

// AddDefinition godoc
// @Summary      Crear definición
// @Tags         definitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.DefinitionRequest  true  "category (doc_type|location) y label"
// @Success      201  {object}  dto.DefinitionResponse
// @Router       /api/definitions [post]
func (h *DocumentHandler) AddDefinition(c *fiber.Ctx) error {
	var in dto.DefinitionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	d, err := h.svc.AddDefinition(c.UserContext(), GetCaps(c), entity.DefinitionCategory(in.Category), in.Label)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DefinitionFromEntity(d))
}

// RenameDefinition godoc
// @Summary      Renombrar definición
// @Tags         definitions
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID"
// @Param        body  body  dto.DefinitionRequest  true  "label"
// @Success      204
// @Router       /api/definitions/{id} [put]
func (h *DocumentHandler) RenameDefinition(c *fiber.Ctx) error {
	var in dto.DefinitionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.svc.RenameDefinition(c.UserContext(), GetCaps(c), c.Params("id"), in.Label); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteDefinition godoc
// @Summary      Eliminar definición
// @Tags         definitions
// @Security     BearerAuth
// @Param        id  path  string  true  "ID"
// @Success      204
// @Router       /api/definitions/{id} [delete]
func (h *DocumentHandler) DeleteDefinition(c *fiber.Ctx) error {
	if err := h.svc.DeleteDefinition(c.UserContext(), GetCaps(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func documentResponse(caps *access.Capabilities, d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:                  d.ID,
		UploaderID:          d.UploaderID,
		OrganizationID:      d.OrganizationID,
		TypeDefID:           d.TypeDefID,
		LocationDefID:       d.LocationDefID,
		Title:               d.Title,
		Description:         d.Description,
		AcquisitionDate:     d.AcquisitionDate,
		IsIndefinite:        d.IsIndefinite,
		ExpiryDate:          d.ExpiryDate,
		ApplicationDeadline: d.ApplicationDeadline,
		ReminderDays:        d.ReminderDays,
		ReminderBasedOn:     d.ReminderBasedOn,
		IsArchived:          d.IsArchived,
		FileURL:             d.FileURL,
		FileType:            d.FileType,
		FileSizeBytes:       d.FileSizeBytes,
		CanEdit:             caps.CanMutate(d, access.OpEdit),
		CanDelete:           caps.CanMutate(d, access.OpDelete),
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func documentResponses(caps *access.Capabilities, docs []*entity.Document) []dto.DocumentResponse {
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(caps, d))
	}
	return out
}

func formDetails(c *fiber.Ctx) (document.Details, error) {
	d := document.Details{
		Title:           strings.TrimSpace(c.FormValue("title")),
		Description:     strings.TrimSpace(c.FormValue("description")),
		TypeDefID:       strings.TrimSpace(c.FormValue("type_def_id")),
		IsIndefinite:    formBool(c, "is_indefinite"),
		ReminderBasedOn: c.FormValue("reminder_based_on"),
	}
	if loc := strings.TrimSpace(c.FormValue("location_def_id")); loc != "" {
		d.LocationDefID = &loc
	}
	var err error
	if d.AcquisitionDate, err = formDate(c, "acquisition_date"); err != nil {
		return d, err
	}
	if d.ExpiryDate, err = formDate(c, "expiry_date"); err != nil {
		return d, err
	}
	if d.ApplicationDeadline, err = formDate(c, "application_deadline"); err != nil {
		return d, err
	}
	if d.ReminderDays, err = formInt(c, "reminder_days"); err != nil {
		return d, err
	}
	return d, nil
}

// formFile sin archivo devuelve nil; el cierre siempre es seguro de llamar.
func formFile(c *fiber.Ctx) (*document.File, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, domain.Invalid("file", "no se pudo leer el archivo")
	}
	return &document.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// formDate acepta fecha (2006-01-02) o RFC3339. Vacío = nil.
func formDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(key, "fecha inválida")
}

func formInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Invalid(key, "número inválido")
	}
	return n, nil
}

func formBool(c *fiber.Ctx, key string) bool {
	b, _ := strconv.ParseBool(c.FormValue(key))
	return b
}
