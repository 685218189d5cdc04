package dto

import "time"

// DocumentRequest campos editables (PUT y campos del formulario multipart de alta).
type DocumentRequest struct {
	Title               string     `json:"title" form:"title"`
	Description         string     `json:"description" form:"description"`
	TypeDefID           string     `json:"type_def_id" form:"type_def_id"`
	LocationDefID       *string    `json:"location_def_id" form:"location_def_id"`
	AcquisitionDate     *time.Time `json:"acquisition_date"`
	IsIndefinite        bool       `json:"is_indefinite" form:"is_indefinite"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	ReminderDays        int        `json:"reminder_days" form:"reminder_days"`
	ReminderBasedOn     string     `json:"reminder_based_on" form:"reminder_based_on"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID                  string     `json:"id"`
	UploaderID          string     `json:"uploader_id"`
	OrganizationID      *string    `json:"organization_id"`
	TypeDefID           string     `json:"type_def_id"`
	LocationDefID       *string    `json:"location_def_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	AcquisitionDate     *time.Time `json:"acquisition_date"`
	IsIndefinite        bool       `json:"is_indefinite"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	ApplicationDeadline *time.Time `json:"application_deadline"`
	ReminderDays        int        `json:"reminder_days"`
	ReminderBasedOn     string     `json:"reminder_based_on"`
	IsArchived          bool       `json:"is_archived"`
	FileURL             string     `json:"file_url,omitempty"`
	FileType            string     `json:"file_type,omitempty"`
	FileSizeBytes       int64      `json:"file_size,omitempty"`
	CanEdit             bool       `json:"can_edit"`
	CanDelete           bool       `json:"can_delete"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// DocumentListResponse listado de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
}

// DocumentDetailResponse documento + versiones archivadas.
type DocumentDetailResponse struct {
	Document DocumentResponse   `json:"document"`
	Versions []DocumentResponse `json:"versions"`
}

// DocumentStatsResponse resumen del panel.
type DocumentStatsResponse struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Warning int `json:"warning"`
}

// DefinitionRequest alta o renombre de una definición.
type DefinitionRequest struct {
	Category string `json:"category"`
	Label    string `json:"label"`
}

// DefinitionResponse tipo de documento o ubicación del usuario.
type DefinitionResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
