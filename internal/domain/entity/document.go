package entity

import "time"

// Document documento con vencimiento. OrganizationID nil = personal (solo su cargador lo ve).
type Document struct {
	ID                  string
	UploaderID          string
	OrganizationID      *string
	TypeDefID           string
	LocationDefID       *string
	Title               string
	Description         string
	AcquisitionDate     *time.Time
	IsIndefinite        bool
	ExpiryDate          *time.Time // nil cuando IsIndefinite
	ApplicationDeadline *time.Time // nil cuando IsIndefinite
	ReminderDays        int
	ReminderBasedOn     string
	IsArchived          bool
	FileURL             string
	FilePath            string // clave en el almacenamiento de archivos
	FileType            string
	FileSizeBytes       int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrgID devuelve el ID de empresa del documento o "" si es personal.
func (d *Document) OrgID() string {
	if d == nil || d.OrganizationID == nil {
		return ""
	}
	return *d.OrganizationID
}

// IsCorporate informa si el documento pertenece al ámbito de una empresa.
func (d *Document) IsCorporate() bool {
	return d.OrgID() != ""
}

// DocumentFilter consulta remota de documentos visibles:
// All, o uploader_id = UploaderID OR organization_id = OrganizationID (si no vacío).
// La consulta puede traer de más; el predicado de visibilidad se aplica después fila a fila.
type DocumentFilter struct {
	All            bool
	UploaderID     string
	OrganizationID string
}

// VersionQuery selecciona versiones archivadas de un documento:
// mismo tipo, misma ubicación si la tiene; misma empresa si es corporativo, si no mismo cargador.
type VersionQuery struct {
	TypeDefID      string
	LocationDefID  *string
	OrganizationID *string
	UploaderID     string
}

// VersionQueryFor construye la consulta de historial para d.
func VersionQueryFor(d *Document) VersionQuery {
	return VersionQuery{
		TypeDefID:      d.TypeDefID,
		LocationDefID:  d.LocationDefID,
		OrganizationID: d.OrganizationID,
		UploaderID:     d.UploaderID,
	}
}
