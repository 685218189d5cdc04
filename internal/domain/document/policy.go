package document

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/jhoicas/evraklab-api/internal/domain"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// Límites de carga.
const (
	MaxFreeDocuments   = 5        // documentos activos propios sin premium
	MaxFileSizeFree    = 1 << 20  // 1 MB
	MaxFileSizePremium = 50 << 20 // 50 MB
	WarningWindowDays  = 30
)

// allowedTypes MIME aceptados → extensión canónica.
var allowedTypes = map[string]string{
	"application/pdf":    "pdf",
	"image/jpeg":         "jpg",
	"image/jpg":          "jpg",
	"image/png":          "png",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// MaxFileSize límite de tamaño según premium.
func MaxFileSize(premium bool) int64 {
	if premium {
		return MaxFileSizePremium
	}
	return MaxFileSizeFree
}

// extAliases otras extensiones de nombre que corresponden a la canónica.
var extAliases = map[string]string{"jpeg": "jpg"}

// mediaType tipo MIME en minúsculas y sin parámetros.
func mediaType(contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// ValidateFile comprueba tipo MIME y tamaño.
func ValidateFile(contentType string, size int64, premium bool) error {
	if _, ok := allowedTypes[mediaType(contentType)]; !ok {
		return domain.Invalid("file", fmt.Sprintf("formato no permitido: %q", contentType))
	}
	if size <= 0 {
		return domain.Invalid("file", "archivo vacío")
	}
	if limit := MaxFileSize(premium); size > limit {
		return domain.Invalid("file", fmt.Sprintf("tamaño máximo %d MB", limit>>20))
	}
	return nil
}

// Extension la decide el tipo MIME validado. La del nombre solo se conserva si es del mismo formato
// (foto.jpeg con image/jpeg); un nombre como informe.exe con application/pdf se guarda como pdf.
func Extension(fileName, contentType string) string {
	ext, ok := allowedTypes[mediaType(contentType)]
	if !ok {
		return ""
	}
	named := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if named == ext || extAliases[named] == ext {
		return named
	}
	return ext
}

// StoragePath carpeta = empresa si el documento es corporativo, si no el usuario.
// El id del documento evita que dos subidas del mismo milisegundo compartan clave.
func StoragePath(orgID, userID, docID, ext string, at time.Time) string {
	folder := userID
	if orgID != "" {
		folder = orgID
	}
	name := fmt.Sprintf("%d-%s", at.UnixMilli(), docID)
	if ext != "" {
		name += "." + ext
	}
	return folder + "/" + name
}

// NormalizeDates un documento indefinido no guarda fechas; sin plazo de solicitud se usa el vencimiento.
func NormalizeDates(isIndefinite bool, expiry, deadline *time.Time) (*time.Time, *time.Time) {
	if isIndefinite {
		return nil, nil
	}
	if deadline == nil {
		deadline = expiry
	}
	return expiry, deadline
}

// Stats resumen del panel.
type Stats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Warning int `json:"warning"`
}

// ComputeStats cuenta vencidos (plazo en el pasado) y en aviso (≤ 30 días) según application_deadline.
func ComputeStats(docs []*entity.Document, now time.Time) Stats {
	s := Stats{Total: len(docs)}
	for _, d := range docs {
		if d == nil || d.IsIndefinite || d.ApplicationDeadline == nil {
			continue
		}
		days := int(math.Ceil(d.ApplicationDeadline.Sub(now).Hours() / 24))
		switch {
		case days < 0:
			s.Expired++
		case days <= WarningWindowDays:
			s.Warning++
		}
	}
	return s
}
