package ports

import (
	"context"
	"io"
)

// FileStore almacén de binarios de documentos (S3 en producción, memoria en desarrollo).
type FileStore interface {
	// Put guarda el archivo bajo key y devuelve su URL pública.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}
