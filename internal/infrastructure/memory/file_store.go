package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
)

var _ ports.FileStore = (*FileStore)(nil)

// FileStore guarda archivos en memoria.
type FileStore struct {
	mu      sync.Mutex
	baseURL string
	files   map[string][]byte
}

// NewFileStore baseURL se antepone a la clave para formar la URL pública.
func NewFileStore(baseURL string) *FileStore {
	return &FileStore{baseURL: strings.TrimRight(baseURL, "/"), files: map[string][]byte{}}
}

func (f *FileStore) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("leer archivo: %w", err)
	}
	f.mu.Lock()
	f.files[key] = buf.Bytes()
	f.mu.Unlock()
	return f.baseURL + "/" + key, nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	delete(f.files, key)
	f.mu.Unlock()
	return nil
}

// Has informa si existe la clave.
func (f *FileStore) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[key]
	return ok
}

// Len número de archivos guardados.
func (f *FileStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}
