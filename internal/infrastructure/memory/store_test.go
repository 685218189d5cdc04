package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
	"github.com/jhoicas/evraklab-api/internal/domain/repository"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/memory"
)

func doc(id, uploader string) *entity.Document {
	return &entity.Document{ID: id, UploaderID: uploader, TypeDefID: "type-1", CreatedAt: time.Now()}
}

// ──────────────────────────────────────────────────────────────────────────────
// Run
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_EscrituraSueltaEsperaYSobreviveAlRollback(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()
	boom := errors.New("boom")

	started := make(chan struct{})
	release := make(chan struct{})
	runErr := make(chan error, 1)
	go func() {
		runErr <- store.Run(ctx, func(r repository.Repositories) error {
			if err := r.Documents.Create(ctx, doc("dentro", "u1")); err != nil {
				return err
			}
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	written := make(chan error, 1)
	go func() { written <- repos.Documents.Create(ctx, doc("fuera", "u2")) }()

	select {
	case err := <-written:
		t.Fatalf("la escritura no esperó a la transacción: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-runErr, boom)
	require.NoError(t, <-written)

	d, err := repos.Documents.GetByID(ctx, "fuera")
	require.NoError(t, err)
	assert.NotNil(t, d, "la escritura suelta no se pierde al restaurar")
	d, err = repos.Documents.GetByID(ctx, "dentro")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestRun_LecturasNoEsperan(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()
	require.NoError(t, repos.Documents.Create(ctx, doc("d1", "u1")))

	err := store.Run(ctx, func(r repository.Repositories) error {
		d, err := repos.Documents.GetByID(ctx, "d1")
		require.NoError(t, err)
		assert.NotNil(t, d)
		return r.Documents.Delete(ctx, "d1")
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documents.CreateWithinQuota
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumentsCreateWithinQuota_Concurrente(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := repos.Documents.CreateWithinQuota(ctx, doc(string(rune('a'+i)), "u1"), 5)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				created++
			} else {
				rejected++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, created)
	assert.Equal(t, 7, rejected)

	n, err := repos.Documents.CountActiveByUploader(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestDocumentsCreateWithinQuota_ArchivadosNoCuentan(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repositories()
	ctx := context.Background()

	old := doc("viejo", "u1")
	old.IsArchived = true
	require.NoError(t, repos.Documents.Create(ctx, old))

	ok, err := repos.Documents.CreateWithinQuota(ctx, doc("nuevo", "u1"), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Documents.CreateWithinQuota(ctx, doc("otro", "u1"), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
