package realtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
	"github.com/jhoicas/evraklab-api/internal/infrastructure/realtime"
)

type recorder struct {
	mu      sync.Mutex
	changes []ports.Change
}

func (r *recorder) add(c ports.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// LocalFeed
// ──────────────────────────────────────────────────────────────────────────────

func TestLocalFeed_FiltraYCancela(t *testing.T) {
	feed := realtime.NewLocalFeed()
	ctx := context.Background()
	rec := &recorder{}

	stop, err := feed.Subscribe(ctx, ports.TableProfiles, ports.Filter{Column: "organization_id", Value: "org-1"}, rec.add)
	require.NoError(t, err)

	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableProfiles, ID: "u1", Fields: map[string]string{"organization_id": "org-1"}}))
	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableProfiles, ID: "u2", Fields: map[string]string{"organization_id": "org-2"}}))
	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableNotifications, ID: "n1"}))
	assert.Equal(t, []string{"u1"}, rec.ids())

	stop()
	stop()
	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableProfiles, ID: "u3", Fields: map[string]string{"organization_id": "org-1"}}))
	assert.Equal(t, []string{"u1"}, rec.ids())
	assert.Equal(t, 0, feed.Subscribers(ports.TableProfiles))
}

func TestLocalFeed_ContextoCanceladoTerminaLaSuscripcion(t *testing.T) {
	feed := realtime.NewLocalFeed()
	ctx, cancel := context.WithCancel(context.Background())
	_, err := feed.Subscribe(ctx, ports.TableDocuments, ports.Filter{}, func(ports.Change) {})
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Subscribers(ports.TableDocuments))

	cancel()
	assert.Eventually(t, func() bool { return feed.Subscribers(ports.TableDocuments) == 0 }, time.Second, 5*time.Millisecond)
}

// ──────────────────────────────────────────────────────────────────────────────
// RedisFeed
// ──────────────────────────────────────────────────────────────────────────────

func setupRedisFeed(t *testing.T) (*realtime.RedisFeed, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := realtime.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return realtime.NewRedisFeed(client, zerolog.Nop()), client
}

func TestRedisFeed_PublicaYRecibe(t *testing.T) {
	feed, _ := setupRedisFeed(t)
	ctx := context.Background()
	rec := &recorder{}

	stop, err := feed.Subscribe(ctx, ports.TableNotifications, ports.Filter{Column: "user_id", Value: "u1"}, rec.add)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableNotifications, Action: ports.ActionInsert, ID: "n-other", Fields: map[string]string{"user_id": "u2"}}))
	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableNotifications, Action: ports.ActionInsert, ID: "n-mine", Fields: map[string]string{"user_id": "u1"}}))

	assert.Eventually(t, func() bool {
		ids := rec.ids()
		return len(ids) == 1 && ids[0] == "n-mine"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisFeed_DejarDeEscuchar(t *testing.T) {
	feed, client := setupRedisFeed(t)
	ctx := context.Background()
	rec := &recorder{}

	stop, err := feed.Subscribe(ctx, ports.TableProfiles, ports.Filter{}, rec.add)
	require.NoError(t, err)
	stop()

	assert.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "evraklab:changes:"+ports.TableProfiles).Result()
		return err == nil && n["evraklab:changes:"+ports.TableProfiles] == 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, feed.Publish(ctx, ports.Change{Table: ports.TableProfiles, ID: "u1"}))
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.ids())
}

func TestNewRedisClient_URLInvalida(t *testing.T) {
	_, err := realtime.NewRedisClient(context.Background(), "::no-es-url")
	assert.Error(t, err)
}
