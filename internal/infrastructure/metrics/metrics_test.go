package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/evraklab-api/internal/infrastructure/metrics"
)

func TestRecorder(t *testing.T) {
	m := metrics.New()
	m.AccessDenied("kick_member")
	m.AccessDenied("kick_member")
	m.InvitationTransition("join_approved")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessDeniedTotal.WithLabelValues("kick_member")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvitationTransitionsTotal.WithLabelValues("join_approved")))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.ObserveRequest("GET", "/api/documents", 200, 15*time.Millisecond)
	m.RegisterGauge("evraklab_session_cache_entries", "cached session snapshots", func() float64 { return 3 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `evraklab_http_requests_total{method="GET",route="/api/documents",status="200"} 1`)
	assert.Contains(t, string(body), "evraklab_session_cache_entries 3")
}
