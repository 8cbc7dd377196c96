package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestMetricsCounters(t *testing.T) {
	m := NewIngestMetrics(Config{ServiceName: "invoicelens", Environment: "test"})

	m.AddRows("invoice", 3)
	m.AddRows("invoice", 2)
	m.AddRows("vendor", 0)
	m.IncFailure("persisting_invoices")
	m.IncPlaceholderVendor()
	m.ObserveStage("clearing", 20*time.Millisecond)

	assert.Equal(t, float64(5), testutil.ToFloat64(m.rows.WithLabelValues("invoice")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.rows.WithLabelValues("vendor")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failures.WithLabelValues("persisting_invoices")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.placeholder))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration))
}

func TestNilIngestMetricsIsNoop(t *testing.T) {
	var m *IngestMetrics
	m.AddRows("invoice", 1)
	m.IncFailure("x")
	m.IncPlaceholderVendor()
	m.ObserveStage("x", time.Second)
	assert.Nil(t, m.Registry())
}

func TestNewPusherRequiresEndpoint(t *testing.T) {
	assert.Nil(t, NewPusher("", "test", nil))
	assert.Nil(t, NewPusher("not a url", "test", nil))
	assert.NotNil(t, NewPusher("http://localhost:9091", "test", nil))
}

func TestPushgatewayPusherPushes(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewIngestMetrics(Config{})
	m.AddRows("vendor", 1)

	pusher := NewPushgatewayPusher(srv.URL, "invoicelens_ingest", map[string]string{"environment": "test"})
	require.NoError(t, pusher.Push(context.Background(), m.Registry()))
	assert.Equal(t, "/metrics/job/invoicelens_ingest/environment/test", gotPath)
}
