package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every ingest series.
type Config struct {
	ServiceName string
	Environment string
}

// IngestMetrics holds the per-run prometheus instruments of the loader. A nil
// *IngestMetrics is valid and records nothing.
type IngestMetrics struct {
	registry      *prometheus.Registry
	rows          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	placeholder   prometheus.Counter
	stageDuration *prometheus.HistogramVec
}

// NewIngestMetrics registers the ingest instruments on a fresh registry.
func NewIngestMetrics(cfg Config) *IngestMetrics {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "invoicelens"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "invoicelens_ingest_rows_total",
		Help:        "Rows persisted by the ingest loader per entity.",
		ConstLabels: constLabels,
	}, []string{"entity"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "invoicelens_ingest_failures_total",
		Help:        "Records or rows the ingest loader skipped per stage.",
		ConstLabels: constLabels,
	}, []string{"stage"})
	placeholder := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "invoicelens_ingest_placeholder_vendor_total",
		Help:        "Invoices attached to the placeholder vendor key.",
		ConstLabels: constLabels,
	})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "invoicelens_ingest_stage_duration_seconds",
		Help:        "Wall time spent in each loader stage.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		ConstLabels: constLabels,
	}, []string{"stage"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(rows, failures, placeholder, stageDuration)

	return &IngestMetrics{
		registry:      registry,
		rows:          rows,
		failures:      failures,
		placeholder:   placeholder,
		stageDuration: stageDuration,
	}
}

// Registry exposes the gatherer for pushing at the end of a run.
func (m *IngestMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// AddRows counts persisted rows of entity.
func (m *IngestMetrics) AddRows(entity string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rows.WithLabelValues(strings.TrimSpace(entity)).Add(float64(count))
}

// IncFailure counts one skipped record or row in stage.
func (m *IngestMetrics) IncFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(strings.TrimSpace(stage)).Inc()
}

func (m *IngestMetrics) IncPlaceholderVendor() {
	if m == nil {
		return
	}
	m.placeholder.Inc()
}

// ObserveStage records how long stage took.
func (m *IngestMetrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(strings.TrimSpace(stage)).Observe(elapsed.Seconds())
}
