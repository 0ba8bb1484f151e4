// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	Syncs          *prometheus.CounterVec
	SyncDuration   *prometheus.HistogramVec
	Equipment      *prometheus.GaugeVec
	RecordsWritten *prometheus.CounterVec
	Mutations      *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labcarbon",
			Name:      "syncs_total",
			Help:      "Sync cycles by mode and outcome.",
		}, []string{"mode", "outcome"}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "labcarbon",
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync cycles.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		Equipment: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "labcarbon",
			Name:      "equipment",
			Help:      "Equipment items in the store after the last sync, by status.",
		}, []string{"status"}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labcarbon",
			Name:      "records_written_total",
			Help:      "Rows and points written to downstream stores.",
		}, []string{"sink"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "labcarbon",
			Name:      "equipment_mutations_total",
			Help:      "Equipment add, update and remove calls by result.",
		}, []string{"op", "result"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Syncs,
		m.SyncDuration,
		m.Equipment,
		m.RecordsWritten,
		m.Mutations,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ObserveSync records one finished sync cycle.
func (m *Metrics) ObserveSync(mode, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Syncs.WithLabelValues(mode, outcome).Inc()
	m.SyncDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// SetEquipment replaces the equipment gauge with counts per status.
func (m *Metrics) SetEquipment(byStatus map[string]int) {
	if m == nil {
		return
	}
	m.Equipment.Reset()
	for status, n := range byStatus {
		m.Equipment.WithLabelValues(status).Set(float64(n))
	}
}

// AddRecords counts n records written to sink.
func (m *Metrics) AddRecords(sink string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsWritten.WithLabelValues(sink).Add(float64(n))
}

// ObserveMutation counts one equipment mutation.
func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(op, result).Inc()
}
