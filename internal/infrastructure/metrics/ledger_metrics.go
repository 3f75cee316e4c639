package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LedgerMetrics contadores del libro de movimientos expuestos en formato Prometheus.
// Implementa inventory.Observer.
type LedgerMetrics struct {
	registry *prometheus.Registry
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewLedgerMetrics crea un registro propio con las métricas del libro y las del proceso Go.
func NewLedgerMetrics() *LedgerMetrics {
	reg := prometheus.NewRegistry()
	m := &LedgerMetrics{
		registry: reg,
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_movements_accepted_total",
			Help: "Movimientos registrados, por código de tipo.",
		}, []string{"movement_type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_movements_rejected_total",
			Help: "Movimientos rechazados, por código de tipo y motivo.",
		}, []string{"movement_type", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_movement_apply_seconds",
			Help:    "Duración de la transacción de registro.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"movement_type"}),
	}
	reg.MustRegister(
		m.accepted, m.rejected, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *LedgerMetrics) MovementAccepted(movementType string, d time.Duration) {
	m.accepted.WithLabelValues(movementType).Inc()
	m.duration.WithLabelValues(movementType).Observe(d.Seconds())
}

func (m *LedgerMetrics) MovementRejected(movementType, reason string) {
	m.rejected.WithLabelValues(movementType, reason).Inc()
}

// Registry expone el registro (pruebas).
func (m *LedgerMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler HTTP de /metrics.
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
