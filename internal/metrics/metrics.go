package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ConfidenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "chat",
			Name:      "confidence_total",
			Help:      "Classified turns by confidence level",
		},
		[]string{"confidence"},
	)

	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Model call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"mode", "status"},
	)

	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Dropped storage operations",
		},
		[]string{"store", "op"},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "escalation",
			Name:      "events_total",
			Help:      "Escalation events by stage",
		},
		[]string{"stage"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTurn records a finished chat turn. mode is "classified" or "stream".
func RecordTurn(mode, outcome string) {
	TurnsTotal.WithLabelValues(mode, outcome).Inc()
}

func RecordConfidence(level string) {
	ConfidenceTotal.WithLabelValues(level).Inc()
}

func RecordLLMCall(mode, status string, durationSec float64) {
	LLMDuration.WithLabelValues(mode, status).Observe(durationSec)
}

func RecordStoreError(store, op string) {
	StoreErrorsTotal.WithLabelValues(store, op).Inc()
}

// RecordEscalation counts an escalation at a stage: "detected", "published", "publish_failed" or "alerted".
func RecordEscalation(stage string) {
	EscalationsTotal.WithLabelValues(stage).Inc()
}
