package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels incidents that produced a report.
	OutcomeSuccess = "success"
	// OutcomeError labels incidents that could not be read, correlated or written.
	OutcomeError = "error"
)

var (
	triagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "porttriage",
			Name:      "triages_total",
			Help:      "Total number of incident reports triaged, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	triageDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "porttriage",
			Name:      "triage_seconds",
			Help:      "Time to correlate and render one incident report.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	incidentsBySeverity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "porttriage",
			Name:      "incidents_total",
			Help:      "Triaged incidents by classified severity and module.",
		},
		[]string{"severity", "module"},
	)

	sourceItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "porttriage",
			Name:      "source_items",
			Help:      "Items loaded from each data source; -1 when the source failed to load.",
		},
		[]string{"source"},
	)
)

// Register attaches the PortTriage collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		triagesTotal,
		triageDurationSeconds,
		incidentsBySeverity,
		sourceItems,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveTriage records a triage duration and outcome label.
func ObserveTriage(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	triagesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	triageDurationSeconds.Observe(duration.Seconds())
}

// ObserveIncident counts a triaged incident under its classification.
func ObserveIncident(severity, module string) {
	incidentsBySeverity.WithLabelValues(severity, module).Inc()
}

// SetSourceItems publishes how much a source contributed at load time.
func SetSourceItems(source string, items int, loaded bool) {
	if !loaded {
		items = -1
	}
	sourceItems.WithLabelValues(source).Set(float64(items))
}
