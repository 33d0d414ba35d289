package metrics

import (
	"net/http"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Screening outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the screener's collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	screenings       *prometheus.CounterVec
	duration         prometheus.Histogram
	clearableCharges prometheus.Histogram
	ruleDecisions    *prometheus.CounterVec
	evalFailures     prometheus.Counter
	diagnostics      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		screenings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_screenings_total",
			Help: "Total screenings by outcome",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_screening_duration_seconds",
			Help:    "Time to analyze and summarize one record",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		clearableCharges: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_clearable_charges",
			Help:    "Clearable charges per screened record",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
		}),
		ruleDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_rule_decisions_total",
			Help: "Top-level rule decisions by rule and truth value",
		}, []string{"rule", "truthy"}),
		evalFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "screener_eval_failures_total",
			Help: "Screenings that failed the consistency harness",
		}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_diagnostics_total",
			Help: "Data-quality diagnostics by code",
		}, []string{"code"}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScreening records one finished screening.
func (m *Metrics) ObserveScreening(outcome string, elapsed time.Duration, clearable int) {
	if m == nil {
		return
	}
	m.screenings.WithLabelValues(outcome).Inc()
	if outcome != OutcomeOK {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.clearableCharges.Observe(float64(clearable))
}

// ObserveDecisions counts each top-level decision by rule.
func (m *Metrics) ObserveDecisions(ds []decision.Decision) {
	if m == nil {
		return
	}
	for _, d := range ds {
		truthy := "false"
		if d.Bool() {
			truthy = "true"
		}
		m.ruleDecisions.WithLabelValues(string(d.Rule), truthy).Inc()
	}
}

// EvalFailed counts a consistency failure.
func (m *Metrics) EvalFailed() {
	if m == nil {
		return
	}
	m.evalFailures.Inc()
}

// Diagnostic counts one data-quality diagnostic.
func (m *Metrics) Diagnostic(code string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(code).Inc()
}
