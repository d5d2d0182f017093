package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification workflow. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Sessions started, by profile
	SessionsStarted *prometheus.CounterVec

	// Stage transitions by target stage
	StageTransitions *prometheus.CounterVec

	// Terminal verdicts by kind and reason/priority
	Verdicts *prometheus.CounterVec

	// Validation latency by slot and outcome
	ValidationLatency *prometheus.HistogramVec

	// Results discarded by the stale-result guard, by slot
	StaleResults *prometheus.CounterVec

	// Channel code events: sent, verified, incorrect, exhausted, expired
	ChannelCodes *prometheus.CounterVec

	// Aggregate confidence of decided sessions
	AggregateConfidence prometheus.Histogram

	// Sessions currently held in the working store
	ActiveSessions prometheus.Gauge

	// Hand-off delivery failures by adapter
	HandoffFailures *prometheus.CounterVec
}

// New registers the workflow metrics on reg, or on the default registry when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_sessions_started_total",
			Help: "Verification sessions started by profile",
		}, []string{"profile"}),

		StageTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_stage_transitions_total",
			Help: "Stage transitions by target stage",
		}, []string{"stage"}),

		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_verdicts_total",
			Help: "Terminal verdicts by kind and detail (reason or priority)",
		}, []string{"kind", "detail"}),

		ValidationLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idproof_kyc_validation_duration_seconds",
			Help:    "Duration of remote validations by slot and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"slot", "outcome"}), // outcome: "valid", "invalid", "error", "stale"

		StaleResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_stale_results_total",
			Help: "Validation results discarded because the session moved on",
		}, []string{"slot"}),

		ChannelCodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_channel_codes_total",
			Help: "One-time code events by channel and event",
		}, []string{"channel", "event"}),

		AggregateConfidence: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idproof_kyc_aggregate_confidence",
			Help:    "Aggregate confidence of decided sessions",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "idproof_kyc_active_sessions",
			Help: "Verification sessions currently in the working store",
		}),

		HandoffFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idproof_kyc_handoff_failures_total",
			Help: "Failed hand-off deliveries by adapter",
		}, []string{"adapter"}),
	}
}

func (m *Metrics) IncSessionStarted(profile string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(profile).Inc()
	}
}

func (m *Metrics) IncStageTransition(stage string) {
	if m != nil {
		m.StageTransitions.WithLabelValues(stage).Inc()
	}
}

// IncVerdict records a terminal verdict.
func (m *Metrics) IncVerdict(kind, detail string) {
	if m != nil {
		m.Verdicts.WithLabelValues(kind, detail).Inc()
	}
}

// ObserveValidation records the duration of one remote validation.
func (m *Metrics) ObserveValidation(slot, outcome string, d time.Duration) {
	if m != nil {
		m.ValidationLatency.WithLabelValues(slot, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncStaleResult(slot string) {
	if m != nil {
		m.StaleResults.WithLabelValues(slot).Inc()
	}
}

func (m *Metrics) IncChannelCode(channel, event string) {
	if m != nil {
		m.ChannelCodes.WithLabelValues(channel, event).Inc()
	}
}

func (m *Metrics) ObserveAggregate(v float64) {
	if m != nil {
		m.AggregateConfidence.Observe(v)
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.ActiveSessions.Set(float64(n))
	}
}

func (m *Metrics) IncHandoffFailure(adapter string) {
	if m != nil {
		m.HandoffFailures.WithLabelValues(adapter).Inc()
	}
}
