package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"kgeyst.com/iris/pkg/iris/domain"
)

var (
	once sync.Once

	// TriggersTotal counts describe requests by what happened to them.
	TriggersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iris",
		Subsystem: "orchestrator",
		Name:      "triggers_total",
		Help:      "Total number of describe triggers, labeled by outcome.",
	}, []string{"outcome"})

	// CyclesTotal counts completed frame+analysis cycles by outcome.
	CyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iris",
		Subsystem: "orchestrator",
		Name:      "cycles_total",
		Help:      "Total number of completed cycles, labeled by outcome.",
	}, []string{"outcome"})

	// State is the current orchestrator state (0 idle, 1 awaiting frame, 2 awaiting analysis).
	State = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "iris",
		Subsystem: "orchestrator",
		Name:      "state",
		Help:      "Current state of the orchestrator.",
	})

	// ModelAttemptsTotal counts remote model calls.
	ModelAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iris",
		Subsystem: "analysis",
		Name:      "model_attempts_total",
		Help:      "Total number of vision model calls, labeled by provider, model and result.",
	}, []string{"provider", "model", "result"})

	// ModelAttemptDurationSeconds is the latency of a single model call.
	ModelAttemptDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "iris",
		Subsystem: "analysis",
		Name:      "model_attempt_duration_seconds",
		Help:      "Time taken by a single vision model call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "model"})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			TriggersTotal,
			CyclesTotal,
			State,
			ModelAttemptsTotal,
			ModelAttemptDurationSeconds,
		)
	})
}

// Listener feeds orchestrator events into the metrics.
type Listener struct{}

func NewListener() *Listener {
	return &Listener{}
}

func (l *Listener) StateChanged(state domain.State) {
	State.Set(float64(state))
}

func (l *Listener) CycleCompleted(outcome domain.CycleOutcome, _ string) {
	TriggersTotal.WithLabelValues(domain.TriggerOutcomeStarted.String()).Inc()
	CyclesTotal.WithLabelValues(outcome.String()).Inc()
}

func (l *Listener) TriggerRejected(outcome domain.TriggerOutcome) {
	TriggersTotal.WithLabelValues(outcome.String()).Inc()
}

func (l *Listener) SettingsVisibilityChanged(bool) {}
