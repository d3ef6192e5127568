package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Roll outcome labels.
const (
	RollOutcomeFresh  = "fresh"
	RollOutcomeRepeat = "repeat"
)

// RollMetrics counts dice-discount roll activity.
type RollMetrics struct {
	resolved     *prometheus.CounterVec
	configErrors prometheus.Counter
	raceLost     prometheus.Counter
}

// NewRollMetrics registers the roll engine metrics on the provided registerer.
func NewRollMetrics(reg prometheus.Registerer) *RollMetrics {
	if reg == nil {
		return &RollMetrics{}
	}
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roll_resolved_total",
		Help: "Roll requests resolved, labeled fresh or repeat.",
	}, []string{"outcome"})
	configErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roll_config_errors_total",
		Help: "Roll requests rejected because the reward configuration was invalid.",
	})
	raceLost := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roll_race_lost_total",
		Help: "Roll inserts that lost the per-user race and returned the winning attempt.",
	})
	reg.MustRegister(resolved, configErrors, raceLost)
	return &RollMetrics{
		resolved:     resolved,
		configErrors: configErrors,
		raceLost:     raceLost,
	}
}

// IncResolved counts one resolved roll with the given outcome label.
func (r *RollMetrics) IncResolved(outcome string) {
	if r == nil || r.resolved == nil {
		return
	}
	r.resolved.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConfigError counts one configuration rejection.
func (r *RollMetrics) IncConfigError() {
	if r == nil || r.configErrors == nil {
		return
	}
	r.configErrors.Inc()
}

// IncRaceLost counts one insert that collided with a concurrent roll.
func (r *RollMetrics) IncRaceLost() {
	if r == nil || r.raceLost == nil {
		return
	}
	r.raceLost.Inc()
}
