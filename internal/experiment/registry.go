package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/balls/internal/metrics"
	"github.com/san-kum/balls/internal/sim"
)

const containmentEps = 1e-6

type Registry struct {
	metrics map[string]func(gravity float64) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(float64) sim.Metric),
	}

	r.metrics["kinetic_energy"] = func(float64) sim.Metric { return metrics.NewKineticEnergy() }
	r.metrics["energy_drift"] = func(g float64) sim.Metric { return metrics.NewEnergyDrift(g) }
	r.metrics["momentum_drift"] = func(float64) sim.Metric { return metrics.NewMomentumDrift() }
	r.metrics["containment"] = func(float64) sim.Metric { return metrics.NewContainment(containmentEps) }
	r.metrics["max_speed"] = func(float64) sim.Metric { return metrics.NewMaxSpeed() }

	return r
}

func (r *Registry) GetMetric(name string, gravity float64) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(gravity), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns one fresh instance of every registered metric.
func (r *Registry) DefaultMetrics(gravity float64) []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name](gravity))
	}
	return out
}
