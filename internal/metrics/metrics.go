// Package metrics exposes Prometheus counters for the simulation and the
// save gateway. A nil *Metrics is valid and records nothing, so tests and
// tools can skip wiring it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Ticks      prometheus.Counter
	Births     prometheus.Counter
	Evolutions *prometheus.CounterVec
	Deaths     *prometheus.CounterVec
	Saves      *prometheus.CounterVec
	Loads      *prometheus.CounterVec
	Generation prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "lifecycle_ticks_total",
			Help: "Lifecycle ticks that advanced the active worm.",
		}),
		Births: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "worms_born_total",
			Help: "Worms created, including generation 1.",
		}),
		Evolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "worm_evolutions_total",
			Help: "Life stage transitions by destination stage.",
		}, []string{"stage"}),
		Deaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "worm_deaths_total",
			Help: "Worm deaths by cause.",
		}, []string{"cause"}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "saves_total",
			Help: "Save attempts by result (ok, failed, restored).",
		}, []string{"result"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wormlife", Name: "loads_total",
			Help: "Save loads by source (primary, backup, fresh).",
		}, []string{"source"}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wormlife", Name: "active_generation",
			Help: "Generation of the active worm.",
		}),
	}
	reg.MustRegister(m.Ticks, m.Births, m.Evolutions, m.Deaths, m.Saves, m.Loads, m.Generation)
	return m
}

func (m *Metrics) Tick() {
	if m != nil {
		m.Ticks.Inc()
	}
}

func (m *Metrics) Born(generation int) {
	if m != nil {
		m.Births.Inc()
		m.Generation.Set(float64(generation))
	}
}

func (m *Metrics) Evolved(stage string) {
	if m != nil {
		m.Evolutions.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) Died(cause string) {
	if m != nil {
		m.Deaths.WithLabelValues(cause).Inc()
	}
}

func (m *Metrics) Saved(result string) {
	if m != nil {
		m.Saves.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Loaded(source string) {
	if m != nil {
		m.Loads.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) ActiveGeneration(generation int) {
	if m != nil {
		m.Generation.Set(float64(generation))
	}
}
