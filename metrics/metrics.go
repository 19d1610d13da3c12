// Package metrics defines the Prometheus collectors reporting on learning runs and engine calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label names.
const (
	// EngineLabel is the engine an instance was handed to: exec, gophersat or gini.
	EngineLabel = "engine"
	// VariantLabel is the learning variant, as returned by ncs.Variant.String.
	VariantLabel = "variant"
	// Outcome is the label holding one of the outcome values below.
	Outcome = "outcome"
)

// Outcome values.
const (
	// Succeeded calls returned a result, and succeeded runs returned a model.
	Succeeded = "succeeded"
	// Failed calls and runs returned an error.
	Failed = "failed"
	// Unsat runs found no model consistent with the examples.
	Unsat = "unsatisfiable"
)

// Metrics holds every collector. The zero value is not usable; use New.
type Metrics struct {
	solveDuration *prometheus.SummaryVec
	solves        *prometheus.CounterVec
	instanceVars  *prometheus.HistogramVec
	instanceCls   *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	discarded     *prometheus.HistogramVec
}

// New returns a new, unregistered set of collectors.
func New() *Metrics {
	return &Metrics{
		solveDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       "ncsort_solve_duration_seconds",
				Help:       "The duration of a call to a SAT or MaxSAT engine",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{EngineLabel, Outcome},
		),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ncsort_solves_total",
				Help: "Monotonic count of calls to a SAT or MaxSAT engine",
			},
			[]string{EngineLabel, Outcome},
		),
		instanceVars: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ncsort_instance_variables",
				Help:    "Number of propositional variables of encoded instances",
				Buckets: prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{VariantLabel},
		),
		instanceCls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ncsort_instance_clauses",
				Help:    "Number of clauses of encoded instances",
				Buckets: prometheus.ExponentialBuckets(16, 4, 12),
			},
			[]string{VariantLabel},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ncsort_learner_runs_total",
				Help: "Monotonic count of learning runs",
			},
			[]string{VariantLabel, Outcome},
		),
		discarded: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ncsort_discarded_examples",
				Help:    "Number of examples discarded by relaxed learners",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
			[]string{VariantLabel},
		),
	}
}

// Collectors returns every collector of m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.solveDuration, m.solves, m.instanceVars, m.instanceCls, m.runs, m.discarded}
}

// Register registers every collector of m on reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// SolveEmitter returns a function recording a call to engine that ended with outcome and lasted the given duration.
func (m *Metrics) SolveEmitter(engine, outcome string) func(time.Duration) {
	return func(d time.Duration) {
		m.solveDuration.WithLabelValues(engine, outcome).Observe(d.Seconds())
		m.solves.WithLabelValues(engine, outcome).Inc()
	}
}

// ObserveInstance records the size of an encoded instance.
func (m *Metrics) ObserveInstance(variant string, nbVars, nbClauses int) {
	m.instanceVars.WithLabelValues(variant).Observe(float64(nbVars))
	m.instanceCls.WithLabelValues(variant).Observe(float64(nbClauses))
}

// ObserveRun records the outcome of a learning run.
// discarded is only recorded for successful runs.
func (m *Metrics) ObserveRun(variant, outcome string, discarded int) {
	m.runs.WithLabelValues(variant, outcome).Inc()
	if outcome == Succeeded {
		m.discarded.WithLabelValues(variant).Observe(float64(discarded))
	}
}

// WriteToTextfile writes the metrics gathered by g to path, in the Prometheus text format.
func WriteToTextfile(g prometheus.Gatherer, path string) error {
	return prometheus.WriteToTextfile(path, g)
}
