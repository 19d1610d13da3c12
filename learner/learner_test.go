package learner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/gateway"
	"github.com/crillab/ncsort/generator"
	"github.com/crillab/ncsort/metrics"
	"github.com/crillab/ncsort/ncs"
)

var variants = []ncs.Variant{ncs.ThresholdExact, ncs.ThresholdRelaxed, ncs.IntervalExact, ncs.IntervalRelaxed}

func engines() map[string]gateway.Gateway {
	return map[string]gateway.Gateway{
		"gophersat": gateway.NewGophersat(),
		"gini":      gateway.NewGini(),
	}
}

func example(gs ...int) ncs.Example {
	grades := make([]ncs.Grade, len(gs))
	for i, g := range gs {
		grades[i] = ncs.Grade(g)
	}
	return ncs.Example{Grades: grades}
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

// requireSound checks that every example not discarded by m is sorted back into its own category.
func requireSound(t *testing.T, m *ncs.Model, ds ncs.Dataset) {
	t.Helper()
	discarded := make(map[ncs.ExampleRef]bool)
	for _, ref := range m.Discarded {
		discarded[ref] = true
	}
	for h, exs := range ds {
		for n, ex := range exs {
			ref := ncs.ExampleRef{Category: h, Index: n}
			if discarded[ref] {
				continue
			}
			require.Equal(t, h, m.Classify(ex.Grades), "example %v %v misclassified", ref, ex.Grades)
		}
	}
	require.Equal(t, len(m.Discarded), m.Cost)
	require.True(t, ncs.IsUpwardClosed(m.Dimensions.Criteria, m.Coalitions))
}

func TestScenarioA(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}
	ds := ncs.Dataset{1: {example(6, 6)}, 0: {example(4, 4)}}
	for name, gw := range engines() {
		for _, variant := range variants {
			t.Run(fmt.Sprintf("%s/%s", name, variant), func(t *testing.T) {
				l, err := New(dims, variant, gw, WithLogger(quietLogger()))
				require.NoError(t, err)
				m, err := l.Solve(context.Background(), ds)
				require.NoError(t, err)
				assert.Equal(t, Done, l.State())
				assert.Equal(t, variant, m.Variant)
				assert.Empty(t, m.Discarded)
				requireSound(t, m, ds)
			})
		}
	}
}

func TestScenarioB(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}
	ds := ncs.Dataset{1: {example(5, 5), example(8, 9)}, 0: {example(5, 5), example(1, 2)}}
	for name, gw := range engines() {
		t.Run(name, func(t *testing.T) {
			for _, variant := range []ncs.Variant{ncs.ThresholdExact, ncs.IntervalExact} {
				l, err := New(dims, variant, gw, WithLogger(quietLogger()), WithExplain(true))
				require.NoError(t, err)
				_, err = l.Solve(context.Background(), ds)
				var unsat *ncs.Unsatisfiable
				require.True(t, errors.As(err, &unsat), "%s: expected unsatisfiable, got %v", variant, err)
				assert.Contains(t, unsat.Conflicts, ncs.ExampleRef{Category: 0, Index: 0})
				assert.Contains(t, unsat.Conflicts, ncs.ExampleRef{Category: 1, Index: 0})
				assert.Equal(t, Failed, l.State())
			}
			for _, variant := range []ncs.Variant{ncs.ThresholdRelaxed, ncs.IntervalRelaxed} {
				l, err := New(dims, variant, gw, WithLogger(quietLogger()))
				require.NoError(t, err)
				m, err := l.Solve(context.Background(), ds)
				require.NoError(t, err)
				require.Len(t, m.Discarded, 1, "%s", variant)
				assert.Contains(t, []ncs.ExampleRef{{Category: 0, Index: 0}, {Category: 1, Index: 0}}, m.Discarded[0])
				requireSound(t, m, ds)
			}
		})
	}
}

func TestUnsatisfiableWithoutExplain(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 1, Categories: 1, MaxGrade: 3}
	ds := ncs.Dataset{1: {example(2)}, 0: {example(2)}}
	l, err := New(dims, ncs.ThresholdExact, gateway.NewGophersat(), WithLogger(quietLogger()))
	require.NoError(t, err)
	_, err = l.Solve(context.Background(), ds)
	var unsat *ncs.Unsatisfiable
	require.True(t, errors.As(err, &unsat))
	assert.Empty(t, unsat.Conflicts)
}

// Exact learners must learn a model consistent with examples sorted by any model of the same shape.
func TestTrainingSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	dims := ncs.Dimensions{Criteria: 3, Categories: 2, MaxGrade: 6}
	for _, shape := range []ncs.Shape{ncs.Threshold, ncs.Interval} {
		for run := 0; run < 3; run++ {
			truth, err := generator.RandomModel(rng, dims, shape)
			require.NoError(t, err)
			ds := generator.New(rng, truth).Generate(40)
			for name, gw := range engines() {
				t.Run(fmt.Sprintf("%s/%s/%d", name, shape, run), func(t *testing.T) {
					l, err := New(dims, ncs.Variant{Shape: shape}, gw, WithLogger(quietLogger()))
					require.NoError(t, err)
					m, err := l.Solve(context.Background(), ds)
					require.NoError(t, err)
					requireSound(t, m, ds)
				})
			}
		}
	}
}

// Relaxed learners discard as few examples as possible, at most the ones moved by the noise.
func TestBestEffortBound(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	dims := ncs.Dimensions{Criteria: 2, Categories: 2, MaxGrade: 5}
	truth, err := generator.RandomModel(rng, dims, ncs.Threshold)
	require.NoError(t, err)
	ds, moved := generator.New(rng, truth).GenerateNoisy(30, 0.15)
	var costs []int
	for name, gw := range engines() {
		t.Run(name, func(t *testing.T) {
			l, err := New(dims, ncs.ThresholdRelaxed, gw, WithLogger(quietLogger()))
			require.NoError(t, err)
			m, err := l.Solve(context.Background(), ds)
			require.NoError(t, err)
			requireSound(t, m, ds)
			assert.LessOrEqual(t, m.Cost, len(moved))
			costs = append(costs, m.Cost)
		})
	}
	if len(costs) == 2 {
		assert.Equal(t, costs[0], costs[1], "engines disagree on the optimal cost")
	}
}

func TestLearnedProfilesAreMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	dims := ncs.Dimensions{Criteria: 3, Categories: 3, MaxGrade: 8}
	truth, err := generator.RandomModel(rng, dims, ncs.Interval)
	require.NoError(t, err)
	ds := generator.New(rng, truth).Generate(60)
	for _, variant := range []ncs.Variant{ncs.ThresholdRelaxed, ncs.IntervalExact} {
		l, err := New(dims, variant, gateway.NewGini(), WithLogger(quietLogger()))
		require.NoError(t, err)
		m, err := l.Solve(context.Background(), ds)
		require.NoError(t, err, "%s", variant)
		for i := ncs.Criterion(1); int(i) <= dims.Criteria; i++ {
			for h := ncs.Category(2); int(h) <= dims.Categories; h++ {
				for k := ncs.Grade(0); k <= dims.MaxGrade; k++ {
					if m.Meets(i, h, k) {
						assert.True(t, m.Meets(i, h-1, k), "%s: grade %d meets category %d but not %d", variant, k, h, h-1)
					}
					if variant.Shape == ncs.Threshold && k < dims.MaxGrade && m.Meets(i, h, k) {
						assert.True(t, m.Meets(i, h, k+1), "%s: grade %d meets category %d but %d does not", variant, k, h, k+1)
					}
				}
			}
		}
	}
}

func TestSolveOnce(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 1, Categories: 1, MaxGrade: 3}
	ds := ncs.Dataset{1: {example(3)}, 0: {example(0)}}
	l, err := New(dims, ncs.ThresholdExact, gateway.NewGophersat(), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, Idle, l.State())
	_, err = l.Solve(context.Background(), ds)
	require.NoError(t, err)
	_, err = l.Solve(context.Background(), ds)
	assert.True(t, errors.Is(err, ErrSpent))
	assert.Equal(t, Done, l.State())
}

type failingGateway struct{}

func (failingGateway) Solve(context.Context, *dimacs.Problem) (gateway.Result, error) {
	return gateway.Result{}, &ncs.SolverError{Reason: "boom"}
}

// recordingGateway remembers the problem it was given and answers with res.
type recordingGateway struct {
	res gateway.Result
	pb  *dimacs.Problem
}

func (g *recordingGateway) Solve(_ context.Context, pb *dimacs.Problem) (gateway.Result, error) {
	g.pb = pb
	return g.res, nil
}

func TestFailures(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}
	ds := ncs.Dataset{1: {example(6, 6)}, 0: {example(4, 4)}}

	t.Run("solver error", func(t *testing.T) {
		l, err := New(dims, ncs.ThresholdExact, failingGateway{}, WithLogger(quietLogger()))
		require.NoError(t, err)
		_, err = l.Solve(context.Background(), ds)
		var solverErr *ncs.SolverError
		require.True(t, errors.As(err, &solverErr))
		assert.Equal(t, Failed, l.State())
	})

	t.Run("overflow", func(t *testing.T) {
		l, err := New(dims, ncs.ThresholdExact, failingGateway{}, WithLogger(quietLogger()), WithLimits(clause.Limits{MaxVariables: 10, MaxClauses: 10}))
		require.NoError(t, err)
		_, err = l.Solve(context.Background(), ds)
		var overflow *ncs.EncodingOverflow
		require.True(t, errors.As(err, &overflow))
		assert.Equal(t, Failed, l.State())
	})

	t.Run("invalid examples", func(t *testing.T) {
		l, err := New(dims, ncs.ThresholdExact, failingGateway{}, WithLogger(quietLogger()))
		require.NoError(t, err)
		_, err = l.Solve(context.Background(), ncs.Dataset{1: {example(11, 0)}})
		var cfgErr *ncs.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})

	t.Run("relaxed unsat", func(t *testing.T) {
		gw := &recordingGateway{res: gateway.Result{Status: gateway.Unsat}}
		l, err := New(dims, ncs.ThresholdRelaxed, gw, WithLogger(quietLogger()))
		require.NoError(t, err)
		_, err = l.Solve(context.Background(), ds)
		var solverErr *ncs.SolverError
		require.True(t, errors.As(err, &solverErr))
		require.NotNil(t, gw.pb)
		assert.True(t, gw.pb.Weighted)
	})

	t.Run("inconsistent model", func(t *testing.T) {
		gw := &recordingGateway{}
		l, err := New(dims, ncs.ThresholdRelaxed, gw, WithLogger(quietLogger()))
		require.NoError(t, err)
		// An all-false model discards both examples, but the reported cost is 0.
		gw.res = gateway.Result{Status: gateway.Optimum, Model: gateway.NewAssignment(28)}
		_, err = l.Solve(context.Background(), ds)
		var inconsistent *ncs.DecodeInconsistency
		require.True(t, errors.As(err, &inconsistent), "expected decode inconsistency, got %v", err)
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		_, err := New(ncs.Dimensions{}, ncs.ThresholdExact, failingGateway{})
		var cfgErr *ncs.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
	})
}

func TestSolveAll(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}
	good := ncs.Dataset{1: {example(6, 6)}, 0: {example(4, 4)}}
	bad := ncs.Dataset{1: {example(5, 5)}, 0: {example(5, 5)}}
	jobs := []Job{
		{Name: "good", Variant: ncs.ThresholdExact, Dataset: good},
		{Name: "bad", Variant: ncs.IntervalExact, Dataset: bad},
		{Name: "bad-relaxed", Variant: ncs.IntervalRelaxed, Dataset: bad},
	}
	m := metrics.New()
	factory := func(job Job) (*Learner, error) {
		return New(dims, job.Variant, gateway.NewGini(), WithLogger(quietLogger()), WithMetrics(m))
	}
	outcomes, err := SolveAll(context.Background(), jobs, factory, 2)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for i, outcome := range outcomes {
		assert.Equal(t, jobs[i].Name, outcome.Job.Name)
	}
	require.NoError(t, outcomes[0].Err)
	requireSound(t, outcomes[0].Model, good)
	var unsat *ncs.Unsatisfiable
	assert.True(t, errors.As(outcomes[1].Err, &unsat))
	require.NoError(t, outcomes[2].Err)
	assert.Equal(t, 1, outcomes[2].Model.Cost)

	_, err = SolveAll(context.Background(), jobs, func(Job) (*Learner, error) {
		return nil, errors.New("no engine")
	}, 0)
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	dims := ncs.Dimensions{Criteria: 2, Categories: 1, MaxGrade: 4}
	ds := ncs.Dataset{
		0: {example(0, 0), example(3, 3)},
		1: {example(4, 4), example(3, 3)},
	}
	_, f, err := Encode(dims, ncs.ThresholdExact, ds, clause.DefaultLimits)
	require.NoError(t, err)
	conflicts, err := Explain(f)
	require.NoError(t, err)
	assert.Contains(t, conflicts, ncs.ExampleRef{Category: 0, Index: 1})
	assert.Contains(t, conflicts, ncs.ExampleRef{Category: 1, Index: 1})
	for i := 1; i < len(conflicts); i++ {
		prev, cur := conflicts[i-1], conflicts[i]
		assert.True(t, prev.Category < cur.Category || prev.Category == cur.Category && prev.Index < cur.Index, "conflicts not sorted: %v", conflicts)
	}
}
