// Package learner learns NCS sorting models from labeled examples.
//
// A Learner encodes its examples into clauses, hands them to a gateway, and decodes
// the engine's answer into a model. Each Learner is single-use: it goes through
// Idle, Encoding, Solving and Decoding, and ends up Done or Failed.
package learner

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/decode"
	"github.com/crillab/ncsort/gateway"
	"github.com/crillab/ncsort/metrics"
	"github.com/crillab/ncsort/ncs"
)

// State is the stage a Learner is in.
type State byte

const (
	// Idle learners have not been asked to solve anything yet.
	Idle = State(iota)
	// Encoding learners are building the clauses of their examples.
	Encoding
	// Solving learners are waiting for the engine's answer.
	Solving
	// Decoding learners are turning the engine's assignment into a model.
	Decoding
	// Done learners have returned a model.
	Done
	// Failed learners have returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Encoding:
		return "encoding"
	case Solving:
		return "solving"
	case Decoding:
		return "decoding"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		panic("invalid state")
	}
}

// ErrSpent is returned when Solve is called on a learner that was already used.
var ErrSpent = errors.New("learner already used; create a new one")

// A Learner learns one model of a given variant.
type Learner struct {
	dims    ncs.Dimensions
	variant ncs.Variant
	gateway gateway.Gateway
	logger  logrus.FieldLogger
	limits  clause.Limits
	explain bool
	metrics *metrics.Metrics

	mu    sync.Mutex
	state State
}

// An Option configures a Learner.
type Option func(*Learner)

// WithLogger sets the logger the learner reports its progress to.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(l *Learner) {
		l.logger = logger
	}
}

// WithLimits sets the maximal size of the encoded instance.
func WithLimits(limits clause.Limits) Option {
	return func(l *Learner) {
		l.limits = limits
	}
}

// WithExplain makes exact learners list the examples involved in a contradiction
// when no model is consistent with the examples.
func WithExplain(explain bool) Option {
	return func(l *Learner) {
		l.explain = explain
	}
}

// WithMetrics makes the learner report instance sizes and outcomes to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Learner) {
		l.metrics = m
	}
}

// New returns an idle learner of the given variant, solving with gw.
func New(dims ncs.Dimensions, variant ncs.Variant, gw gateway.Gateway, opts ...Option) (*Learner, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, ncs.Configurationf("no solver gateway")
	}
	l := &Learner{
		dims:    dims,
		variant: variant,
		gateway: gw,
		logger:  logrus.StandardLogger(),
		limits:  clause.DefaultLimits,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// State returns the current state of l.
func (l *Learner) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Learner) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// Encode builds the indexer and the formula for learning a model of the given variant from ds.
func Encode(dims ncs.Dimensions, variant ncs.Variant, ds ncs.Dataset, limits clause.Limits) (*clause.Indexer, *clause.Formula, error) {
	if err := ds.Validate(dims); err != nil {
		return nil, nil, err
	}
	ix, err := clause.NewIndexer(dims, ds.Sizes(dims.Categories), variant.Relaxed, limits)
	if err != nil {
		return nil, nil, err
	}
	f, err := clause.Build(ix, ds, variant.Shape, limits)
	if err != nil {
		return nil, nil, err
	}
	return ix, f, nil
}

// Solve learns a model consistent with ds.
//
// Exact learners return an *ncs.Unsatisfiable error if no model is consistent with every example.
// Relaxed learners always return a model, along with the examples it does not explain.
// A Learner can only Solve once: later calls return ErrSpent.
func (l *Learner) Solve(ctx context.Context, ds ncs.Dataset) (*ncs.Model, error) {
	l.mu.Lock()
	if l.state != Idle {
		l.mu.Unlock()
		return nil, ErrSpent
	}
	l.state = Encoding
	l.mu.Unlock()

	logger := l.logger.WithFields(logrus.Fields{"variant": l.variant, "examples": ds.Len()})
	m, err := l.solve(ctx, ds, logger)
	if err != nil {
		l.setState(Failed)
		l.observe(metricsOutcome(err), 0)
		logger.WithError(err).Info("learning failed")
		return nil, err
	}
	l.setState(Done)
	l.observe(metrics.Succeeded, len(m.Discarded))
	logger.WithField("discarded", len(m.Discarded)).Info("model learned")
	return m, nil
}

func (l *Learner) solve(ctx context.Context, ds ncs.Dataset, logger logrus.FieldLogger) (*ncs.Model, error) {
	logger.Debug("encoding examples")
	ix, f, err := Encode(l.dims, l.variant, ds, l.limits)
	if err != nil {
		return nil, err
	}
	pb := f.Problem
	if l.metrics != nil {
		l.metrics.ObserveInstance(l.variant.String(), pb.NbVars, pb.NbClauses())
	}

	l.setState(Solving)
	logger.WithFields(logrus.Fields{"vars": pb.NbVars, "clauses": pb.NbClauses()}).Debug("solving")
	res, err := l.gateway.Solve(ctx, pb)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case gateway.Sat, gateway.Optimum:
	case gateway.Unsat:
		if l.variant.Relaxed {
			return nil, &ncs.SolverError{Reason: "relaxed instance reported unsatisfiable"}
		}
		unsat := &ncs.Unsatisfiable{}
		if l.explain {
			conflicts, err := Explain(f)
			if err != nil {
				logger.WithError(err).Warn("could not explain contradiction")
			}
			unsat.Conflicts = conflicts
		}
		return nil, unsat
	default:
		return nil, &ncs.SolverError{Reason: "unexpected verdict " + res.Status.String()}
	}

	l.setState(Decoding)
	logger.WithField("cost", res.Cost).Debug("decoding")
	return decode.Decode(ix, l.variant.Shape, res.Model, res.Cost)
}

func (l *Learner) observe(outcome string, discarded int) {
	if l.metrics != nil {
		l.metrics.ObserveRun(l.variant.String(), outcome, discarded)
	}
}

func metricsOutcome(err error) string {
	var unsat *ncs.Unsatisfiable
	if errors.As(err, &unsat) {
		return metrics.Unsat
	}
	return metrics.Failed
}
