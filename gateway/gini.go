package gateway

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// pollInterval is how often a running gini search checks its context.
const pollInterval = 10 * time.Millisecond

// Gini is a Gateway solving problems in-process with the gini SAT solver.
//
// Weighted problems must have unit weights. Each soft clause gets a relaxation literal,
// a sorting network counts the true relaxation literals, and the optimal cost is found
// by binary search over the bound given to that network.
type Gini struct{}

// NewGini returns an in-process gini gateway.
func NewGini() *Gini {
	return &Gini{}
}

// giniProblem maps the variables of a problem to the inputs of a circuit,
// so that the cardinality network built on the same circuit shares the solver's variable space.
type giniProblem struct {
	c    *logic.C
	g    *gini.Gini
	vars []z.Lit // vars[v] is the literal for problem variable v
}

func newGiniProblem(pb *dimacs.Problem) *giniProblem {
	c := logic.NewCCap(pb.NbVars + len(pb.Soft) + 2)
	vars := make([]z.Lit, pb.NbVars+1)
	for v := 1; v <= pb.NbVars; v++ {
		vars[v] = c.Lit()
	}
	gp := &giniProblem{c: c, g: gini.NewVc(pb.NbVars+len(pb.Soft)+2, len(pb.Clauses)+len(pb.Soft)), vars: vars}
	for _, clause := range pb.Clauses {
		gp.add(clause)
	}
	return gp
}

func (gp *giniProblem) lit(x int) z.Lit {
	if x < 0 {
		return gp.vars[-x].Not()
	}
	return gp.vars[x]
}

func (gp *giniProblem) add(clause []int, extra ...z.Lit) {
	for _, x := range clause {
		gp.g.Add(gp.lit(x))
	}
	for _, m := range extra {
		gp.g.Add(m)
	}
	gp.g.Add(z.LitNull)
}

func (gp *giniProblem) value(m z.Lit) bool {
	return m.Var() <= gp.g.MaxVar() && gp.g.Value(m)
}

func (gp *giniProblem) model() Assignment {
	a := NewAssignment(len(gp.vars) - 1)
	for v := 1; v < len(gp.vars); v++ {
		a[v] = gp.value(gp.vars[v])
	}
	return a
}

// solve runs the solver under the given assumptions until it finds an answer or ctx is done.
func (gp *giniProblem) solve(ctx context.Context, assumptions ...z.Lit) (int, error) {
	gp.g.Assume(assumptions...)
	s := gp.g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, ok := s.Test(); ok {
			return res, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, &ncs.SolverError{Reason: "solver interrupted", Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

// Solve implements Gateway.
func (gi *Gini) Solve(ctx context.Context, pb *dimacs.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &ncs.SolverError{Reason: "solver interrupted", Err: err}
	}
	if pb.Weighted {
		for i := range pb.Soft {
			if pb.Weight(i) != 1 {
				return Result{}, &ncs.SolverError{Reason: "gini engine only supports unit weights"}
			}
		}
	}
	gp := newGiniProblem(pb)
	if !pb.Weighted {
		res, err := gp.solve(ctx)
		if err != nil {
			return Result{}, err
		}
		switch res {
		case satisfiable:
			return Result{Status: Sat, Model: gp.model()}, nil
		case unsatisfiable:
			return Result{Status: Unsat}, nil
		default:
			return Result{}, &ncs.SolverError{Reason: "solver could not decide"}
		}
	}
	return gi.optimize(ctx, gp, pb)
}

func (gi *Gini) optimize(ctx context.Context, gp *giniProblem, pb *dimacs.Problem) (Result, error) {
	relax := make([]z.Lit, len(pb.Soft))
	for i, clause := range pb.Soft {
		relax[i] = gp.c.Lit()
		gp.add(clause, relax[i])
	}
	cs := gp.c.CardSort(relax)
	var marks []int8
	for w := 0; w <= cs.N(); w++ {
		marks, _ = gp.c.CnfSince(gp.g, marks, cs.Leq(w))
	}
	res, err := gp.solve(ctx)
	if err != nil {
		return Result{}, err
	}
	if res != satisfiable {
		return Result{}, &ncs.SolverError{Reason: "hard clauses reported unsatisfiable"}
	}
	best := gp.model()
	cost := softCost(pb, best)
	// Every bound below lo is known to be infeasible.
	lo := 0
	for lo < cost {
		mid := lo + (cost-1-lo)/2
		res, err := gp.solve(ctx, cs.Leq(mid))
		if err != nil {
			return Result{}, err
		}
		switch res {
		case satisfiable:
			best = gp.model()
			cost = softCost(pb, best)
		case unsatisfiable:
			lo = mid + 1
		default:
			return Result{}, &ncs.SolverError{Reason: "solver could not decide"}
		}
	}
	return Result{Status: Optimum, Model: best, Cost: cost}, nil
}
