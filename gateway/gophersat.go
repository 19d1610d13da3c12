package gateway

import (
	"context"
	"strconv"

	"github.com/crillab/gophersat/maxsat"
	"github.com/crillab/gophersat/solver"

	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

// Gophersat is a Gateway solving problems in-process with the gophersat library:
// its CDCL solver for non-weighted problems, its MAXSAT solver for weighted ones.
// The context is only checked before and after solving: a running search cannot be interrupted.
type Gophersat struct{}

// NewGophersat returns an in-process gophersat gateway.
func NewGophersat() *Gophersat {
	return &Gophersat{}
}

// Solve implements Gateway.
func (g *Gophersat) Solve(ctx context.Context, pb *dimacs.Problem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &ncs.SolverError{Reason: "solver interrupted", Err: err}
	}
	var (
		res Result
		err error
	)
	if pb.Weighted && len(pb.Soft) > 0 {
		res, err = g.optimize(pb)
	} else {
		res, err = g.solve(pb)
	}
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, &ncs.SolverError{Reason: "solver interrupted", Err: err}
	}
	return res, nil
}

func (g *Gophersat) solve(pb *dimacs.Problem) (Result, error) {
	s := solver.New(solver.ParseSlice(pb.Clauses))
	switch s.Solve() {
	case solver.Sat:
		model := NewAssignment(pb.NbVars)
		for i, binding := range s.Model() {
			if i < pb.NbVars {
				model[i+1] = binding
			}
		}
		if pb.Weighted {
			return Result{Status: Optimum, Model: model}, nil
		}
		return Result{Status: Sat, Model: model}, nil
	case solver.Unsat:
		if pb.Weighted {
			return Result{}, &ncs.SolverError{Reason: "hard clauses reported unsatisfiable"}
		}
		return Result{Status: Unsat}, nil
	default:
		return Result{}, &ncs.SolverError{Reason: "solver could not decide"}
	}
}

func (g *Gophersat) optimize(pb *dimacs.Problem) (Result, error) {
	constrs := make([]maxsat.Constr, 0, len(pb.Clauses)+len(pb.Soft))
	for _, clause := range pb.Clauses {
		constrs = append(constrs, maxsat.HardClause(maxsatLits(clause)...))
	}
	for i, clause := range pb.Soft {
		constrs = append(constrs, maxsat.WeightedClause(maxsatLits(clause), pb.Weight(i)))
	}
	bindings, _ := maxsat.New(constrs...).Solve()
	if bindings == nil {
		return Result{}, &ncs.SolverError{Reason: "hard clauses reported unsatisfiable"}
	}
	model := NewAssignment(pb.NbVars)
	for v := 1; v <= pb.NbVars; v++ {
		model[v] = bindings[strconv.Itoa(v)]
	}
	return Result{Status: Optimum, Model: model, Cost: softCost(pb, model)}, nil
}

func maxsatLits(clause []int) []maxsat.Lit {
	lits := make([]maxsat.Lit, len(clause))
	for i, lit := range clause {
		if lit < 0 {
			lits[i] = maxsat.Not(strconv.Itoa(-lit))
		} else {
			lits[i] = maxsat.Var(strconv.Itoa(lit))
		}
	}
	return lits
}
