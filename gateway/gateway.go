// Package gateway hands propositional problems over to a SAT or MaxSAT engine
// and brings back the engine's verdict.
//
// Three engines are provided: Exec runs an external gophersat-compatible binary,
// Gophersat and Gini solve the problem in-process.
// Instrumented wraps any of them to report solving durations.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/crillab/ncsort/dimacs"
)

// Status is the verdict of an engine on a problem.
type Status byte

const (
	// Indet means the engine could not decide.
	Indet = Status(iota)
	// Sat means the hard clauses of the problem are satisfiable.
	Sat
	// Unsat means the hard clauses of the problem are not satisfiable.
	Unsat
	// Optimum means a model minimizing the weight of falsified soft clauses was found.
	Optimum
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SATISFIABLE"
	case Unsat:
		return "UNSATISFIABLE"
	case Optimum:
		return "OPTIMUM FOUND"
	default:
		panic("invalid status")
	}
}

// ParseStatus returns the status named s on an "s" line of an engine's output.
func ParseStatus(s string) (Status, bool) {
	switch strings.TrimSpace(s) {
	case "SATISFIABLE":
		return Sat, true
	case "UNSATISFIABLE":
		return Unsat, true
	case "OPTIMUM FOUND":
		return Optimum, true
	case "INDETERMINATE", "UNKNOWN":
		return Indet, true
	default:
		return Indet, false
	}
}

// An Assignment associates each variable with a binding.
// It is 1-based: index 0 is unused, so that a[v] is the binding of variable v.
type Assignment []bool

// NewAssignment returns an assignment of nbVars variables, all false.
func NewAssignment(nbVars int) Assignment {
	return make(Assignment, nbVars+1)
}

// NbVars returns the number of variables of a.
func (a Assignment) NbVars() int {
	if len(a) == 0 {
		return 0
	}
	return len(a) - 1
}

// Value returns the binding of variable v. Unknown variables are false.
func (a Assignment) Value(v int) bool {
	return v > 0 && v < len(a) && a[v]
}

// Satisfies returns true iff at least one literal of clause is true under a.
func (a Assignment) Satisfies(clause []int) bool {
	for _, lit := range clause {
		if (lit > 0) == a.Value(abs(lit)) {
			return true
		}
	}
	return false
}

func (a Assignment) String() string {
	var sb strings.Builder
	for v := 1; v < len(a); v++ {
		if v > 1 {
			sb.WriteByte(' ')
		}
		if !a[v] {
			sb.WriteByte('-')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// A Result is what an engine found.
// Model is only set when Status is Sat or Optimum.
// Cost is the total weight of the soft clauses falsified by Model; it is 0 for non-weighted problems.
type Result struct {
	Status Status
	Model  Assignment
	Cost   int
}

// A Gateway solves propositional problems.
//
// For a non-weighted problem, a Gateway returns either a Sat result with a model,
// or an Unsat result.
// For a weighted problem, it returns an Optimum result with a model and its cost:
// an unsatisfiable set of hard clauses is reported as an error.
// Any failure of the engine is reported as an *ncs.SolverUnavailable or *ncs.SolverError.
type Gateway interface {
	Solve(ctx context.Context, pb *dimacs.Problem) (Result, error)
}

// softCost returns the total weight of the soft clauses of pb falsified by a.
func softCost(pb *dimacs.Problem, a Assignment) int {
	cost := 0
	for i, clause := range pb.Soft {
		if !a.Satisfies(clause) {
			cost += pb.Weight(i)
		}
	}
	return cost
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
