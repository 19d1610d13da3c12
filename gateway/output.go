package gateway

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/ncsort/ncs"
)

// ParseOutput reads the standard output of a gophersat-compatible engine.
//
// Lines starting with "c" are comments. An "o <cost>" line reports the cost of the best model found so far;
// only the last one matters. The "s <verdict>" line holds the verdict.
// "v" lines hold the model, as signed variable identifiers, possibly prefixed with "x", ending with 0.
// Identifiers greater than nbVars are auxiliary variables of the engine and are ignored.
//
// For a non-weighted problem, a verdict is mandatory, and a model must follow a SATISFIABLE verdict.
// For a weighted problem, an OPTIMUM FOUND verdict, a cost and a model are mandatory: the last cost of an
// engine that was interrupted or undecided is only an upper bound.
// Any violation of these rules is returned as an *ncs.SolverError.
func ParseOutput(r io.Reader, weighted bool, nbVars int) (Result, error) {
	var (
		status    Status
		sawStatus bool
		cost      int
		sawCost   bool
		sawModel  bool
		model     = NewAssignment(nbVars)
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch line[0] {
		case 'c':
		case 'o':
			val, err := strconv.Atoi(strings.TrimSpace(line[1:]))
			if err != nil {
				return Result{}, &ncs.SolverError{Reason: "invalid cost line " + strconv.Quote(line), Err: err}
			}
			cost, sawCost = val, true
		case 's':
			st, ok := ParseStatus(line[1:])
			if !ok {
				return Result{}, &ncs.SolverError{Reason: "unknown verdict " + strconv.Quote(line)}
			}
			status, sawStatus = st, true
		case 'v':
			if err := parseModelLine(line[1:], model); err != nil {
				return Result{}, err
			}
			sawModel = true
		default:
			return Result{}, &ncs.SolverError{Reason: "unexpected output line " + strconv.Quote(line)}
		}
	}
	if err := sc.Err(); err != nil {
		return Result{}, &ncs.SolverError{Reason: "could not read solver output", Err: err}
	}
	if weighted {
		switch {
		case !sawStatus:
			return Result{}, &ncs.SolverError{Reason: "no verdict in solver output"}
		case status == Unsat:
			return Result{}, &ncs.SolverError{Reason: "hard clauses reported unsatisfiable"}
		case status == Indet:
			return Result{}, &ncs.SolverError{Reason: "solver could not decide"}
		case status != Optimum:
			return Result{}, &ncs.SolverError{Reason: "solver did not prove optimality"}
		case !sawCost:
			return Result{}, &ncs.SolverError{Reason: "no cost in solver output"}
		case !sawModel:
			return Result{}, &ncs.SolverError{Reason: "no model in solver output"}
		}
		return Result{Status: Optimum, Model: model, Cost: cost}, nil
	}
	switch {
	case !sawStatus:
		return Result{}, &ncs.SolverError{Reason: "no verdict in solver output"}
	case status == Unsat:
		return Result{Status: Unsat}, nil
	case status == Indet:
		return Result{}, &ncs.SolverError{Reason: "solver could not decide"}
	case !sawModel:
		return Result{}, &ncs.SolverError{Reason: "no model in solver output"}
	}
	return Result{Status: Sat, Model: model}, nil
}

func parseModelLine(line string, model Assignment) error {
	for _, field := range strings.Fields(line) {
		neg := strings.HasPrefix(field, "-")
		name := strings.TrimPrefix(strings.TrimPrefix(field, "-"), "x")
		v, err := strconv.Atoi(name)
		if err != nil || v < 0 {
			return &ncs.SolverError{Reason: "invalid literal " + strconv.Quote(field) + " in model"}
		}
		if v == 0 {
			return nil
		}
		if v <= model.NbVars() {
			model[v] = !neg
		}
	}
	return nil
}
