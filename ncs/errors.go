package ncs

import (
	"fmt"
	"strings"
)

// A ConfigurationError is returned when the dimensions of a problem, its examples
// or a hand-picked seed coalition are malformed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Configurationf returns a new ConfigurationError with a formatted reason.
func Configurationf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// An EncodingOverflow is returned when an instance would need more variables or clauses
// than the configured limits allow. Instances are never silently truncated.
type EncodingOverflow struct {
	What  string // "variables", "clauses" or "criteria"
	Count uint64 // Required amount, saturated at the max uint64 value.
	Limit uint64
}

func (e *EncodingOverflow) Error() string {
	return fmt.Sprintf("encoding overflow: %d %s needed, limit is %d", e.Count, e.What, e.Limit)
}

// A SolverUnavailable error is returned when the external engine cannot be located or executed.
type SolverUnavailable struct {
	Path string
	Err  error
}

func (e *SolverUnavailable) Error() string {
	return fmt.Sprintf("solver %q unavailable: %v", e.Path, e.Err)
}

func (e *SolverUnavailable) Unwrap() error { return e.Err }

// A SolverError is returned when the engine exits with an unexpected status
// or when its output cannot be understood.
type SolverError struct {
	Reason string
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err == nil {
		return "solver error: " + e.Reason
	}
	return fmt.Sprintf("solver error: %s: %v", e.Reason, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// An Unsatisfiable error is returned by exact learners when no sorting model is consistent with the examples.
// Relaxed learners never return it.
// If the learner was asked to explain failures, Conflicts lists examples whose constraints
// are involved in the contradiction.
type Unsatisfiable struct {
	Conflicts []ExampleRef
}

func (e *Unsatisfiable) Error() string {
	const msg = "no sorting model is consistent with the examples"
	if len(e.Conflicts) == 0 {
		return msg
	}
	refs := make([]string, len(e.Conflicts))
	for i, ref := range e.Conflicts {
		refs[i] = ref.String()
	}
	return fmt.Sprintf("%s: conflicting examples %s", msg, strings.Join(refs, ", "))
}

// A DecodeInconsistency is returned when the assignment found by the engine violates an invariant
// guaranteed by the encoding. It reveals a bug in the encoder or in the engine and is never retried.
type DecodeInconsistency struct {
	Reason string
}

func (e *DecodeInconsistency) Error() string {
	return "inconsistent assignment: " + e.Reason
}
