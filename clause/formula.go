package clause

import (
	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

// A Family is one of the five families of hard clauses of an NCS encoding.
type Family byte

const (
	// GradeMonotonicity clauses shape the set of grades meeting a requirement.
	GradeMonotonicity = Family(iota + 1)
	// CategoryMonotonicity clauses make requirements of higher categories harder to meet.
	CategoryMonotonicity
	// CoalitionMonotonicity clauses make the family of sufficient coalitions upward-closed.
	CoalitionMonotonicity
	// Ceiling clauses prevent an example from reaching the category above its own.
	Ceiling
	// Floor clauses force an example to reach its own category.
	Floor
)

func (f Family) String() string {
	switch f {
	case GradeMonotonicity:
		return "grade monotonicity"
	case CategoryMonotonicity:
		return "category monotonicity"
	case CoalitionMonotonicity:
		return "coalition monotonicity"
	case Ceiling:
		return "ceiling"
	case Floor:
		return "floor"
	default:
		panic("invalid clause family")
	}
}

// An Origin tells why a hard clause was generated.
// Ceiling and floor clauses are generated for a given example.
type Origin struct {
	Family  Family
	Example ncs.ExampleRef // Only meaningful for Ceiling and Floor clauses
}

// HasExample returns true iff the clause was generated for a specific example.
func (o Origin) HasExample() bool {
	return o.Family == Ceiling || o.Family == Floor
}

// A Formula is the encoding of an NCS learning problem.
// Problem holds the clauses as they will be handed to the engine.
// Origins[j] is the origin of Problem.Clauses[j]; Goals[j] is the example whose soft clause is Problem.Soft[j].
type Formula struct {
	Problem *dimacs.Problem
	Origins []Origin
	Goals   []ncs.ExampleRef
}

func (f *Formula) hard(origin Origin, lits ...int) {
	f.Problem.Clauses = append(f.Problem.Clauses, lits)
	f.Origins = append(f.Origins, origin)
}

func (f *Formula) soft(goal ncs.ExampleRef, lits ...int) {
	f.Problem.Soft = append(f.Problem.Soft, lits)
	f.Goals = append(f.Goals, goal)
}

// Count returns how many clauses of family fam the formula holds.
func (f *Formula) Count(fam Family) int {
	nb := 0
	for _, o := range f.Origins {
		if o.Family == fam {
			nb++
		}
	}
	return nb
}
