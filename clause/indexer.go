package clause

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/crillab/ncsort/ncs"
)

// Limits bound the size of the instances an encoding may produce.
// They reflect the practical limits of the external engines.
type Limits struct {
	MaxVariables uint64
	MaxClauses   uint64
}

// DefaultLimits are the limits used when none are provided.
var DefaultLimits = Limits{
	MaxVariables: 1 << 24,
	MaxClauses:   1 << 26,
}

// A Kind is one of the three families of propositional variables.
type Kind byte

const (
	// KindX variables mean "grade k on criterion i meets the requirement of category h".
	KindX = Kind(iota)
	// KindY variables mean "coalition B is sufficient".
	KindY
	// KindZ variables mean "example n of category h is explained by the model". Only used in relaxed mode.
	KindZ
)

func (k Kind) String() string {
	switch k {
	case KindX:
		return "x"
	case KindY:
		return "y"
	case KindZ:
		return "z"
	default:
		panic("invalid kind")
	}
}

// A Var is the proposition associated with a variable identifier.
// Only the fields relevant to its Kind are set.
type Var struct {
	Kind      Kind
	Criterion ncs.Criterion // X
	Category  ncs.Category  // X, Z
	Grade     ncs.Grade     // X
	Coalition ncs.Coalition // Y
	Example   int           // Z
}

func (v Var) String() string {
	switch v.Kind {
	case KindX:
		return fmt.Sprintf("x(%d, %d, %d)", v.Criterion, v.Category, v.Grade)
	case KindY:
		return fmt.Sprintf("y%s", v.Coalition)
	default:
		return fmt.Sprintf("z(%d, %d)", v.Category, v.Example)
	}
}

// An Indexer associates each proposition of an NCS encoding with a dense, 1-based variable identifier,
// and back. Identifiers are laid out as follows: every X, ordered by criterion, category, then grade;
// then every Y in lattice order; then, in relaxed mode, every Z ordered by category then example index.
//
// An Indexer is built once per learning problem and shared, read-only, by the clause builder and the decoder.
type Indexer struct {
	dims     ncs.Dimensions
	lattice  *ncs.Lattice
	relaxed  bool
	nbX      int
	nbY      int
	zOffsets []int // zOffsets[h] is the number of Z vars for categories < h; len is H+2
	nbVars   int
}

// NewIndexer returns an indexer for a problem of the given dimensions.
// sizes[h] is the number of examples assigned to category h; it is only used in relaxed mode.
// An EncodingOverflow is returned if the problem needs more variables than allowed by limits.
func NewIndexer(dims ncs.Dimensions, sizes []int, relaxed bool, limits Limits) (*Indexer, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if dims.Criteria > ncs.MaxCriteria {
		return nil, &ncs.EncodingOverflow{What: "criteria", Count: uint64(dims.Criteria), Limit: ncs.MaxCriteria}
	}
	nbX := mul(mul(uint64(dims.Criteria), uint64(dims.Categories)), uint64(dims.NbGrades()))
	nbY := uint64(1) << uint(dims.Criteria)
	total := add(nbX, nbY)
	zOffsets := make([]int, dims.Categories+2)
	if relaxed {
		if len(sizes) != dims.Categories+1 {
			return nil, ncs.Configurationf("got example counts for %d categories, expected %d", len(sizes), dims.Categories+1)
		}
		for h, size := range sizes {
			zOffsets[h+1] = zOffsets[h] + size
		}
		total = add(total, uint64(zOffsets[len(zOffsets)-1]))
	}
	if total > limits.MaxVariables || total > math.MaxInt32 {
		return nil, &ncs.EncodingOverflow{What: "variables", Count: total, Limit: limits.MaxVariables}
	}
	return &Indexer{
		dims:     dims,
		lattice:  ncs.NewLattice(dims.Criteria),
		relaxed:  relaxed,
		nbX:      int(nbX),
		nbY:      int(nbY),
		zOffsets: zOffsets,
		nbVars:   int(total),
	}, nil
}

// Dimensions returns the dimensions of the indexed problem.
func (ix *Indexer) Dimensions() ncs.Dimensions { return ix.dims }

// Lattice returns the coalition lattice the Y variables are built on.
func (ix *Indexer) Lattice() *ncs.Lattice { return ix.lattice }

// Relaxed returns true iff the indexer holds Z variables.
func (ix *Indexer) Relaxed() bool { return ix.relaxed }

// NbVars returns the total number of variables.
func (ix *Indexer) NbVars() int { return ix.nbVars }

// NbExamples returns the number of Z variables.
func (ix *Indexer) NbExamples() int { return ix.zOffsets[len(ix.zOffsets)-1] }

// X returns the identifier of "grade k on criterion i meets the requirement of category h".
func (ix *Indexer) X(i ncs.Criterion, h ncs.Category, k ncs.Grade) int {
	return 1 + ((int(i)-1)*ix.dims.Categories+int(h)-1)*ix.dims.NbGrades() + int(k)
}

// Y returns the identifier of "coalition b is sufficient".
func (ix *Indexer) Y(b ncs.Coalition) int {
	return 1 + ix.nbX + ix.lattice.Position(b)
}

// Z returns the identifier of "example n of category h is explained".
// It panics if the indexer is not relaxed.
func (ix *Indexer) Z(h ncs.Category, n int) int {
	if !ix.relaxed {
		panic("no Z variable in exact mode")
	}
	return 1 + ix.nbX + ix.nbY + ix.zOffsets[h] + n
}

// Var returns the proposition associated with identifier id.
// ok is false if id is not a valid identifier.
func (ix *Indexer) Var(id int) (v Var, ok bool) {
	if id < 1 || id > ix.nbVars {
		return Var{}, false
	}
	idx := id - 1
	if idx < ix.nbX {
		nbGrades := ix.dims.NbGrades()
		k := idx % nbGrades
		rest := idx / nbGrades
		h := rest%ix.dims.Categories + 1
		i := rest/ix.dims.Categories + 1
		return Var{Kind: KindX, Criterion: ncs.Criterion(i), Category: ncs.Category(h), Grade: ncs.Grade(k)}, true
	}
	idx -= ix.nbX
	if idx < ix.nbY {
		return Var{Kind: KindY, Coalition: ix.lattice.At(idx)}, true
	}
	idx -= ix.nbY
	h := 0
	for ix.zOffsets[h+1] <= idx {
		h++
	}
	return Var{Kind: KindZ, Category: ncs.Category(h), Example: idx - ix.zOffsets[h]}, true
}

// mul and add saturate at the max uint64 value instead of overflowing.
func mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func add(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}
