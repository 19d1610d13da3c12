package ncs

import (
	"math/bits"
	"strconv"
	"strings"
)

// MaxCriteria is the maximal number of criteria a Coalition can hold.
// In practice, the coalition lattice makes instances with more than 12 to 15 criteria intractable.
const MaxCriteria = 20

// A Coalition is a set of criteria, as a bitset: criterion i is in the set iff bit i-1 is set.
type Coalition uint32

// NewCoalition returns the coalition made of the given criteria.
// It panics if a criterion is out of range; use UpwardClosure to validate user input.
func NewCoalition(criteria ...Criterion) Coalition {
	var b Coalition
	for _, i := range criteria {
		b = b.With(i)
	}
	return b
}

// FullCoalition returns the coalition of all n criteria.
func FullCoalition(n int) Coalition {
	return Coalition(1)<<uint(n) - 1
}

// Has returns true iff i is a member of b.
func (b Coalition) Has(i Criterion) bool {
	return b&(1<<uint(i-1)) != 0
}

// With returns b plus criterion i.
func (b Coalition) With(i Criterion) Coalition {
	if i < 1 || i > MaxCriteria {
		panic("criterion out of range")
	}
	return b | 1<<uint(i-1)
}

// Len returns the number of criteria in b.
func (b Coalition) Len() int {
	return bits.OnesCount32(uint32(b))
}

// SubsetOf returns true iff every member of b is a member of other.
func (b Coalition) SubsetOf(other Coalition) bool {
	return b&^other == 0
}

// Complement returns the criteria among 1..n that are not in b.
func (b Coalition) Complement(n int) Coalition {
	return FullCoalition(n) &^ b
}

// Criteria returns the members of b, sorted.
func (b Coalition) Criteria() []Criterion {
	res := make([]Criterion, 0, b.Len())
	for rest := uint32(b); rest != 0; rest &= rest - 1 {
		res = append(res, Criterion(bits.TrailingZeros32(rest)+1))
	}
	return res
}

// Ints returns the members of b as sorted ints, the way they are serialized.
func (b Coalition) Ints() []int {
	crits := b.Criteria()
	res := make([]int, len(crits))
	for i, c := range crits {
		res[i] = int(c)
	}
	return res
}

func (b Coalition) String() string {
	crits := b.Criteria()
	strs := make([]string, len(crits))
	for i, c := range crits {
		strs[i] = strconv.Itoa(int(c))
	}
	if len(strs) == 1 {
		return "(" + strs[0] + ",)"
	}
	return "(" + strings.Join(strs, ", ") + ")"
}

// A Lattice is the set of all 2^n coalitions over n criteria, enumerated once
// by increasing size, then lexicographically.
// Positions in that order are dense, starting at 0.
type Lattice struct {
	n     int
	order []Coalition
	pos   []int32 // For each coalition bitset, its position in order
}

// NewLattice enumerates every coalition over n criteria.
// n must be between 0 and MaxCriteria.
func NewLattice(n int) *Lattice {
	if n < 0 || n > MaxCriteria {
		panic("invalid number of criteria for lattice")
	}
	size := 1 << uint(n)
	l := &Lattice{
		n:     n,
		order: make([]Coalition, 0, size),
		pos:   make([]int32, size),
	}
	for r := 0; r <= n; r++ {
		l.combinations(r, 1, 0)
	}
	for p, b := range l.order {
		l.pos[b] = int32(p)
	}
	return l
}

// combinations appends, in lexicographic order, every coalition made of cur plus r criteria >= from.
func (l *Lattice) combinations(r int, from Criterion, cur Coalition) {
	if r == 0 {
		l.order = append(l.order, cur)
		return
	}
	for i := from; int(i) <= l.n-r+1; i++ {
		l.combinations(r-1, i+1, cur.With(i))
	}
}


// Len returns the number of coalitions, i.e 2^n.
func (l *Lattice) Len() int { return len(l.order) }

// At returns the coalition at position p.
func (l *Lattice) At(p int) Coalition { return l.order[p] }

// Position returns the position of b in the lattice.
func (l *Lattice) Position(b Coalition) int { return int(l.pos[b]) }

// Coalitions returns every coalition in lattice order. The returned slice must not be modified.
func (l *Lattice) Coalitions() []Coalition { return l.order }

// StrictSubsets calls f on each strict subset of b.
func StrictSubsets(b Coalition, f func(sub Coalition)) {
	if b == 0 {
		return
	}
	for sub := (b - 1) & b; ; sub = (sub - 1) & b {
		f(sub)
		if sub == 0 {
			return
		}
	}
}

// UpwardClosure returns every coalition over n criteria that contains at least one of the seeds,
// in lattice order. It is meant for collaborators that hand-pick a minimal set of sufficient coalitions.
// A ConfigurationError is returned if a seed holds a criterion out of 1..n or the same criterion twice.
func UpwardClosure(n int, seeds [][]Criterion) ([]Coalition, error) {
	if n < 1 || n > MaxCriteria {
		return nil, Configurationf("number of criteria %d out of range [1, %d]", n, MaxCriteria)
	}
	bases := make([]Coalition, len(seeds))
	for s, seed := range seeds {
		for _, i := range seed {
			if i < 1 || int(i) > n {
				return nil, Configurationf("seed coalition %v: criterion %d out of range [1, %d]", seed, i, n)
			}
			if bases[s].Has(i) {
				return nil, Configurationf("seed coalition %v: criterion %d appears twice", seed, i)
			}
			bases[s] = bases[s].With(i)
		}
	}
	var res []Coalition
	for _, b := range NewLattice(n).Coalitions() {
		for _, base := range bases {
			if base.SubsetOf(b) {
				res = append(res, b)
				break
			}
		}
	}
	return res, nil
}

// IsUpwardClosed returns true iff every superset, among coalitions over n criteria,
// of a member of family is also a member of family.
func IsUpwardClosed(n int, family []Coalition) bool {
	in := make(map[Coalition]bool, len(family))
	for _, b := range family {
		in[b] = true
	}
	for _, b := range family {
		for i := Criterion(1); int(i) <= n; i++ {
			if !in[b.With(i)] {
				return false
			}
		}
	}
	return true
}
