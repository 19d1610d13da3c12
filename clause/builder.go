// Package clause translates an NCS learning problem into propositional clauses.
//
// # Variables
//
// Three families of propositions are indexed by an Indexer:
// x(i, h, k) means grade k on criterion i meets the requirement of category h,
// y(B) means coalition B is sufficient, and, in relaxed mode,
// z(h, n) means the n-th example of category h is explained by the model.
//
// # Clauses
//
// Five families of hard clauses make any model of the formula a well-formed sorting model
// consistent with the examples:
//
//  1. grade monotonicity: for threshold profiles, x(i,h,k) -> x(i,h,k2) for k < k2;
//     for interval profiles, no gap: not (x(i,h,k) and x(i,h,k3) and not x(i,h,k2)) for k < k2 < k3.
//  2. category monotonicity: x(i,h2,k) -> x(i,h,k) for h < h2.
//  3. coalition monotonicity: y(B) -> y(B2) for B strictly included in B2.
//  4. ceiling: an example u of category h-1 does not reach h:
//     for every B, not x(i,h,u_i) for some i in B, or not y(B) [or not z(h-1,u)].
//  5. floor: an example a of category h reaches h:
//     for every B, x(i,h,a_i) for some i in B, or y(complement of B) [or not z(h,a)].
//
// In relaxed mode, each z(h,n) is also a soft goal of weight 1, so that an optimal solution
// discards as few examples as possible.
package clause

import (
	"github.com/crillab/ncsort/dimacs"
	"github.com/crillab/ncsort/ncs"
)

// Build returns the formula encoding the problem of learning a model of the given shape from ds.
// The variables are those of ix; the mode (exact or relaxed) is the one of ix.
// An EncodingOverflow is returned, before any clause is generated, if the formula would hold
// more clauses than allowed by limits.
func Build(ix *Indexer, ds ncs.Dataset, shape ncs.Shape, limits Limits) (*Formula, error) {
	dims := ix.Dimensions()
	if err := ds.Validate(dims); err != nil {
		return nil, err
	}
	sizes := ds.Sizes(dims.Categories)
	nbClauses := CountClauses(dims, sizes, shape)
	if nbClauses > limits.MaxClauses {
		return nil, &ncs.EncodingOverflow{What: "clauses", Count: nbClauses, Limit: limits.MaxClauses}
	}
	b := builder{
		ix:    ix,
		dims:  dims,
		ds:    ds,
		shape: shape,
		f: &Formula{
			Problem: &dimacs.Problem{
				NbVars:   ix.NbVars(),
				Clauses:  make([][]int, 0, nbClauses),
				Weighted: ix.Relaxed(),
			},
			Origins: make([]Origin, 0, nbClauses),
		},
	}
	b.gradeMonotonicity()
	b.categoryMonotonicity()
	b.coalitionMonotonicity()
	b.ceiling()
	b.floor()
	if ix.Relaxed() {
		b.goals()
	}
	return b.f, nil
}

// CountClauses returns the number of hard clauses Build generates for a problem of the given dimensions,
// where sizes[h] is the number of examples of category h.
// The result saturates at the max uint64 value.
func CountClauses(dims ncs.Dimensions, sizes []int, shape ncs.Shape) uint64 {
	n := uint64(dims.Criteria)
	nbCats := uint64(dims.Categories)
	nbGrades := uint64(dims.NbGrades())
	var total uint64
	if shape == ncs.Interval {
		total = mul(mul(n, nbCats), choose(nbGrades, 3))
	} else {
		total = mul(mul(n, nbCats), choose(nbGrades, 2))
	}
	total = add(total, mul(mul(n, nbGrades), choose(nbCats, 2)))
	pow2, pow3 := uint64(1), uint64(1)
	for i := uint64(0); i < n; i++ {
		pow2 = mul(pow2, 2)
		pow3 = mul(pow3, 3)
	}
	total = add(total, pow3-pow2)
	var nbExamples uint64
	for h := 1; h <= dims.Categories && h < len(sizes); h++ {
		nbExamples = add(nbExamples, uint64(sizes[h-1])+uint64(sizes[h]))
	}
	return add(total, mul(pow2, nbExamples))
}

func choose(n, k uint64) uint64 {
	if n < k {
		return 0
	}
	res := uint64(1)
	for i := uint64(0); i < k; i++ {
		res = mul(res, n-i)
	}
	for i := uint64(2); i <= k; i++ {
		res /= i
	}
	return res
}

type builder struct {
	ix    *Indexer
	dims  ncs.Dimensions
	ds    ncs.Dataset
	shape ncs.Shape
	f     *Formula
}

func (b *builder) criteria(fn func(i ncs.Criterion)) {
	for i := ncs.Criterion(1); int(i) <= b.dims.Criteria; i++ {
		fn(i)
	}
}

func (b *builder) gradeMonotonicity() {
	origin := Origin{Family: GradeMonotonicity}
	maxGrade := b.dims.MaxGrade
	b.criteria(func(i ncs.Criterion) {
		for h := ncs.Category(1); int(h) <= b.dims.Categories; h++ {
			for k := ncs.Grade(0); k <= maxGrade; k++ {
				for k2 := k + 1; k2 <= maxGrade; k2++ {
					if b.shape == ncs.Threshold {
						b.f.hard(origin, b.ix.X(i, h, k2), -b.ix.X(i, h, k))
						continue
					}
					for k3 := k2 + 1; k3 <= maxGrade; k3++ {
						b.f.hard(origin, b.ix.X(i, h, k2), -b.ix.X(i, h, k), -b.ix.X(i, h, k3))
					}
				}
			}
		}
	})
}

func (b *builder) categoryMonotonicity() {
	origin := Origin{Family: CategoryMonotonicity}
	b.criteria(func(i ncs.Criterion) {
		for h := ncs.Category(1); int(h) <= b.dims.Categories; h++ {
			for h2 := h + 1; int(h2) <= b.dims.Categories; h2++ {
				for k := ncs.Grade(0); k <= b.dims.MaxGrade; k++ {
					b.f.hard(origin, b.ix.X(i, h, k), -b.ix.X(i, h2, k))
				}
			}
		}
	})
}

func (b *builder) coalitionMonotonicity() {
	origin := Origin{Family: CoalitionMonotonicity}
	for _, super := range b.ix.Lattice().Coalitions() {
		ySuper := b.ix.Y(super)
		ncs.StrictSubsets(super, func(sub ncs.Coalition) {
			b.f.hard(origin, ySuper, -b.ix.Y(sub))
		})
	}
}

func (b *builder) ceiling() {
	for h := ncs.Category(1); int(h) <= b.dims.Categories; h++ {
		for n, u := range b.ds[h-1] {
			origin := Origin{Family: Ceiling, Example: ncs.ExampleRef{Category: h - 1, Index: n}}
			for _, coal := range b.ix.Lattice().Coalitions() {
				lits := make([]int, 0, coal.Len()+2)
				for _, i := range coal.Criteria() {
					lits = append(lits, -b.ix.X(i, h, u.Grade(i)))
				}
				lits = append(lits, -b.ix.Y(coal))
				if b.ix.Relaxed() {
					lits = append(lits, -b.ix.Z(h-1, n))
				}
				b.f.hard(origin, lits...)
			}
		}
	}
}

func (b *builder) floor() {
	for h := ncs.Category(1); int(h) <= b.dims.Categories; h++ {
		for n, a := range b.ds[h] {
			origin := Origin{Family: Floor, Example: ncs.ExampleRef{Category: h, Index: n}}
			for _, coal := range b.ix.Lattice().Coalitions() {
				lits := make([]int, 0, coal.Len()+2)
				for _, i := range coal.Criteria() {
					lits = append(lits, b.ix.X(i, h, a.Grade(i)))
				}
				lits = append(lits, b.ix.Y(coal.Complement(b.dims.Criteria)))
				if b.ix.Relaxed() {
					lits = append(lits, -b.ix.Z(h, n))
				}
				b.f.hard(origin, lits...)
			}
		}
	}
}

func (b *builder) goals() {
	for h := ncs.Category(0); int(h) <= b.dims.Categories; h++ {
		for n := range b.ds[h] {
			b.f.soft(ncs.ExampleRef{Category: h, Index: n}, b.ix.Z(h, n))
		}
	}
}
