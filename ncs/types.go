package ncs

import (
	"fmt"
	"sort"
)

// A Criterion identifies one of the n criteria. Criteria start at 1.
type Criterion int

// A Grade is the evaluation of an alternative on a criterion, between 0 and the max grade.
type Grade int

// A Category is a rank between 0 (not validated) and H (the best category).
type Category int

// Dimensions are the fixed sizes of a learning problem.
type Dimensions struct {
	Criteria   int   // n, number of criteria
	Categories int   // H, number of categories above the default category 0
	MaxGrade   Grade // Grades range from 0 to MaxGrade, inclusive
}

// Validate returns a ConfigurationError if dims cannot describe a problem.
func (dims Dimensions) Validate() error {
	switch {
	case dims.Criteria < 1:
		return Configurationf("need at least 1 criterion, got %d", dims.Criteria)
	case dims.Categories < 1:
		return Configurationf("need at least 1 category, got %d", dims.Categories)
	case dims.MaxGrade < 0:
		return Configurationf("max grade must be >= 0, got %d", dims.MaxGrade)
	}
	return nil
}

// NbGrades returns the number of distinct grades, i.e MaxGrade+1.
func (dims Dimensions) NbGrades() int {
	return int(dims.MaxGrade) + 1
}

func (dims Dimensions) String() string {
	return fmt.Sprintf("n=%d H=%d maxGrade=%d", dims.Criteria, dims.Categories, dims.MaxGrade)
}

// An Example is a vector of grades, one per criterion, in criterion order.
// Examples are immutable once built.
type Example struct {
	Grades []Grade
}

// Grade returns the grade of e on criterion i.
func (e Example) Grade(i Criterion) Grade {
	return e.Grades[i-1]
}

// A Dataset groups examples by their assigned category.
type Dataset map[Category][]Example

// Validate returns a ConfigurationError if an example does not fit dims.
func (ds Dataset) Validate(dims Dimensions) error {
	for _, h := range ds.Categories() {
		if h < 0 || int(h) > dims.Categories {
			return Configurationf("category %d out of range [0, %d]", h, dims.Categories)
		}
		for n, ex := range ds[h] {
			if len(ex.Grades) != dims.Criteria {
				return Configurationf("example %v has %d grades, expected %d", ExampleRef{Category: h, Index: n}, len(ex.Grades), dims.Criteria)
			}
			for i, g := range ex.Grades {
				if g < 0 || g > dims.MaxGrade {
					return Configurationf("example %v: grade %d on criterion %d out of range [0, %d]", ExampleRef{Category: h, Index: n}, g, i+1, dims.MaxGrade)
				}
			}
		}
	}
	return nil
}

// Categories returns the categories present in ds, in increasing order.
func (ds Dataset) Categories() []Category {
	res := make([]Category, 0, len(ds))
	for h := range ds {
		res = append(res, h)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Len returns the total number of examples in ds.
func (ds Dataset) Len() int {
	nb := 0
	for _, exs := range ds {
		nb += len(exs)
	}
	return nb
}

// Sizes returns, for each category 0..nbCategories, the number of examples it holds.
func (ds Dataset) Sizes(nbCategories int) []int {
	sizes := make([]int, nbCategories+1)
	for h := range sizes {
		sizes[h] = len(ds[Category(h)])
	}
	return sizes
}

// An ExampleRef identifies an example by its category and its position in that category.
type ExampleRef struct {
	Category Category
	Index    int
}

func (ref ExampleRef) String() string {
	return fmt.Sprintf("(%d, %d)", ref.Category, ref.Index)
}

// A Shape is the kind of per-criterion requirement a profile holds.
type Shape byte

const (
	// Threshold profiles hold a minimal grade per category and criterion.
	Threshold = Shape(iota)
	// Interval profiles hold a closed band of grades per category and criterion.
	Interval
)

func (s Shape) String() string {
	switch s {
	case Threshold:
		return "threshold"
	case Interval:
		return "interval"
	default:
		panic("invalid shape")
	}
}

// A Variant selects the profile shape and whether noisy examples may be discarded.
type Variant struct {
	Shape   Shape
	Relaxed bool
}

// The four learning variants.
var (
	ThresholdExact   = Variant{Shape: Threshold}
	ThresholdRelaxed = Variant{Shape: Threshold, Relaxed: true}
	IntervalExact    = Variant{Shape: Interval}
	IntervalRelaxed  = Variant{Shape: Interval, Relaxed: true}
)

func (v Variant) String() string {
	if v.Relaxed {
		return v.Shape.String() + "-relaxed"
	}
	return v.Shape.String()
}

// ParseVariant returns the variant named s, as returned by Variant.String.
func ParseVariant(s string) (Variant, error) {
	for _, v := range []Variant{ThresholdExact, ThresholdRelaxed, IntervalExact, IntervalRelaxed} {
		if v.String() == s {
			return v, nil
		}
	}
	return Variant{}, Configurationf("unknown variant %q", s)
}
