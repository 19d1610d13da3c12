// Package generator draws random sorting models and the examples they sort.
// It provides learners with training sets whose ground truth is known.
package generator

import (
	"math/rand"
	"sort"

	"github.com/crillab/ncsort/ncs"
)

// RandomModel returns a random exact model of the given shape.
//
// Threshold profiles grow with categories on each criterion. Interval profiles are nested:
// the band of category h+1 is included in the band of category h.
// Sufficient coalitions are the upward closure of one to three random seeds.
func RandomModel(rng *rand.Rand, dims ncs.Dimensions, shape ncs.Shape) (*ncs.Model, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	coalitions, err := randomCoalitions(rng, dims.Criteria)
	if err != nil {
		return nil, err
	}
	if shape == ncs.Interval {
		return ncs.NewIntervalModel(dims, false, randomBands(rng, dims), coalitions)
	}
	return ncs.NewThresholdModel(dims, false, randomThresholds(rng, dims), coalitions)
}

// sortedGrades returns nb random grades in [0, maxGrade], in increasing order.
func sortedGrades(rng *rand.Rand, nb int, maxGrade ncs.Grade) []ncs.Grade {
	res := make([]ncs.Grade, nb)
	for i := range res {
		res[i] = ncs.Grade(rng.Intn(int(maxGrade) + 1))
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

func randomThresholds(rng *rand.Rand, dims ncs.Dimensions) [][]ncs.Grade {
	thresholds := make([][]ncs.Grade, dims.Categories)
	for h := range thresholds {
		thresholds[h] = make([]ncs.Grade, dims.Criteria)
	}
	for i := 0; i < dims.Criteria; i++ {
		// MaxGrade+1 is a legal threshold: no grade meets it.
		for h, t := range sortedGrades(rng, dims.Categories, dims.MaxGrade+1) {
			thresholds[h][i] = t
		}
	}
	return thresholds
}

func randomBands(rng *rand.Rand, dims ncs.Dimensions) [][]ncs.Band {
	bands := make([][]ncs.Band, dims.Categories)
	for h := range bands {
		bands[h] = make([]ncs.Band, dims.Criteria)
	}
	for i := 0; i < dims.Criteria; i++ {
		lowers := sortedGrades(rng, dims.Categories, dims.MaxGrade)
		uppers := sortedGrades(rng, dims.Categories, dims.MaxGrade)
		for h := range bands {
			band := ncs.Band{Lower: lowers[h], Upper: uppers[len(uppers)-1-h]}
			if band.IsEmpty() {
				band = ncs.EmptyBand
			}
			bands[h][i] = band
		}
	}
	return bands
}

func randomCoalitions(rng *rand.Rand, n int) ([]ncs.Coalition, error) {
	seeds := make([][]ncs.Criterion, 1+rng.Intn(3))
	for s := range seeds {
		size := 1 + rng.Intn(n)
		for _, p := range rng.Perm(n)[:size] {
			seeds[s] = append(seeds[s], ncs.Criterion(p+1))
		}
	}
	return ncs.UpwardClosure(n, seeds)
}

// A Generator draws examples and sorts them with a reference model.
type Generator struct {
	rng   *rand.Rand
	model *ncs.Model
}

// New returns a generator sorting examples with model, drawing grades from rng.
func New(rng *rand.Rand, model *ncs.Model) *Generator {
	return &Generator{rng: rng, model: model}
}

func (g *Generator) grades() []ncs.Grade {
	dims := g.model.Dimensions
	res := make([]ncs.Grade, dims.Criteria)
	for i := range res {
		res[i] = ncs.Grade(g.rng.Intn(dims.NbGrades()))
	}
	return res
}

// Generate draws nb examples with uniform grades, each assigned to the category the reference model sorts it in.
func (g *Generator) Generate(nb int) ncs.Dataset {
	data := make([][]ncs.Grade, nb)
	for i := range data {
		data[i] = g.grades()
	}
	return g.model.ClassifyAll(data)
}

// GenerateNoisy draws nb examples like Generate, then moves each of them, with probability noise,
// to another random category. It returns the dataset and the references of the moved examples.
func (g *Generator) GenerateNoisy(nb int, noise float64) (ncs.Dataset, []ncs.ExampleRef) {
	nbCats := g.model.Dimensions.Categories + 1
	ds := make(ncs.Dataset)
	var moved []ncs.ExampleRef
	for n := 0; n < nb; n++ {
		grades := g.grades()
		h := g.model.Classify(grades)
		if g.rng.Float64() < noise {
			h = ncs.Category((int(h) + 1 + g.rng.Intn(nbCats-1)) % nbCats)
			moved = append(moved, ncs.ExampleRef{Category: h, Index: len(ds[h])})
		}
		ds[h] = append(ds[h], ncs.Example{Grades: grades})
	}
	return ds, moved
}
