// Package decode turns an assignment found by an engine back into a sorting model.
package decode

import (
	"fmt"

	"github.com/crillab/ncsort/clause"
	"github.com/crillab/ncsort/gateway"
	"github.com/crillab/ncsort/ncs"
)

// Decode reads the model of the given shape encoded by a, whose variables are those of ix.
// In relaxed mode, cost is the cost reported by the engine, and every example whose z variable is false
// is reported as discarded.
//
// The invariants guaranteed by the encoding are checked: the grades meeting a requirement form an up-set
// (threshold shape) or a band (interval shape), requirements grow with categories, sufficient coalitions are
// upward-closed, and the number of discarded examples is the cost.
// Any violation is returned as an *ncs.DecodeInconsistency; no partial model is ever returned.
func Decode(ix *clause.Indexer, shape ncs.Shape, a gateway.Assignment, cost int) (*ncs.Model, error) {
	dims := ix.Dimensions()
	if a.NbVars() < ix.NbVars() {
		return nil, inconsistency("assignment has %d variables, expected %d", a.NbVars(), ix.NbVars())
	}
	if err := checkCategoryMonotonicity(ix, a); err != nil {
		return nil, err
	}
	coalitions, err := decodeCoalitions(ix, a)
	if err != nil {
		return nil, err
	}
	var m *ncs.Model
	if shape == ncs.Interval {
		bands, err := decodeBands(ix, a)
		if err != nil {
			return nil, err
		}
		m, err = ncs.NewIntervalModel(dims, ix.Relaxed(), bands, coalitions)
		if err != nil {
			return nil, err
		}
	} else {
		thresholds, err := decodeThresholds(ix, a)
		if err != nil {
			return nil, err
		}
		m, err = ncs.NewThresholdModel(dims, ix.Relaxed(), thresholds, coalitions)
		if err != nil {
			return nil, err
		}
	}
	if ix.Relaxed() {
		m.Discarded = discarded(ix, a)
		m.Cost = cost
		if len(m.Discarded) != cost {
			return nil, inconsistency("%d examples discarded, but engine reported a cost of %d", len(m.Discarded), cost)
		}
	}
	return m, nil
}

func inconsistency(format string, args ...interface{}) error {
	return &ncs.DecodeInconsistency{Reason: fmt.Sprintf(format, args...)}
}

func decodeThresholds(ix *clause.Indexer, a gateway.Assignment) ([][]ncs.Grade, error) {
	dims := ix.Dimensions()
	thresholds := make([][]ncs.Grade, dims.Categories)
	for h := ncs.Category(1); int(h) <= dims.Categories; h++ {
		thresholds[h-1] = make([]ncs.Grade, dims.Criteria)
		for i := ncs.Criterion(1); int(i) <= dims.Criteria; i++ {
			threshold := dims.MaxGrade + 1
			for k := ncs.Grade(0); k <= dims.MaxGrade; k++ {
				met := a.Value(ix.X(i, h, k))
				if met && threshold > dims.MaxGrade {
					threshold = k
				} else if !met && threshold <= dims.MaxGrade {
					return nil, inconsistency("criterion %d, category %d: grade %d meets the requirement but %d does not", i, h, threshold, k)
				}
			}
			thresholds[h-1][i-1] = threshold
		}
	}
	return thresholds, nil
}

func decodeBands(ix *clause.Indexer, a gateway.Assignment) ([][]ncs.Band, error) {
	dims := ix.Dimensions()
	bands := make([][]ncs.Band, dims.Categories)
	for h := ncs.Category(1); int(h) <= dims.Categories; h++ {
		bands[h-1] = make([]ncs.Band, dims.Criteria)
		for i := ncs.Criterion(1); int(i) <= dims.Criteria; i++ {
			band := ncs.EmptyBand
			for k := ncs.Grade(0); k <= dims.MaxGrade; k++ {
				if !a.Value(ix.X(i, h, k)) {
					continue
				}
				switch {
				case band.IsEmpty():
					band = ncs.Band{Lower: k, Upper: k}
				case band.Upper == k-1:
					band.Upper = k
				default:
					return nil, inconsistency("criterion %d, category %d: grades %d and %d meet the requirement but %d does not", i, h, band.Upper, k, band.Upper+1)
				}
			}
			bands[h-1][i-1] = band
		}
	}
	return bands, nil
}

func checkCategoryMonotonicity(ix *clause.Indexer, a gateway.Assignment) error {
	dims := ix.Dimensions()
	for i := ncs.Criterion(1); int(i) <= dims.Criteria; i++ {
		for h := ncs.Category(2); int(h) <= dims.Categories; h++ {
			for k := ncs.Grade(0); k <= dims.MaxGrade; k++ {
				if a.Value(ix.X(i, h, k)) && !a.Value(ix.X(i, h-1, k)) {
					return inconsistency("criterion %d: grade %d meets the requirement of category %d but not of category %d", i, k, h, h-1)
				}
			}
		}
	}
	return nil
}

func decodeCoalitions(ix *clause.Indexer, a gateway.Assignment) ([]ncs.Coalition, error) {
	var coalitions []ncs.Coalition
	for _, b := range ix.Lattice().Coalitions() {
		if a.Value(ix.Y(b)) {
			coalitions = append(coalitions, b)
		}
	}
	if !ncs.IsUpwardClosed(ix.Dimensions().Criteria, coalitions) {
		return nil, inconsistency("sufficient coalitions %v are not upward-closed", coalitions)
	}
	return coalitions, nil
}

func discarded(ix *clause.Indexer, a gateway.Assignment) []ncs.ExampleRef {
	var refs []ncs.ExampleRef
	for id := ix.NbVars() - ix.NbExamples() + 1; id <= ix.NbVars(); id++ {
		v, _ := ix.Var(id)
		if v.Kind == clause.KindZ && !a.Value(id) {
			refs = append(refs, ncs.ExampleRef{Category: v.Category, Index: v.Example})
		}
	}
	return refs
}
