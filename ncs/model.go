package ncs

import "fmt"

// A Band is a closed interval of grades. A band whose Upper bound is lower than its Lower bound is empty.
type Band struct {
	Lower Grade
	Upper Grade
}

// EmptyBand rejects every grade.
var EmptyBand = Band{Lower: 0, Upper: -1}

// Contains returns true iff g is in b.
func (b Band) Contains(g Grade) bool {
	return b.Lower <= g && g <= b.Upper
}

// IsEmpty returns true iff b rejects every grade.
func (b Band) IsEmpty() bool {
	return b.Upper < b.Lower
}

func (b Band) String() string {
	if b.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("[%d, %d]", b.Lower, b.Upper)
}

// A Model is a learned sorting model.
// It is created once by a learner and must not be modified afterwards.
type Model struct {
	Variant    Variant
	Dimensions Dimensions
	// Thresholds[h-1][i-1] is the minimal grade criterion i must reach for category h.
	// A value of MaxGrade+1 means no grade is enough. Only set for threshold profiles.
	Thresholds [][]Grade
	// Bands[h-1][i-1] is the band of grades criterion i must fall in for category h.
	// Only set for interval profiles.
	Bands [][]Band
	// Coalitions are the sufficient coalitions, upward-closed, in lattice order.
	Coalitions []Coalition
	// Discarded lists examples the relaxed learners chose not to explain.
	Discarded []ExampleRef
	// Cost is the number of discarded examples reported by the engine.
	Cost int

	sufficient map[Coalition]bool
}

// NewThresholdModel returns a model whose profile is made of thresholds.
func NewThresholdModel(dims Dimensions, relaxed bool, thresholds [][]Grade, coalitions []Coalition) (*Model, error) {
	if len(thresholds) != dims.Categories {
		return nil, Configurationf("got thresholds for %d categories, expected %d", len(thresholds), dims.Categories)
	}
	for h, row := range thresholds {
		if len(row) != dims.Criteria {
			return nil, Configurationf("category %d: got %d thresholds, expected %d", h+1, len(row), dims.Criteria)
		}
	}
	m := &Model{
		Variant:    Variant{Shape: Threshold, Relaxed: relaxed},
		Dimensions: dims,
		Thresholds: thresholds,
	}
	m.setCoalitions(coalitions)
	return m, nil
}

// NewIntervalModel returns a model whose profile is made of bands.
func NewIntervalModel(dims Dimensions, relaxed bool, bands [][]Band, coalitions []Coalition) (*Model, error) {
	if len(bands) != dims.Categories {
		return nil, Configurationf("got bands for %d categories, expected %d", len(bands), dims.Categories)
	}
	for h, row := range bands {
		if len(row) != dims.Criteria {
			return nil, Configurationf("category %d: got %d bands, expected %d", h+1, len(row), dims.Criteria)
		}
	}
	m := &Model{
		Variant:    Variant{Shape: Interval, Relaxed: relaxed},
		Dimensions: dims,
		Bands:      bands,
	}
	m.setCoalitions(coalitions)
	return m, nil
}

func (m *Model) setCoalitions(coalitions []Coalition) {
	m.Coalitions = coalitions
	m.sufficient = make(map[Coalition]bool, len(coalitions))
	for _, b := range coalitions {
		m.sufficient[b] = true
	}
}

// Sufficient returns true iff b is a sufficient coalition.
func (m *Model) Sufficient(b Coalition) bool {
	return m.sufficient[b]
}

// Meets returns true iff grade g on criterion i meets the requirement of category h.
func (m *Model) Meets(i Criterion, h Category, g Grade) bool {
	if m.Variant.Shape == Interval {
		return m.Bands[h-1][i-1].Contains(g)
	}
	return g >= m.Thresholds[h-1][i-1]
}

// Satisfied returns the set of criteria whose grades meet the requirements of category h.
func (m *Model) Satisfied(grades []Grade, h Category) Coalition {
	var b Coalition
	for i := range grades {
		if m.Meets(Criterion(i+1), h, grades[i]) {
			b = b.With(Criterion(i + 1))
		}
	}
	return b
}

// Classify returns the highest category whose requirements are met by a sufficient coalition,
// or 0 if there is none.
func (m *Model) Classify(grades []Grade) Category {
	for h := Category(m.Dimensions.Categories); h > 0; h-- {
		if m.Sufficient(m.Satisfied(grades, h)) {
			return h
		}
	}
	return 0
}

// ClassifyAll sorts every grade vector into its category.
func (m *Model) ClassifyAll(data [][]Grade) Dataset {
	res := make(Dataset)
	for _, grades := range data {
		h := m.Classify(grades)
		res[h] = append(res[h], Example{Grades: grades})
	}
	return res
}
