package ncs

// An Evaluation summarizes how a model sorts a labeled dataset.
type Evaluation struct {
	Total   int
	Correct int
	// Confusion[expected][got] counts examples of category expected sorted into category got.
	Confusion [][]int
}

// Accuracy returns the ratio of correctly sorted examples, or 1 for an empty dataset.
func (ev Evaluation) Accuracy() float64 {
	if ev.Total == 0 {
		return 1
	}
	return float64(ev.Correct) / float64(ev.Total)
}

// MacroF1 returns the unweighted mean of the F1 scores of the categories that appear in the dataset
// or in the predictions, or 1 for an empty dataset.
// The F1 score of a category with no correct prediction is 0.
func (ev Evaluation) MacroF1() float64 {
	var (
		sum float64
		nb  int
	)
	for h := range ev.Confusion {
		var expected, got int
		for j := range ev.Confusion {
			expected += ev.Confusion[h][j]
			got += ev.Confusion[j][h]
		}
		if expected == 0 && got == 0 {
			continue
		}
		nb++
		if tp := ev.Confusion[h][h]; tp > 0 {
			precision := float64(tp) / float64(got)
			recall := float64(tp) / float64(expected)
			sum += 2 * precision * recall / (precision + recall)
		}
	}
	if nb == 0 {
		return 1
	}
	return sum / float64(nb)
}

// Misclassified returns the references of the examples of ds that m does not sort into their category.
func Misclassified(m *Model, ds Dataset) []ExampleRef {
	var refs []ExampleRef
	for _, h := range ds.Categories() {
		for n, ex := range ds[h] {
			if m.Classify(ex.Grades) != h {
				refs = append(refs, ExampleRef{Category: h, Index: n})
			}
		}
	}
	return refs
}

// Evaluate classifies every example of ds with m and compares the result to the expected category.
func Evaluate(m *Model, ds Dataset) Evaluation {
	size := m.Dimensions.Categories + 1
	ev := Evaluation{Confusion: make([][]int, size)}
	for h := range ev.Confusion {
		ev.Confusion[h] = make([]int, size)
	}
	for h, exs := range ds {
		for _, ex := range exs {
			got := m.Classify(ex.Grades)
			ev.Total++
			if got == h {
				ev.Correct++
			}
			if int(h) < size {
				ev.Confusion[h][got]++
			}
		}
	}
	return ev
}
