package ncs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grades(gs ...int) []Grade {
	return toGrades(gs)
}

func TestDimensionsValidate(t *testing.T) {
	tests := []struct {
		dims  Dimensions
		valid bool
	}{
		{Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}, true},
		{Dimensions{Criteria: 1, Categories: 1, MaxGrade: 0}, true},
		{Dimensions{Criteria: 0, Categories: 1, MaxGrade: 10}, false},
		{Dimensions{Criteria: 2, Categories: 0, MaxGrade: 10}, false},
		{Dimensions{Criteria: 2, Categories: 1, MaxGrade: -1}, false},
	}
	for _, test := range tests {
		err := test.dims.Validate()
		if test.valid && err != nil {
			t.Errorf("%v: unexpected error %v", test.dims, err)
		}
		var cfgErr *ConfigurationError
		if !test.valid && !errors.As(err, &cfgErr) {
			t.Errorf("%v: expected configuration error, got %v", test.dims, err)
		}
	}
}

func TestDatasetValidate(t *testing.T) {
	dims := Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}
	assert.NoError(t, Dataset{1: {{grades(6, 6)}}, 0: {{grades(4, 4)}}}.Validate(dims))
	assert.Error(t, Dataset{2: {{grades(6, 6)}}}.Validate(dims))
	assert.Error(t, Dataset{1: {{grades(6)}}}.Validate(dims))
	assert.Error(t, Dataset{1: {{grades(6, 11)}}}.Validate(dims))
}

func TestClassifyThreshold(t *testing.T) {
	dims := Dimensions{Criteria: 3, Categories: 2, MaxGrade: 20}
	coalitions, err := UpwardClosure(3, [][]Criterion{{1, 3}, {2}})
	require.NoError(t, err)
	m, err := NewThresholdModel(dims, false, [][]Grade{grades(10, 10, 10), grades(15, 15, 15)}, coalitions)
	require.NoError(t, err)
	tests := []struct {
		grades   []Grade
		expected Category
	}{
		{grades(0, 0, 0), 0},
		{grades(10, 0, 9), 0},
		{grades(10, 0, 10), 1},
		{grades(0, 12, 0), 1},
		{grades(0, 15, 0), 2},
		{grades(16, 0, 15), 2},
		{grades(16, 0, 14), 1},
	}
	for _, test := range tests {
		if got := m.Classify(test.grades); got != test.expected {
			t.Errorf("%v: expected category %d, got %d", test.grades, test.expected, got)
		}
	}
}

func TestClassifyInterval(t *testing.T) {
	dims := Dimensions{Criteria: 2, Categories: 1, MaxGrade: 20}
	coalitions, err := UpwardClosure(2, [][]Criterion{{1, 2}})
	require.NoError(t, err)
	m, err := NewIntervalModel(dims, false, [][]Band{{{Lower: 8, Upper: 12}, {Lower: 5, Upper: 20}}}, coalitions)
	require.NoError(t, err)
	assert.Equal(t, Category(1), m.Classify(grades(8, 5)))
	assert.Equal(t, Category(1), m.Classify(grades(12, 20)))
	assert.Equal(t, Category(0), m.Classify(grades(13, 20)))
	assert.Equal(t, Category(0), m.Classify(grades(7, 10)))

	empty, err := NewIntervalModel(dims, false, [][]Band{{EmptyBand, EmptyBand}}, coalitions)
	require.NoError(t, err)
	assert.Equal(t, Category(0), empty.Classify(grades(0, 0)))
}

func TestEvaluate(t *testing.T) {
	dims := Dimensions{Criteria: 1, Categories: 1, MaxGrade: 10}
	m, err := NewThresholdModel(dims, false, [][]Grade{grades(5)}, []Coalition{NewCoalition(1)})
	require.NoError(t, err)
	ds := Dataset{
		0: {{grades(2)}, {grades(6)}},
		1: {{grades(5)}, {grades(9)}},
	}
	ev := Evaluate(m, ds)
	assert.Equal(t, 4, ev.Total)
	assert.Equal(t, 3, ev.Correct)
	assert.InDelta(t, 0.75, ev.Accuracy(), 1e-9)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, ev.Confusion)
	// F1 is 2/3 for category 0 and 4/5 for category 1.
	assert.InDelta(t, 11.0/15, ev.MacroF1(), 1e-9)
	assert.Equal(t, []ExampleRef{{Category: 0, Index: 1}}, Misclassified(m, ds))
}

func TestMacroF1(t *testing.T) {
	tests := []struct {
		name      string
		confusion [][]int
		expected  float64
	}{
		{"empty", [][]int{{0, 0}, {0, 0}}, 1},
		{"perfect", [][]int{{3, 0}, {0, 2}}, 1},
		{"absent category skipped", [][]int{{2, 0, 0}, {0, 0, 0}, {0, 0, 4}}, 1},
		{"category 0 never right", [][]int{{0, 2}, {1, 1}}, 0.2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ev := Evaluation{Confusion: test.confusion}
			assert.InDelta(t, test.expected, ev.MacroF1(), 1e-9)
		})
	}
}

func TestDatasetDocument(t *testing.T) {
	const doc = `
criteria: 2
categories: 1
max_grade: 10
examples:
  1: [[6, 6]]
  0: [[4, 4], [1, 9]]
`
	dims, ds, err := ReadDataset(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Criteria: 2, Categories: 1, MaxGrade: 10}, dims)
	expected := Dataset{
		1: {{grades(6, 6)}},
		0: {{grades(4, 4)}, {grades(1, 9)}},
	}
	if diff := cmp.Diff(expected, ds); diff != "" {
		t.Errorf("unexpected dataset (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, dims, ds))
	dims2, ds2, err := ReadDataset(&buf)
	require.NoError(t, err)
	assert.Equal(t, dims, dims2)
	if diff := cmp.Diff(ds, ds2); diff != "" {
		t.Errorf("dataset changed after rewrite (-want +got):\n%s", diff)
	}
}

func TestDatasetDocumentInvalid(t *testing.T) {
	const doc = `
criteria: 2
categories: 1
max_grade: 10
examples:
  1: [[6, 16]]
`
	_, _, err := ReadDataset(strings.NewReader(doc))
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "expected configuration error, got %v", err)
}

func TestModelDocument(t *testing.T) {
	const doc = `
variant: interval-relaxed
criteria: 2
categories: 1
max_grade: 10
lower_borders: [[3, 4]]
upper_borders: [[8, 9]]
valid_set: [[1]]
discarded_data: [[0, 2]]
cost: 1
`
	m, err := ReadModel(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, IntervalRelaxed, m.Variant)
	assert.Equal(t, []Coalition{NewCoalition(1), NewCoalition(1, 2)}, m.Coalitions)
	assert.Equal(t, []ExampleRef{{Category: 0, Index: 2}}, m.Discarded)
	assert.Equal(t, Band{Lower: 3, Upper: 8}, m.Bands[0][0])
	assert.Equal(t, Category(1), m.Classify(grades(5, 0)))

	var buf bytes.Buffer
	require.NoError(t, WriteModel(&buf, m))
	m2, err := ReadModel(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Document(), m2.Document())
}

func TestModelDocumentOutOfRange(t *testing.T) {
	threshold := func(borders string) string {
		return "variant: threshold-relaxed\ncriteria: 2\ncategories: 1\nmax_grade: 10\nvalid_set: [[1]]\n" + borders
	}
	interval := func(lower, upper string) string {
		return "variant: interval-exact\ncriteria: 2\ncategories: 1\nmax_grade: 10\nvalid_set: [[1]]\n" +
			"lower_borders: [" + lower + "]\nupper_borders: [" + upper + "]\n"
	}
	tests := []struct {
		name string
		doc  string
	}{
		{"negative border", threshold("borders: [[-1, 4]]\n")},
		{"border above max grade + 1", threshold("borders: [[3, 12]]\n")},
		{"negative lower bound", interval("[-1, 4]", "[8, 9]")},
		{"upper bound above max grade", interval("[3, 4]", "[8, 11]")},
		{"crossed bounds out of range", interval("[3, 20]", "[8, 9]")},
		{"discarded category above categories", threshold("borders: [[3, 4]]\ndiscarded_data: [[2, 0]]\n")},
		{"discarded negative category", threshold("borders: [[3, 4]]\ndiscarded_data: [[-1, 0]]\n")},
		{"discarded negative index", threshold("borders: [[3, 4]]\ndiscarded_data: [[1, -1]]\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadModel(strings.NewReader(tt.doc))
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "expected configuration error, got %v", err)
		})
	}

	m, err := ReadModel(strings.NewReader(threshold("borders: [[0, 11]]\n")))
	require.NoError(t, err)
	assert.Equal(t, []Grade{0, 11}, m.Thresholds[0])

	m, err = ReadModel(strings.NewReader(interval("[3, 11]", "[8, -1]")))
	require.NoError(t, err)
	assert.Equal(t, EmptyBand, m.Bands[0][1])
}

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{ThresholdExact, ThresholdRelaxed, IntervalExact, IntervalRelaxed} {
		got, err := ParseVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVariant("mr-sort")
	assert.Error(t, err)
}
