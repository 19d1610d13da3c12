package ncs

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A DatasetDocument is the serialized form of a learning problem:
// its dimensions and, for each category, the grade vectors assigned to it.
type DatasetDocument struct {
	Criteria   int             `yaml:"criteria"`
	Categories int             `yaml:"categories"`
	MaxGrade   int             `yaml:"max_grade"`
	Examples   map[int][][]int `yaml:"examples"`
}

// ReadDataset parses a YAML (or JSON) dataset document and validates it.
func ReadDataset(r io.Reader) (Dimensions, Dataset, error) {
	var doc DatasetDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return Dimensions{}, nil, errors.Wrap(err, "could not parse dataset")
	}
	dims := Dimensions{Criteria: doc.Criteria, Categories: doc.Categories, MaxGrade: Grade(doc.MaxGrade)}
	if err := dims.Validate(); err != nil {
		return Dimensions{}, nil, err
	}
	ds := make(Dataset, len(doc.Examples))
	for h, rows := range doc.Examples {
		exs := make([]Example, len(rows))
		for n, row := range rows {
			exs[n] = Example{Grades: toGrades(row)}
		}
		ds[Category(h)] = exs
	}
	if err := ds.Validate(dims); err != nil {
		return Dimensions{}, nil, err
	}
	return dims, ds, nil
}

// WriteDataset writes ds as a YAML dataset document.
func WriteDataset(w io.Writer, dims Dimensions, ds Dataset) error {
	doc := DatasetDocument{
		Criteria:   dims.Criteria,
		Categories: dims.Categories,
		MaxGrade:   int(dims.MaxGrade),
		Examples:   make(map[int][][]int, len(ds)),
	}
	for h, exs := range ds {
		rows := make([][]int, len(exs))
		for n, ex := range exs {
			rows[n] = fromGrades(ex.Grades)
		}
		doc.Examples[int(h)] = rows
	}
	return encodeYAML(w, doc)
}

// A ModelDocument is the serialized form of a learned model.
// Threshold models fill Borders; interval models fill LowerBorders and UpperBorders.
type ModelDocument struct {
	Variant       string   `yaml:"variant"`
	Criteria      int      `yaml:"criteria"`
	Categories    int      `yaml:"categories"`
	MaxGrade      int      `yaml:"max_grade"`
	Borders       [][]int  `yaml:"borders,omitempty"`
	LowerBorders  [][]int  `yaml:"lower_borders,omitempty"`
	UpperBorders  [][]int  `yaml:"upper_borders,omitempty"`
	ValidSet      [][]int  `yaml:"valid_set"`
	DiscardedData [][2]int `yaml:"discarded_data,omitempty"`
	Cost          int      `yaml:"cost,omitempty"`
}

// Document returns the serialized form of m.
func (m *Model) Document() ModelDocument {
	doc := ModelDocument{
		Variant:    m.Variant.String(),
		Criteria:   m.Dimensions.Criteria,
		Categories: m.Dimensions.Categories,
		MaxGrade:   int(m.Dimensions.MaxGrade),
		ValidSet:   make([][]int, len(m.Coalitions)),
		Cost:       m.Cost,
	}
	for p, b := range m.Coalitions {
		doc.ValidSet[p] = b.Ints()
	}
	for _, ref := range m.Discarded {
		doc.DiscardedData = append(doc.DiscardedData, [2]int{int(ref.Category), ref.Index})
	}
	if m.Variant.Shape == Interval {
		for _, row := range m.Bands {
			lower := make([]int, len(row))
			upper := make([]int, len(row))
			for i, band := range row {
				lower[i], upper[i] = int(band.Lower), int(band.Upper)
			}
			doc.LowerBorders = append(doc.LowerBorders, lower)
			doc.UpperBorders = append(doc.UpperBorders, upper)
		}
		return doc
	}
	for _, row := range m.Thresholds {
		doc.Borders = append(doc.Borders, fromGrades(row))
	}
	return doc
}

// ModelFromDocument rebuilds a model from its serialized form.
// The valid set is closed upward, so a document may list only minimal coalitions.
func ModelFromDocument(doc ModelDocument) (*Model, error) {
	variant, err := ParseVariant(doc.Variant)
	if err != nil {
		return nil, err
	}
	dims := Dimensions{Criteria: doc.Criteria, Categories: doc.Categories, MaxGrade: Grade(doc.MaxGrade)}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	seeds := make([][]Criterion, len(doc.ValidSet))
	for s, set := range doc.ValidSet {
		for _, i := range set {
			seeds[s] = append(seeds[s], Criterion(i))
		}
	}
	coalitions, err := UpwardClosure(dims.Criteria, seeds)
	if err != nil {
		return nil, err
	}
	var m *Model
	if variant.Shape == Interval {
		if len(doc.LowerBorders) != len(doc.UpperBorders) {
			return nil, Configurationf("got %d lower borders and %d upper borders", len(doc.LowerBorders), len(doc.UpperBorders))
		}
		bands := make([][]Band, len(doc.LowerBorders))
		for h := range doc.LowerBorders {
			if len(doc.LowerBorders[h]) != len(doc.UpperBorders[h]) {
				return nil, Configurationf("category %d: lower and upper borders differ in length", h+1)
			}
			bands[h] = make([]Band, len(doc.LowerBorders[h]))
			for i := range bands[h] {
				band, err := bandFromBorders(dims, doc.LowerBorders[h][i], doc.UpperBorders[h][i])
				if err != nil {
					return nil, errors.Wrapf(err, "category %d, criterion %d", h+1, i+1)
				}
				bands[h][i] = band
			}
		}
		m, err = NewIntervalModel(dims, variant.Relaxed, bands, coalitions)
	} else {
		thresholds := make([][]Grade, len(doc.Borders))
		for h, row := range doc.Borders {
			for i, b := range row {
				if b < 0 || b > int(dims.MaxGrade)+1 {
					return nil, Configurationf("category %d, criterion %d: border %d out of range [0, %d]", h+1, i+1, b, dims.MaxGrade+1)
				}
			}
			thresholds[h] = toGrades(row)
		}
		m, err = NewThresholdModel(dims, variant.Relaxed, thresholds, coalitions)
	}
	if err != nil {
		return nil, err
	}
	for _, ref := range doc.DiscardedData {
		if ref[0] < 0 || ref[0] > dims.Categories {
			return nil, Configurationf("discarded example (%d, %d): category out of range [0, %d]", ref[0], ref[1], dims.Categories)
		}
		if ref[1] < 0 {
			return nil, Configurationf("discarded example (%d, %d): negative index", ref[0], ref[1])
		}
		m.Discarded = append(m.Discarded, ExampleRef{Category: Category(ref[0]), Index: ref[1]})
	}
	m.Cost = doc.Cost
	return m, nil
}

// ReadModel parses a YAML (or JSON) model document.
func ReadModel(r io.Reader) (*Model, error) {
	var doc ModelDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not parse model")
	}
	return ModelFromDocument(doc)
}

// WriteModel writes m as a YAML model document.
func WriteModel(w io.Writer, m *Model) error {
	return encodeYAML(w, m.Document())
}

func encodeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "could not encode document")
	}
	return enc.Close()
}

// bandFromBorders checks the borders of a serialized band.
// Crossed borders stand for the empty band and are normalized to EmptyBand.
func bandFromBorders(dims Dimensions, lower, upper int) (Band, error) {
	if upper < lower {
		if lower > int(dims.MaxGrade)+1 || upper < -1 {
			return Band{}, Configurationf("empty band [%d, %d] out of range", lower, upper)
		}
		return EmptyBand, nil
	}
	if lower < 0 || upper > int(dims.MaxGrade) {
		return Band{}, Configurationf("band [%d, %d] out of range [0, %d]", lower, upper, dims.MaxGrade)
	}
	return Band{Lower: Grade(lower), Upper: Grade(upper)}, nil
}

func toGrades(row []int) []Grade {
	res := make([]Grade, len(row))
	for i, g := range row {
		res[i] = Grade(g)
	}
	return res
}

func fromGrades(row []Grade) []int {
	res := make([]int, len(row))
	for i, g := range row {
		res[i] = int(g)
	}
	return res
}
