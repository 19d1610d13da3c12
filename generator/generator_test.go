package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/ncsort/ncs"
)

func TestRandomModelThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dims := ncs.Dimensions{Criteria: 4, Categories: 3, MaxGrade: 20}
	for run := 0; run < 50; run++ {
		m, err := RandomModel(rng, dims, ncs.Threshold)
		require.NoError(t, err)
		require.Len(t, m.Thresholds, 3)
		for h := 1; h < dims.Categories; h++ {
			for i := 0; i < dims.Criteria; i++ {
				assert.LessOrEqual(t, m.Thresholds[h-1][i], m.Thresholds[h][i])
				assert.LessOrEqual(t, m.Thresholds[h][i], dims.MaxGrade+1)
			}
		}
		assert.NotEmpty(t, m.Coalitions)
		assert.True(t, ncs.IsUpwardClosed(dims.Criteria, m.Coalitions))
	}
}

func TestRandomModelInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dims := ncs.Dimensions{Criteria: 3, Categories: 3, MaxGrade: 10}
	for run := 0; run < 50; run++ {
		m, err := RandomModel(rng, dims, ncs.Interval)
		require.NoError(t, err)
		for h := 1; h < dims.Categories; h++ {
			for i := 0; i < dims.Criteria; i++ {
				for k := ncs.Grade(0); k <= dims.MaxGrade; k++ {
					if m.Bands[h][i].Contains(k) {
						assert.True(t, m.Bands[h-1][i].Contains(k), "bands %v and %v are not nested", m.Bands[h-1][i], m.Bands[h][i])
					}
				}
			}
		}
	}
}

func TestRandomModelInvalid(t *testing.T) {
	_, err := RandomModel(rand.New(rand.NewSource(1)), ncs.Dimensions{Criteria: 0, Categories: 1}, ncs.Threshold)
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	dims := ncs.Dimensions{Criteria: 3, Categories: 2, MaxGrade: 10}
	m, err := RandomModel(rng, dims, ncs.Threshold)
	require.NoError(t, err)
	g := New(rng, m)
	ds := g.Generate(100)
	require.NoError(t, ds.Validate(dims))
	assert.Equal(t, 100, ds.Len())
	for h, exs := range ds {
		for _, ex := range exs {
			assert.Equal(t, h, m.Classify(ex.Grades))
		}
	}
}

func TestGenerateNoisy(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	dims := ncs.Dimensions{Criteria: 3, Categories: 2, MaxGrade: 10}
	m, err := RandomModel(rng, dims, ncs.Threshold)
	require.NoError(t, err)
	ds, moved := New(rng, m).GenerateNoisy(200, 0.1)
	assert.Equal(t, 200, ds.Len())
	isMoved := make(map[ncs.ExampleRef]bool)
	for _, ref := range moved {
		isMoved[ref] = true
	}
	for h, exs := range ds {
		for n, ex := range exs {
			ref := ncs.ExampleRef{Category: h, Index: n}
			assert.Equal(t, !isMoved[ref], m.Classify(ex.Grades) == h, "example %v", ref)
		}
	}
	clean, none := New(rng, m).GenerateNoisy(50, 0)
	assert.Empty(t, none)
	assert.Equal(t, 50, clean.Len())
}
