package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioA = `criteria: 2
categories: 1
max_grade: 10
examples:
  0: [[4, 4]]
  1: [[6, 6]]
`

const scenarioB = `criteria: 2
categories: 1
max_grade: 10
examples:
  0: [[5, 5], [1, 2]]
  1: [[5, 5], [8, 9]]
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLearnClassifyEval(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.yaml")
	_, _, err := run(t, "generate", "--criteria", "3", "--categories", "2", "--max-grade", "5",
		"--examples", "40", "--seed", "12", "-o", data)
	require.NoError(t, err)

	model := filepath.Join(dir, "model.yaml")
	for _, engine := range []string{"gophersat", "gini"} {
		_, _, err = run(t, "learn", "--engine", engine, "-d", data, "-o", model)
		require.NoError(t, err, engine)

		out, _, err := run(t, "eval", "-m", model, "-d", data)
		require.NoError(t, err)
		assert.Contains(t, out, "accuracy: 1.0000 (40/40)\nmacro F1: 1.0000\n")
	}

	out, _, err := run(t, "classify", "-m", model, "0", "5", "0")
	require.NoError(t, err)
	assert.Regexp(t, "^[0-2]\n$", out)

	_, _, err = run(t, "classify", "-m", model, "0", "0")
	assert.Error(t, err)
}

func TestLearnScenarioA(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "a.yaml", scenarioA)
	out, _, err := run(t, "learn", "--engine", "gini", "--variant", "interval-relaxed", "-d", data)
	require.NoError(t, err)
	assert.Contains(t, out, "variant: interval-relaxed")
	assert.Contains(t, out, "lower_borders:")

	model := writeFile(t, dir, "model.yaml", out)
	out, _, err = run(t, "classify", "-m", model, "6", "6")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
	out, _, err = run(t, "classify", "-m", model, "4", "4")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestLearnUnsatisfiable(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "b.yaml", scenarioB)
	_, stderr, err := run(t, "learn", "--engine", "gophersat", "--explain", "-d", data)
	require.Error(t, err)
	assert.Contains(t, stderr, "(0, 0)")
	assert.Contains(t, stderr, "(1, 0)")
}

func TestLearnSeveralDatasets(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", scenarioA)
	b := writeFile(t, dir, "b.yaml", scenarioB)
	out := filepath.Join(dir, "models")
	metricsFile := filepath.Join(dir, "metrics.prom")
	_, _, err := run(t, "learn", "--engine", "gophersat", "--variant", "threshold-relaxed",
		"-d", a, "-d", b, "-o", out, "--metrics-file", metricsFile, "--jobs", "1")
	require.NoError(t, err)
	for _, name := range []string{"a.model.yaml", "b.model.yaml"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	b2, err := os.ReadFile(filepath.Join(out, "b.model.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b2), "cost: 1")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `ncsort_learner_runs_total{outcome="succeeded",variant="threshold-relaxed"} 2`)
	assert.Contains(t, string(prom), `ncsort_solves_total{engine="gophersat",outcome="succeeded"} 2`)
}

func TestEncodeInspect(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "a.yaml", scenarioA)
	cnf := filepath.Join(dir, "a.cnf")
	_, _, err := run(t, "encode", "-d", data, "--describe", "-o", cnf)
	require.NoError(t, err)
	content, err := os.ReadFile(cnf)
	require.NoError(t, err)
	assert.Contains(t, string(content), "c 5 x(1, 1, 4)\n")
	assert.Contains(t, string(content), "\np cnf 26 ")

	out, _, err := run(t, "inspect", cnf)
	require.NoError(t, err)
	assert.Contains(t, out, "c format cnf\nc 26 vars\n")
	assert.NotContains(t, out, "SATISFIABLE")

	out, _, err = run(t, "inspect", "--engine", "gini", "--solve", cnf)
	require.NoError(t, err)
	assert.Contains(t, out, "s SATISFIABLE\nv ")

	wcnf := filepath.Join(dir, "a.wcnf")
	_, _, err = run(t, "encode", "-d", data, "--variant", "threshold-relaxed", "-o", wcnf)
	require.NoError(t, err)
	out, _, err = run(t, "inspect", "--engine", "gophersat", "--solve", wcnf)
	require.NoError(t, err)
	assert.Contains(t, out, "c 2 soft clauses")
	assert.Contains(t, out, "o 0\ns OPTIMUM FOUND\n")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "a.yaml", scenarioA)

	_, _, err := run(t, "learn", "--engine", "minisat", "-d", data)
	assert.Error(t, err)

	_, _, err = run(t, "learn", "--engine", "gini", "--variant", "fuzzy", "-d", data)
	assert.Error(t, err)

	cfg := writeFile(t, dir, "ncsort.yaml", "solver:\n  engine: gini\nlimits:\n  max_clauses: 10\n")
	_, _, err = run(t, "learn", "--config", cfg, "-d", data)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "could not be learned"), err.Error())

	_, _, err = run(t, "generate", "--shape", "threshold-relaxed")
	assert.Error(t, err)
}
