package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"space-matchmaker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir       string
	operators string
	buildings string
	config    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		operators: filepath.Join(dir, "ops.csv"),
		buildings: filepath.Join(dir, "buildings.csv"),
		config:    filepath.Join(dir, "matchmaker.yaml"),
	}
	require.NoError(t, os.WriteFile(f.operators, []byte("Operator,MinSize,MaxSize\nAcme,1000,5000\nA/B,1,2000\nTiny,1,2\n"), 0644))
	require.NoError(t, os.WriteFile(f.buildings, []byte(
		"city,post code,size\nLeeds,LS1,1200\nYork,YO1,6000\nHull,HU1,abc\nBath,BA1,5000\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Data.Operators = f.operators
	cfg.Data.Buildings = f.buildings
	cfg.Output.Path = filepath.Join(dir, "results", "matched.csv")
	cfg.Output.Dir = filepath.Join(dir, "results")
	cfg.Store.Path = filepath.Join(dir, "runs.db")
	require.NoError(t, cfg.Save(f.config))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", f.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestOperatorsCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "operators")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Operators")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "A/B")
	assert.Contains(t, out, "5000")
}

func TestMatchByName(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "match", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Selected Operator (row 0): Acme")
	assert.Contains(t, out, "Required Size Range: 1000 – 5000 sq ft")
	assert.Contains(t, out, "✅ Found 2 matching buildings.")
	assert.Contains(t, out, "Leeds")

	data, err := os.ReadFile(filepath.Join(f.dir, "results", "matched.csv"))
	require.NoError(t, err)
	assert.Equal(t, "city,post code,size\nLeeds,LS1,1200\nBath,BA1,5000\n", string(data))
}

func TestMatchPerOperatorFile(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "match", "--index", "1", "--per-operator", "--group-by", "city")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(f.dir, "results", "Matches_for_A_B.xlsx"))
}

func TestMatchNotFoundIsNotAnError(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "match", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "❌ Invalid operator index: 99")

	out, err = f.run(t, "match", "--name", "Nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "❌ No operator found with this name: Nobody")
}

func TestMatchNoMatchSkipsWrite(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "match", "Tiny")
	require.NoError(t, err)
	assert.Contains(t, out, "❌ No matching buildings found.")
	assert.NoFileExists(t, filepath.Join(f.dir, "results", "matched.csv"))
}

func TestMatchMissingInputFails(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "match", "Acme", "--buildings", filepath.Join(f.dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestMatchRequiresSelectorWithoutTerminal(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "match")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator index or name is required")
}

func TestMatchHistory(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	_, err = f.run(t, "match", "Acme", "--history")
	require.NoError(t, err)
	_, err = f.run(t, "match", "42", "--history")
	require.NoError(t, err)

	out, err = f.run(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "matched")
	assert.Contains(t, out, "not_found")
}

func TestInvalidConfig(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.config, []byte("logging:\n  level: loud\n"), 0644))
	_, err := f.run(t, "operators")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}
