package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(DefaultSheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadTableCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "b.csv", [][]string{
		{` "city" `, "post code", "size", "", "size"},
		{"Leeds", "LS1", "1200", "x", "dup"},
		{"", "", "", "", ""},
		{"York", "YO1", "abc"},
	})

	table, err := ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "post code", "size", "Unnamed: 3", "size.1"}, table.Columns)
	require.Len(t, table.Rows, 2, "blank rows are skipped")
	assert.Equal(t, []string{"York", "YO1", "abc", "", ""}, table.Rows[1], "short rows are padded")
}

func TestReadTableTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.tsv")
	require.NoError(t, os.WriteFile(path, []byte("Operator\tMinSize\tMaxSize\nAcme\t1000\t5000\n"), 0644))

	ops, err := LoadOperators(context.Background(), path, testColumns)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Acme", ops[0].Name)
	assert.Equal(t, 5000.0, ops[0].MaxSize.Value)
}

func TestReadTableExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildings.xlsx")
	writeXLSX(t, path, [][]interface{}{
		{"city", "post code", "size"},
		{"Leeds", "LS1", 1200},
		{"York", "YO1", "abc"},
		{"Hull", "HU1", 5000.5},
	})

	table, err := LoadBuildings(context.Background(), path, testColumns)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "post code", "size"}, table.Columns)
	require.Len(t, table.Buildings, 3)
	assert.Equal(t, "1200", table.Buildings[0].Fields["size"])
	assert.Equal(t, "abc", table.Buildings[1].Fields["size"])
	assert.Equal(t, "HU1", table.Buildings[2].Fields["post code"])
	assert.Equal(t, 2, table.Buildings[2].Row)

	coerced, missing := CoerceSizes(table, "size")
	assert.Equal(t, 1, missing)
	assert.Equal(t, 5000.5, coerced.Buildings[2].Size.Value)
}

func TestLoadOperatorsCoercesBounds(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "ops.csv", [][]string{
		{"Operator", "MinSize", "MaxSize"},
		{" Acme ", "1000", "5000"},
		{"Broken", "tbc", "2000"},
	})

	ops, err := LoadOperators(context.Background(), path, testColumns)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "Acme", ops[0].Name)
	assert.Equal(t, 1, ops[1].Row)
	assert.True(t, ops[1].MinSize.Missing())
}

func TestLoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	ops := writeCSV(t, dir, "ops.csv", [][]string{{"Operator", "MinSize"}, {"Acme", "1"}})
	buildings := writeCSV(t, dir, "b.csv", [][]string{{"city"}, {"Leeds"}})

	_, err := LoadOperators(context.Background(), ops, testColumns)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, err = LoadBuildings(context.Background(), buildings, testColumns)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadTableErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadTable(context.Background(), filepath.Join(dir, "missing.csv"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = ReadTable(context.Background(), empty)
	assert.True(t, IsIOError(err))

	notExcel := filepath.Join(dir, "fake.xlsx")
	require.NoError(t, os.WriteFile(notExcel, []byte("not a zip"), 0644))
	_, err = ReadTable(context.Background(), notExcel)
	assert.True(t, IsIOError(err))
}

func TestLoadDatasets(t *testing.T) {
	dir := t.TempDir()
	ops := writeCSV(t, dir, "ops.csv", [][]string{{"Operator", "MinSize", "MaxSize"}, {"Acme", "1000", "5000"}})
	buildings := writeCSV(t, dir, "b.csv", [][]string{{"size", "city"}, {"1200", "Leeds"}, {"10", "York"}})

	ds, err := LoadDatasets(context.Background(), modelInputs(ops, buildings), testColumns)
	require.NoError(t, err)
	assert.Len(t, ds.Operators, 1)
	assert.Len(t, ds.Buildings.Buildings, 2)
	assert.Equal(t, []string{"size", "city"}, ds.Buildings.Columns)

	_, err = LoadDatasets(context.Background(), modelInputs(ops, filepath.Join(dir, "nope.csv")), testColumns)
	assert.True(t, IsIOError(err))
}

func TestReadTableCancelled(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "b.csv", [][]string{{"size"}, {"1"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadTable(ctx, path)
	assert.True(t, errors.Is(err, context.Canceled))
}
