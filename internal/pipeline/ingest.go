package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"space-matchmaker/internal/model"
	"space-matchmaker/pkg/utils"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// ------------------- Table Reading -------------------

// Table is a header plus rows of raw cell text, in source order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadTable reads a tabular file. The format is picked from the extension:
// .xlsx/.xlsm read the first sheet, .tsv is tab separated, anything else is CSV.
func ReadTable(ctx context.Context, path string) (*Table, error) {
	var (
		raw [][]string
		err error
	)
	switch utils.FileType(path) {
	case "excel":
		raw, err = readExcel(path)
	case "tsv":
		raw, err = readDelimited(ctx, path, '\t')
	default:
		raw, err = readDelimited(ctx, path, ',')
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	if len(raw) == 0 {
		return nil, &IOError{Op: "read", Path: path, Err: fmt.Errorf("no header row")}
	}

	table := &Table{Columns: normalizeHeader(raw[0])}
	for _, row := range raw[1:] {
		if blankRow(row) {
			continue
		}
		cells := make([]string, len(table.Columns))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func readDelimited(ctx context.Context, path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		rows = append(rows, record)
	}
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	// Raw values keep numbers free of display formatting such as thousands separators.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// normalizeHeader cleans header cells, names empty ones "Unnamed: N" and suffixes
// duplicates with ".1", ".2", ... so every column keeps its own key.
func normalizeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, h := range header {
		name := utils.CleanHeader(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}
	return columns
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) require(path string, names ...string) error {
	for _, name := range names {
		if t.columnIndex(name) < 0 {
			return &IOError{Op: "read", Path: path, Err: fmt.Errorf("%w: %q", ErrMissingColumn, name)}
		}
	}
	return nil
}

// ------------------- Operators & Buildings -------------------

// LoadOperators reads the operators table. Bounds are coerced like building sizes, so
// an operator with an unparsable bound simply never matches.
func LoadOperators(ctx context.Context, path string, cols model.Columns) ([]model.Operator, error) {
	table, err := ReadTable(ctx, path)
	if err != nil {
		return nil, err
	}
	return OperatorsFromTable(table, path, cols)
}

// OperatorsFromTable converts an already-read table into operators.
func OperatorsFromTable(table *Table, path string, cols model.Columns) ([]model.Operator, error) {
	if err := table.require(path, cols.Operator, cols.MinSize, cols.MaxSize); err != nil {
		return nil, err
	}
	nameIdx := table.columnIndex(cols.Operator)
	minIdx := table.columnIndex(cols.MinSize)
	maxIdx := table.columnIndex(cols.MaxSize)

	operators := make([]model.Operator, 0, len(table.Rows))
	for i, row := range table.Rows {
		operators = append(operators, model.Operator{
			Row:     i,
			Name:    strings.TrimSpace(row[nameIdx]),
			MinSize: ParseSize(row[minIdx]),
			MaxSize: ParseSize(row[maxIdx]),
		})
	}
	return operators, nil
}

// LoadBuildings reads the buildings table. Sizes are left uncoerced; see CoerceSizes.
func LoadBuildings(ctx context.Context, path string, cols model.Columns) (model.BuildingTable, error) {
	table, err := ReadTable(ctx, path)
	if err != nil {
		return model.BuildingTable{}, err
	}
	return BuildingsFromTable(table, path, cols)
}

// BuildingsFromTable converts an already-read table into buildings.
func BuildingsFromTable(table *Table, path string, cols model.Columns) (model.BuildingTable, error) {
	if err := table.require(path, cols.Size); err != nil {
		return model.BuildingTable{}, err
	}
	result := model.BuildingTable{
		Columns:   append([]string(nil), table.Columns...),
		Buildings: make([]model.Building, 0, len(table.Rows)),
	}
	for i, row := range table.Rows {
		fields := make(map[string]string, len(table.Columns))
		for j, col := range table.Columns {
			fields[col] = row[j]
		}
		result.Buildings = append(result.Buildings, model.Building{Row: i, Fields: fields})
	}
	return result, nil
}

// Datasets holds both inputs of a match run.
type Datasets struct {
	Operators []model.Operator
	Buildings model.BuildingTable
}

// LoadDatasets reads the operators and buildings tables in parallel.
func LoadDatasets(ctx context.Context, inputs model.Inputs, cols model.Columns) (*Datasets, error) {
	var ds Datasets
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ops, err := LoadOperators(gctx, inputs.Operators, cols)
		if err != nil {
			return err
		}
		ds.Operators = ops
		return nil
	})
	g.Go(func() error {
		buildings, err := LoadBuildings(gctx, inputs.Buildings, cols)
		if err != nil {
			return err
		}
		ds.Buildings = buildings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}
