package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"space-matchmaker/internal/model"
	"space-matchmaker/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// DefaultOutputPath is used when neither a fixed path nor per-operator naming is set.
const DefaultOutputPath = "results/matched_buildings.xlsx"

// DefaultSheet is the worksheet name used for Excel exports.
const DefaultSheet = "Sheet1"

// OutputPathFor decides where a result for op is written: either the fixed path or,
// with PerOperator, a file named after the sanitized operator name inside Dir.
func OutputPathFor(out model.Output, op model.Operator) string {
	if out.PerOperator {
		return filepath.Join(out.Dir, utils.OperatorFileName(out.Pattern, op.Name))
	}
	if out.Path == "" {
		return DefaultOutputPath
	}
	return out.Path
}

// ExportResult writes result to outputPath with a header row and no index column.
// The format follows the extension: .xlsx, .csv, .tsv or .json; anything else is CSV.
// Intermediate directories are created first.
func ExportResult(result model.MatchResult, outputPath string) (model.ExportResult, error) {
	export := model.ExportResult{
		Type:      utils.FileType(outputPath),
		Path:      outputPath,
		Timestamp: time.Now(),
	}
	if export.Type == "unknown" {
		export.Type = "csv"
	}

	if err := utils.EnsureParentDir(outputPath); err != nil {
		ioErr := &IOError{Op: "mkdir", Path: filepath.Dir(outputPath), Err: err}
		export.Error = ioErr.Error()
		return export, ioErr
	}

	var err error
	switch export.Type {
	case "excel":
		err = exportToExcel(result, outputPath)
	case "json":
		err = exportToJSON(result, outputPath)
	case "tsv":
		err = exportToCSV(result, outputPath, '\t')
	default:
		err = exportToCSV(result, outputPath, ',')
	}
	if err != nil {
		ioErr := &IOError{Op: "write", Path: outputPath, Err: err}
		export.Error = ioErr.Error()
		return export, ioErr
	}

	export.RecordCount = result.Len()
	export.Success = true
	return export, nil
}

// cellText renders one column of a matched building. The size column carries the
// coerced number; every other column is passed through untouched.
func cellText(result model.MatchResult, b model.Building, column string) string {
	if column == result.SizeColumn {
		return b.Size.String()
	}
	return b.Fields[column]
}

// exportToCSV exports matches to CSV (or TSV) format
func exportToCSV(result model.MatchResult, path string, comma rune) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = comma

	if err := writer.Write(result.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(result.Columns))
	for _, b := range result.Buildings {
		for i, col := range result.Columns {
			row[i] = cellText(result, b, col)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return file.Close()
}

// exportToExcel exports matches to a single-sheet workbook
func exportToExcel(result model.MatchResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, b := range result.Buildings {
		row := make([]interface{}, len(result.Columns))
		for j, col := range result.Columns {
			if col == result.SizeColumn && b.Size.Valid {
				row[j] = b.Size.Value
				continue
			}
			row[j] = b.Fields[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// exportToJSON exports matches to JSON format
func exportToJSON(result model.MatchResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	records := make([]map[string]interface{}, 0, result.Len())
	for _, b := range result.Buildings {
		rec := make(map[string]interface{}, len(result.Columns))
		for _, col := range result.Columns {
			if col == result.SizeColumn && b.Size.Valid {
				rec[col] = b.Size.Value
				continue
			}
			rec[col] = b.Fields[col]
		}
		records = append(records, rec)
	}

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"operator":     result.Operator.Name,
			"min_size":     result.Operator.MinSize.Value,
			"max_size":     result.Operator.MaxSize.Value,
			"columns":      result.Columns,
			"record_count": result.Len(),
		},
		"data": records,
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return file.Close()
}
