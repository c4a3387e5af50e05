// Package render formats operators, matches and run history as terminal tables.
package render

import (
	"strconv"

	"space-matchmaker/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Operators lists operators with their position, the way a user selects them.
func Operators(ops []model.Operator) string {
	t := newTable("index", "Operator", "MinSize", "MaxSize")
	for _, op := range ops {
		t.Row(strconv.Itoa(op.Row), op.Name, bound(op.MinSize), bound(op.MaxSize))
	}
	return t.Render()
}

// Preview shows the requested columns of the matches. Columns the buildings table
// does not have are skipped; with none left every column is shown.
func Preview(result model.MatchResult, columns []string) string {
	present := make(map[string]bool, len(result.Columns))
	for _, c := range result.Columns {
		present[c] = true
	}
	var cols []string
	for _, c := range columns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = result.Columns
	}

	t := newTable(cols...)
	for _, b := range result.Buildings {
		row := make([]string, len(cols))
		for i, c := range cols {
			if c == result.SizeColumn {
				row[i] = b.Size.String()
				continue
			}
			row[i] = b.Field(c)
		}
		t.Row(row...)
	}
	return t.Render()
}

// Summary renders per-group statistics.
func Summary(groups []model.GroupSummary) string {
	if len(groups) == 0 {
		return ""
	}
	t := newTable(groups[0].GroupKey, "count", "min", "max", "avg")
	for _, g := range groups {
		t.Row(g.GroupValue, strconv.Itoa(g.Count), number(g.MinSize), number(g.MaxSize), number(g.AvgSize))
	}
	return t.Render()
}

// Runs renders run history, newest first.
func Runs(runs []model.RunRecord) string {
	t := newTable("id", "created", "selector", "operator", "status", "matches", "output")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Selector,
			r.OperatorName,
			r.Status,
			strconv.Itoa(r.MatchCount),
			r.OutputPath,
		)
	}
	return t.Render()
}

func bound(s model.Size) string {
	if s.Missing() {
		return "n/a"
	}
	return s.String()
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
