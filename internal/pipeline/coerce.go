package pipeline

import (
	"space-matchmaker/internal/model"
	"space-matchmaker/pkg/utils"
)

// ParseSize coerces raw size text. Anything unparsable becomes a missing Size.
func ParseSize(raw string) model.Size {
	v, ok := utils.ParseNumber(raw)
	return model.Size{Value: v, Valid: ok}
}

// CoerceSize returns a copy of b with Size parsed from the given column. The Fields
// map is shared, not copied; nothing in the pipeline writes to it.
func CoerceSize(b model.Building, column string) model.Building {
	b.Size = ParseSize(b.Fields[column])
	return b
}

// CoerceSizes coerces every building into a new table and reports how many sizes
// were missing. The input table is left untouched.
func CoerceSizes(table model.BuildingTable, column string) (model.BuildingTable, int) {
	out := model.BuildingTable{
		Columns:   table.Columns,
		Buildings: make([]model.Building, len(table.Buildings)),
	}
	missing := 0
	for i, b := range table.Buildings {
		out.Buildings[i] = CoerceSize(b, column)
		if out.Buildings[i].Size.Missing() {
			missing++
		}
	}
	return out, missing
}
