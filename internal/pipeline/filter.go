package pipeline

import "space-matchmaker/internal/model"

// FilterBySizeRange keeps buildings with minSize <= size <= maxSize, in input order.
// Buildings with a missing size never match. The input slice is not modified.
func FilterBySizeRange(buildings []model.Building, minSize, maxSize float64) []model.Building {
	matches := make([]model.Building, 0)
	for _, b := range buildings {
		if b.Size.Missing() {
			continue
		}
		if b.Size.Value >= minSize && b.Size.Value <= maxSize {
			matches = append(matches, b)
		}
	}
	return matches
}

// MatchOperator filters an already-coerced table by the operator's range. An operator
// with a missing bound matches nothing.
func MatchOperator(op model.Operator, table model.BuildingTable, sizeColumn string) model.MatchResult {
	result := model.MatchResult{
		Operator:   op,
		Columns:    table.Columns,
		SizeColumn: sizeColumn,
		Buildings:  []model.Building{},
	}
	if op.MinSize.Missing() || op.MaxSize.Missing() {
		return result
	}
	result.Buildings = FilterBySizeRange(table.Buildings, op.MinSize.Value, op.MaxSize.Value)
	return result
}
