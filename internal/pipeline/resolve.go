package pipeline

import (
	"strings"

	"space-matchmaker/internal/model"
)

// ResolveOperator finds the operator addressed by sel. Positions are zero-based;
// names compare case-insensitively against the whole name and the first match wins.
func ResolveOperator(operators []model.Operator, sel model.Selector) (model.Operator, error) {
	if !sel.ByName {
		if sel.Index < 0 || sel.Index >= len(operators) {
			return model.Operator{}, &NotFoundError{Selector: sel, Count: len(operators)}
		}
		return operators[sel.Index], nil
	}

	want := strings.TrimSpace(sel.Name)
	for _, op := range operators {
		if strings.EqualFold(strings.TrimSpace(op.Name), want) {
			return op, nil
		}
	}
	return model.Operator{}, &NotFoundError{Selector: sel, Count: len(operators)}
}
