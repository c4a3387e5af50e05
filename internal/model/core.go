package model

// Inputs points at the two source tables.
type Inputs struct {
	Operators string `json:"operators"`
	Buildings string `json:"buildings"`
}

// Columns names the columns the matcher interprets. Everything else is passthrough.
type Columns struct {
	Operator string `json:"operator"`
	MinSize  string `json:"minSize"`
	MaxSize  string `json:"maxSize"`
	Size     string `json:"size"`
}

// Output defines where matches are written
type Output struct {
	Path        string `json:"path"`        // fixed output file, e.g. results/matched_buildings.xlsx
	PerOperator bool   `json:"perOperator"` // derive the file name from the operator name
	Dir         string `json:"dir"`         // directory for per-operator files
	Pattern     string `json:"pattern"`     // e.g. Matches_for_{operator}.xlsx
}

// MatchJobSpec is the body of POST /api/v1/matches
type MatchJobSpec struct {
	Operator string  `json:"operator"` // index or name
	ByName   bool    `json:"byName"`   // force name lookup even for numeric input
	Inputs   Inputs  `json:"inputs"`
	Output   *Output `json:"output,omitempty"`
	GroupBy  string  `json:"groupBy,omitempty"`
	Timeout  string  `json:"timeout,omitempty"` // e.g. "30s"
}

// Selector converts the requested operator into a Selector.
func (s MatchJobSpec) Selector() Selector {
	if s.ByName {
		return ByName(s.Operator)
	}
	return ParseSelector(s.Operator)
}
