package model

import "time"

// MatchResult is the ordered subset of buildings that fit an operator's size range.
// An empty result is valid.
type MatchResult struct {
	Operator   Operator   `json:"operator"`
	Columns    []string   `json:"columns"`
	SizeColumn string     `json:"size_column"`
	Buildings  []Building `json:"buildings"`
}

// Empty reports whether nothing matched.
func (r MatchResult) Empty() bool { return len(r.Buildings) == 0 }

// Len returns the number of matching buildings.
func (r MatchResult) Len() int { return len(r.Buildings) }

// GroupSummary aggregates matches sharing the same value of a passthrough column.
type GroupSummary struct {
	GroupKey   string  `json:"group_key"`
	GroupValue string  `json:"group_value"`
	Count      int     `json:"count"`
	MinSize    float64 `json:"min_size"`
	MaxSize    float64 `json:"max_size"`
	AvgSize    float64 `json:"avg_size"`
	TotalSize  float64 `json:"total_size"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "excel", "csv", "json"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
