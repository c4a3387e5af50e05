package model

import "time"

// Run statuses
const (
	RunPending  = "pending"
	RunRunning  = "running"
	RunMatched  = "matched"
	RunNoMatch  = "no_match"
	RunNotFound = "not_found"
	RunFailed   = "failed"
)

// StageMetrics represents metrics for a single stage of a match run
type StageMetrics struct {
	Stage            string        `json:"stage"`
	Status           string        `json:"status"` // "running", "completed", "failed"
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int           `json:"records_processed"`
	ErrorCount       int           `json:"error_count"`
}

// RunRecord is the persisted summary of one match run.
type RunRecord struct {
	ID            string    `json:"id"`
	Selector      string    `json:"selector"`
	OperatorName  string    `json:"operator_name,omitempty"`
	MinSize       *float64  `json:"min_size,omitempty"`
	MaxSize       *float64  `json:"max_size,omitempty"`
	OperatorsPath string    `json:"operators_path"`
	BuildingsPath string    `json:"buildings_path"`
	OutputPath    string    `json:"output_path,omitempty"`
	MatchCount    int       `json:"match_count"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
