package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"space-matchmaker/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// ErrNotInitialized is returned when the store is used before InitDB.
var ErrNotInitialized = errors.New("store not initialized")

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Initialize DB connection
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		selector TEXT,
		operator_name TEXT,
		min_size REAL,
		max_size REAL,
		operators_path TEXT,
		buildings_path TEXT,
		output_path TEXT,
		match_count INTEGER DEFAULT 0,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	stageTable := `
	CREATE TABLE IF NOT EXISTS run_stages (
		run_id TEXT,
		stage TEXT,
		status TEXT,
		started_at DATETIME,
		ended_at DATETIME,
		records INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0,
		PRIMARY KEY (run_id, stage)
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, stageTable, errorTable} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close closes the database
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// Enabled reports whether InitDB has been called.
func Enabled() bool {
	return db != nil
}

// SaveRun stores a new match run
func SaveRun(run model.RunRecord) error {
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.Status == "" {
		run.Status = model.RunPending
	}
	_, err := db.Exec(`INSERT INTO runs (id, selector, operators_path, buildings_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Selector, run.OperatorsPath, run.BuildingsPath, run.Status, run.CreatedAt, now)
	return err
}

// CompleteRun records the outcome of a run
func CompleteRun(run model.RunRecord) error {
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET operator_name = ?, min_size = ?, max_size = ?, output_path = ?,
		match_count = ?, status = ?, updated_at = ? WHERE id = ?`,
		run.OperatorName, nullFloat(run.MinSize), nullFloat(run.MaxSize), run.OutputPath,
		run.MatchCount, run.Status, now, run.ID)
	return err
}

// UpdateRunStatus updates run status
func UpdateRunStatus(runID string, status string) error {
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records an error for a run
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	if db == nil {
		return ErrNotInitialized
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// SaveStageProgress upserts the progress of one stage of a run
func SaveStageProgress(runID, stage, status string, start, end *time.Time, records, errCount int) error {
	if db == nil {
		return ErrNotInitialized
	}
	_, err := db.Exec(`INSERT INTO run_stages (run_id, stage, status, started_at, ended_at, records, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, stage) DO UPDATE SET
			status = excluded.status,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			records = excluded.records,
			errors = excluded.errors`,
		runID, stage, status, nullTime(start), nullTime(end), records, errCount)
	return err
}

// ListRuns returns the most recent runs first; limit <= 0 means no limit
func ListRuns(limit int) ([]model.RunRecord, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]model.RunRecord, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a single run with its most recent error
func GetRun(runID string) (*model.RunRecord, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	var msg string
	err = db.QueryRow(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id DESC LIMIT 1`, runID).Scan(&msg)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	run.Error = msg
	return run, nil
}

// GetRunStages returns the stages of a run in start order
func GetRunStages(runID string) ([]model.StageMetrics, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT stage, status, started_at, ended_at, records, errors
		FROM run_stages WHERE run_id = ? ORDER BY started_at, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := make([]model.StageMetrics, 0)
	for rows.Next() {
		var (
			s       model.StageMetrics
			started sql.NullTime
			ended   sql.NullTime
		)
		if err := rows.Scan(&s.Stage, &s.Status, &started, &ended, &s.RecordsProcessed, &s.ErrorCount); err != nil {
			return nil, err
		}
		if started.Valid {
			s.StartTime = started.Time
		}
		if ended.Valid {
			end := ended.Time
			s.EndTime = &end
			s.Duration = end.Sub(s.StartTime)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// GetRunErrors returns every error message recorded for a run, oldest first
func GetRunErrors(runID string) ([]string, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := db.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]string, 0)
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

const runColumns = `id, selector, operator_name, min_size, max_size, operators_path, buildings_path,
	output_path, match_count, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*model.RunRecord, error) {
	var (
		run          model.RunRecord
		operatorName sql.NullString
		outputPath   sql.NullString
		minSize      sql.NullFloat64
		maxSize      sql.NullFloat64
	)
	err := row.Scan(&run.ID, &run.Selector, &operatorName, &minSize, &maxSize,
		&run.OperatorsPath, &run.BuildingsPath, &outputPath, &run.MatchCount, &run.Status,
		&run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.OperatorName = operatorName.String
	run.OutputPath = outputPath.String
	if minSize.Valid {
		run.MinSize = &minSize.Float64
	}
	if maxSize.Valid {
		run.MaxSize = &maxSize.Float64
	}
	return &run, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
