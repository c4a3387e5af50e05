package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"space-matchmaker/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options control a match run. Out receives the user-facing diagnostics; a nil Out
// discards them.
type Options struct {
	Columns model.Columns
	Output  model.Output
	GroupBy string
	Out     io.Writer
	Logger  *zap.Logger
	Tracker *RunTracker
}

// Request identifies what to match.
type Request struct {
	RunID    string
	Selector model.Selector
	Inputs   model.Inputs
}

// Report describes the outcome of a run.
type Report struct {
	RunID        string               `json:"run_id"`
	Status       string               `json:"status"`
	Result       model.MatchResult    `json:"result"`
	OutputPath   string               `json:"output_path,omitempty"`
	Export       *model.ExportResult  `json:"export,omitempty"`
	Summary      []model.GroupSummary `json:"summary,omitempty"`
	MissingSizes int                  `json:"missing_sizes"`
	NotFound     string               `json:"not_found,omitempty"`
	Stages       []model.StageMetrics `json:"stages,omitempty"`
	Duration     time.Duration        `json:"duration"`
}

// Matcher is the core operation over in-memory collections: resolve the operator,
// coerce sizes, filter. It performs no I/O besides writing diagnostics to Out.
type Matcher struct {
	SizeColumn string
	Out        io.Writer
	Logger     *zap.Logger
	Tracker    *RunTracker
}

// Match resolves sel against operators and returns the buildings within its range.
// A selector that does not resolve is reported and yields an empty result together
// with the *NotFoundError, which callers are expected to recover from.
func (m *Matcher) Match(operators []model.Operator, table model.BuildingTable, sel model.Selector) (model.MatchResult, int, error) {
	out := m.Out
	if out == nil {
		out = io.Discard
	}
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	empty := model.MatchResult{Columns: table.Columns, SizeColumn: m.SizeColumn, Buildings: []model.Building{}}

	m.Tracker.StartStage(StageResolve)
	op, err := ResolveOperator(operators, sel)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			if sel.ByName {
				fmt.Fprintf(out, "❌ No operator found with this name: %s\n", sel.Name)
			} else {
				fmt.Fprintf(out, "❌ Invalid operator index: %d\n", sel.Index)
			}
		}
		m.Tracker.FailStage(StageResolve, err)
		return empty, 0, err
	}
	m.Tracker.EndStage(StageResolve, 1)

	fmt.Fprintf(out, "\n🔍 Selected Operator (row %d): %s\n", op.Row, op.Name)
	fmt.Fprintf(out, "Required Size Range: %s – %s sq ft\n", formatBound(op.MinSize), formatBound(op.MaxSize))

	m.Tracker.StartStage(StageCoerce)
	coerced, missing := CoerceSizes(table, m.SizeColumn)
	m.Tracker.EndStage(StageCoerce, len(coerced.Buildings)-missing)
	if missing > 0 {
		logger.Debug("buildings with unparsable size excluded",
			zap.String("column", m.SizeColumn),
			zap.Int("count", missing),
		)
	}

	m.Tracker.StartStage(StageFilter)
	result := MatchOperator(op, coerced, m.SizeColumn)
	m.Tracker.EndStage(StageFilter, result.Len())
	return result, missing, nil
}

func formatBound(s model.Size) string {
	if s.Missing() {
		return "n/a"
	}
	return s.String()
}

// Run loads both inputs, matches the selected operator and exports the result.
// An unresolved selector is not an error: the report carries status not_found and
// an empty result. I/O failures are returned as *IOError.
func Run(ctx context.Context, req Request, opts Options) (*Report, error) {
	start := time.Now()
	if req.RunID == "" {
		req.RunID = uuid.New().String()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", req.RunID))
	tracker := opts.Tracker
	if tracker != nil && tracker.RunID == "" {
		tracker.RunID = req.RunID
	}

	report := &Report{RunID: req.RunID, Status: model.RunRunning}
	defer func() {
		report.Stages = tracker.Stages()
		report.Duration = time.Since(start)
	}()

	logger.Info("starting match run",
		zap.Stringer("selector", req.Selector),
		zap.String("operators", req.Inputs.Operators),
		zap.String("buildings", req.Inputs.Buildings),
	)

	tracker.StartStage(StageLoad)
	ds, err := LoadDatasets(ctx, req.Inputs, opts.Columns)
	if err != nil {
		tracker.FailStage(StageLoad, err)
		report.Status = model.RunFailed
		return report, fmt.Errorf("failed to load inputs: %w", err)
	}
	tracker.EndStage(StageLoad, len(ds.Operators)+len(ds.Buildings.Buildings))

	m := &Matcher{SizeColumn: opts.Columns.Size, Out: out, Logger: logger, Tracker: tracker}
	result, missing, err := m.Match(ds.Operators, ds.Buildings, req.Selector)
	report.Result = result
	report.MissingSizes = missing
	if err != nil {
		if IsNotFound(err) {
			logger.Info("operator not found", zap.Error(err))
			report.Status = model.RunNotFound
			report.NotFound = err.Error()
			return report, nil
		}
		report.Status = model.RunFailed
		return report, err
	}

	report.Summary = Summarize(result, opts.GroupBy)

	if result.Empty() {
		fmt.Fprintln(out, "❌ No matching buildings found.")
		logger.Info("no matching buildings", zap.String("operator", result.Operator.Name))
		report.Status = model.RunNoMatch
		return report, nil
	}

	fmt.Fprintf(out, "✅ Found %d matching buildings.\n", result.Len())

	outputPath := OutputPathFor(opts.Output, result.Operator)
	tracker.StartStage(StageExport)
	export, err := ExportResult(result, outputPath)
	report.Export = &export
	if err != nil {
		tracker.FailStage(StageExport, err)
		report.Status = model.RunFailed
		return report, err
	}
	tracker.EndStage(StageExport, export.RecordCount)

	report.OutputPath = outputPath
	report.Status = model.RunMatched
	fmt.Fprintf(out, "💾 Results saved to: %s\n", outputPath)
	logger.Info("match run completed",
		zap.String("operator", result.Operator.Name),
		zap.Int("matches", result.Len()),
		zap.String("output", outputPath),
	)
	return report, nil
}
