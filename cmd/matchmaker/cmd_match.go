package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"space-matchmaker/internal/model"
	"space-matchmaker/internal/pipeline"
	"space-matchmaker/internal/prompt"
	"space-matchmaker/internal/render"
	"space-matchmaker/internal/store"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type matchFlags struct {
	name        string
	index       int
	operators   string
	buildings   string
	output      string
	perOperator bool
	outputDir   string
	groupBy     string
	preview     []string
	history     bool
}

func newMatchCmd(a *app) *cobra.Command {
	f := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "match [index|name]",
		Short: "Export the buildings matching one operator's size range",
		Long: `Select an operator by zero-based index or by name (case-insensitive) and write the
buildings whose size lies within its range to the output file.

Without a selector on a terminal, an interactive picker opens.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMatch(cmd, args, f)
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "select the operator by name")
	cmd.Flags().IntVar(&f.index, "index", -1, "select the operator by zero-based index")
	cmd.Flags().StringVar(&f.operators, "operators", "", "operators table (.xlsx, .csv, .tsv)")
	cmd.Flags().StringVar(&f.buildings, "buildings", "", "buildings table (.xlsx, .csv, .tsv)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (.xlsx, .csv, .tsv, .json)")
	cmd.Flags().BoolVar(&f.perOperator, "per-operator", false, "name the output file after the operator")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for per-operator output files")
	cmd.Flags().StringVar(&f.groupBy, "group-by", "", "summarize the matches by this column")
	cmd.Flags().StringSliceVar(&f.preview, "preview", nil, "columns to print after matching")
	cmd.Flags().BoolVar(&f.history, "history", false, "record the run in the history database")
	return cmd
}

func (a *app) runMatch(cmd *cobra.Command, args []string, f *matchFlags) error {
	cfg := a.cfg
	out := cmd.OutOrStdout()

	if f.operators != "" {
		cfg.Data.Operators = f.operators
	}
	if f.buildings != "" {
		cfg.Data.Buildings = f.buildings
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	if cmd.Flags().Changed("per-operator") {
		cfg.Output.PerOperator = f.perOperator
	}
	if f.outputDir != "" {
		cfg.Output.Dir = f.outputDir
	}
	if f.groupBy != "" {
		cfg.Output.GroupBy = f.groupBy
	}
	if len(f.preview) > 0 {
		cfg.Output.Preview = f.preview
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sel, err := a.selector(cmd, args, f)
	if err != nil {
		return err
	}

	req := pipeline.Request{RunID: uuid.New().String(), Selector: sel, Inputs: cfg.ModelInputs()}
	history := f.history || cfg.Store.History
	if history {
		if err := store.InitDB(cfg.Store.Path); err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRun(model.RunRecord{
			ID:            req.RunID,
			Selector:      sel.String(),
			OperatorsPath: req.Inputs.Operators,
			BuildingsPath: req.Inputs.Buildings,
			Status:        model.RunRunning,
			CreatedAt:     time.Now().UTC(),
		}); err != nil {
			return err
		}
	}

	report, runErr := pipeline.Run(cmd.Context(), req, pipeline.Options{
		Columns: cfg.ModelColumns(),
		Output:  cfg.ModelOutput(),
		GroupBy: cfg.Output.GroupBy,
		Out:     out,
		Logger:  a.logger,
		Tracker: pipeline.NewRunTracker(req.RunID, history, a.logger),
	})
	if history {
		a.recordRun(req.RunID, sel, report, runErr)
	}
	if runErr != nil {
		return runErr
	}

	if report.Status == model.RunMatched {
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.Preview(report.Result, cfg.Output.Preview))
		if len(report.Summary) > 0 {
			fmt.Fprintln(out, render.Summary(report.Summary))
		}
	}
	return nil
}

// selector decides which operator to match: explicit flags first, then the
// positional argument, then the interactive picker on a terminal.
func (a *app) selector(cmd *cobra.Command, args []string, f *matchFlags) (model.Selector, error) {
	switch {
	case f.name != "":
		return model.ByName(f.name), nil
	case cmd.Flags().Changed("index"):
		return model.ByIndex(f.index), nil
	case len(args) == 1:
		return model.ParseSelector(args[0]), nil
	}

	in := cmd.InOrStdin()
	if !isTerminal(in) {
		return model.Selector{}, errors.New("an operator index or name is required when not running in a terminal")
	}
	ops, err := pipeline.LoadOperators(cmd.Context(), a.cfg.Data.Operators, a.cfg.ModelColumns())
	if err != nil {
		return model.Selector{}, err
	}
	return prompt.PickOperator(ops, in, cmd.OutOrStdout())
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) recordRun(runID string, sel model.Selector, report *pipeline.Report, runErr error) {
	run := model.RunRecord{
		ID:         runID,
		Selector:   sel.String(),
		Status:     report.Status,
		MatchCount: report.Result.Len(),
		OutputPath: report.OutputPath,
	}
	if op := report.Result.Operator; op.Name != "" {
		run.OperatorName = op.Name
		run.MinSize = sizeValue(op.MinSize)
		run.MaxSize = sizeValue(op.MaxSize)
	}
	if runErr == nil && report.NotFound != "" {
		runErr = errors.New(report.NotFound)
	}
	if err := store.SaveRunError(runID, runErr); err != nil {
		a.logger.Warn("failed to save run error", zap.Error(err))
	}
	if err := store.CompleteRun(run); err != nil {
		a.logger.Warn("failed to record run", zap.String("run_id", runID), zap.Error(err))
	}
}

func sizeValue(s model.Size) *float64 {
	if s.Missing() {
		return nil
	}
	v := s.Value
	return &v
}
