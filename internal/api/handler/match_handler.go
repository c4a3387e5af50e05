package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"space-matchmaker/internal/config"
	"space-matchmaker/internal/model"
	"space-matchmaker/internal/pipeline"
	"space-matchmaker/internal/store"
	"space-matchmaker/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	matchesPrefix  = "/api/v1/matches/"
	downloadPrefix = "/api/v1/download/"
)

// MatchHandler serves the match API. Every request runs as an independent match over
// freshly loaded inputs; runs are recorded in the store.
type MatchHandler struct {
	Config  *config.Config
	Logger  *zap.Logger
	Outputs *utils.OutputManager

	wg sync.WaitGroup
}

// NewMatchHandler creates a handler writing run outputs under cfg.Server.OutputDir.
func NewMatchHandler(cfg *config.Config, logger *zap.Logger) *MatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchHandler{
		Config:  cfg,
		Logger:  logger,
		Outputs: utils.NewOutputManager(cfg.Server.OutputDir),
	}
}

// Wait blocks until every background run has finished.
func (h *MatchHandler) Wait() {
	h.wg.Wait()
}

// CreateMatch starts a new match run
// @Summary Create a match run
// @Description Match one operator against the buildings table and export the result
// @Tags matches
// @Accept json
// @Produce json
// @Param match body model.MatchJobSpec true "Match request"
// @Success 202 {object} map[string]interface{} "Run accepted"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var spec model.MatchJobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// 1. Validate payload
	if strings.TrimSpace(spec.Operator) == "" {
		http.Error(w, "operator (index or name) is required", http.StatusBadRequest)
		return
	}
	if spec.Output != nil {
		if err := utils.CheckFilePattern(spec.Output.Pattern); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if spec.Inputs.Operators == "" {
		spec.Inputs.Operators = h.Config.Data.Operators
	}
	if spec.Inputs.Buildings == "" {
		spec.Inputs.Buildings = h.Config.Data.Buildings
	}
	for _, path := range []string{spec.Inputs.Operators, spec.Inputs.Buildings} {
		if err := h.checkDataPath(path); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// 2. Generate run ID and its output location
	runID := uuid.New().String()
	jobDir, err := h.Outputs.CreateJobOutputDir(runID)
	if err != nil {
		http.Error(w, "Failed to prepare output directory", http.StatusInternalServerError)
		return
	}
	output := h.runOutput(spec.Output, jobDir)

	// 3. Save run to DB
	sel := spec.Selector()
	run := model.RunRecord{
		ID:            runID,
		Selector:      sel.String(),
		OperatorsPath: spec.Inputs.Operators,
		BuildingsPath: spec.Inputs.Buildings,
		Status:        model.RunPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := store.SaveRun(run); err != nil {
		h.Logger.Error("failed to save run", zap.String("run_id", runID), zap.Error(err))
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	timeout := h.Config.JobTimeout()
	if spec.Timeout != "" {
		timeout = utils.ParseDuration(spec.Timeout)
	}
	groupBy := spec.GroupBy

	// 4. Run asynchronously
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h.execute(ctx, run, pipeline.Request{RunID: runID, Selector: sel, Inputs: spec.Inputs}, output, groupBy)
	}()

	// 5. Return response
	resp := map[string]interface{}{
		"message":   "Match run accepted",
		"runID":     runID,
		"status":    model.RunPending,
		"createdAt": run.CreatedAt,
		"links": map[string]string{
			"self":   matchesPrefix + runID,
			"stages": matchesPrefix + runID + "/stages",
		},
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// runOutput confines a requested output to the run's directory.
func (h *MatchHandler) runOutput(requested *model.Output, jobDir string) model.Output {
	out := h.Config.ModelOutput()
	if requested != nil {
		out.PerOperator = requested.PerOperator
		if requested.Path != "" {
			out.Path = requested.Path
		}
		if requested.Pattern != "" && utils.CheckFilePattern(requested.Pattern) == nil {
			out.Pattern = requested.Pattern
		}
	}
	if out.PerOperator {
		out.Dir = jobDir
		return out
	}
	name := filepath.Base(out.Path)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = filepath.Base(pipeline.DefaultOutputPath)
	}
	out.Path = filepath.Join(jobDir, utils.SanitizeFileName(name))
	return out
}

func (h *MatchHandler) execute(ctx context.Context, run model.RunRecord, req pipeline.Request, output model.Output, groupBy string) {
	logger := h.Logger.With(zap.String("run_id", run.ID))
	if err := store.UpdateRunStatus(run.ID, model.RunRunning); err != nil {
		logger.Warn("failed to update run status", zap.Error(err))
	}

	report, err := pipeline.Run(ctx, req, pipeline.Options{
		Columns: h.Config.ModelColumns(),
		Output:  output,
		GroupBy: groupBy,
		Logger:  logger,
		Tracker: pipeline.NewRunTracker(run.ID, true, logger),
	})

	run.Status = report.Status
	run.MatchCount = report.Result.Len()
	run.OutputPath = report.OutputPath
	if op := report.Result.Operator; op.Name != "" {
		run.OperatorName = op.Name
		run.MinSize = sizePtr(op.MinSize)
		run.MaxSize = sizePtr(op.MaxSize)
	}
	if err != nil {
		run.Status = model.RunFailed
		if saveErr := store.SaveRunError(run.ID, err); saveErr != nil {
			logger.Warn("failed to save run error", zap.Error(saveErr))
		}
		logger.Error("match run failed", zap.Error(err))
	} else if report.NotFound != "" {
		if saveErr := store.SaveRunError(run.ID, errors.New(report.NotFound)); saveErr != nil {
			logger.Warn("failed to save run error", zap.Error(saveErr))
		}
	}
	if err := store.CompleteRun(run); err != nil {
		logger.Error("failed to record run outcome", zap.Error(err))
	}
}

func sizePtr(s model.Size) *float64 {
	if s.Missing() {
		return nil
	}
	v := s.Value
	return &v
}

// ListMatches retrieves all match runs
// @Summary List match runs
// @Description Get the most recent match runs with their status
// @Tags matches
// @Produce json
// @Param limit query int false "Maximum number of runs"
// @Success 200 {array} model.RunRecord "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches [get]
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := store.ListRuns(limit)
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetMatch retrieves a specific match run
// @Summary Get match run
// @Description Retrieve status, operator and output of a match run
// @Tags matches
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /matches/{id} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	runID := pathParam(r.URL.Path, matchesPrefix, "")
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		h.notFoundOrError(w, err)
		return
	}

	resp := map[string]interface{}{"run": run}
	if run.OutputPath != "" {
		fileName := filepath.Base(run.OutputPath)
		file := map[string]interface{}{
			"name":         fileName,
			"type":         h.Outputs.GetFileType(fileName),
			"download_url": h.Outputs.GetDownloadURL(run.ID, fileName),
		}
		if size, err := h.Outputs.GetFileSize(run.OutputPath); err == nil {
			file["size"] = size
		}
		resp["file"] = file
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMatchStages retrieves stage progress of a run
// @Summary Get match run stages
// @Description Retrieve per-stage timings and record counts of a match run
// @Tags matches
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {array} model.StageMetrics "Stages"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /matches/{id}/stages [get]
func (h *MatchHandler) GetMatchStages(w http.ResponseWriter, r *http.Request) {
	runID := pathParam(r.URL.Path, matchesPrefix, "/stages")
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	if _, err := store.GetRun(runID); err != nil {
		h.notFoundOrError(w, err)
		return
	}

	stages, err := store.GetRunStages(runID)
	if err != nil {
		http.Error(w, "Failed to fetch stages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stages)
}

// GetMatchErrors retrieves errors of a run
// @Summary Get match run errors
// @Description Retrieve error messages recorded for a match run
// @Tags matches
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Errors"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /matches/{id}/errors [get]
func (h *MatchHandler) GetMatchErrors(w http.ResponseWriter, r *http.Request) {
	runID := pathParam(r.URL.Path, matchesPrefix, "/errors")
	if _, err := store.GetRun(runID); err != nil {
		h.notFoundOrError(w, err)
		return
	}
	messages, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to fetch errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runID":  runID,
		"errors": messages,
		"count":  len(messages),
	})
}

// ListOperators lists the operators of the configured table
// @Summary List operators
// @Description Read the operators table and return each operator with its size range
// @Tags operators
// @Produce json
// @Param path query string false "Operators table path inside the configured data directories (defaults to the configured table)"
// @Success 200 {array} model.Operator "Operators"
// @Failure 400 {object} map[string]interface{} "Path outside the data directories"
// @Failure 500 {object} map[string]interface{} "Operators table could not be read"
// @Router /operators [get]
func (h *MatchHandler) ListOperators(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = h.Config.Data.Operators
	}
	if err := h.checkDataPath(path); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ops, err := pipeline.LoadOperators(r.Context(), path, h.Config.ModelColumns())
	if err != nil {
		h.Logger.Warn("failed to load operators", zap.String("path", path), zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to read operators: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ops)
}

// DownloadFile serves an output file of a run
// @Summary Download file
// @Description Download the output file of a match run
// @Tags files
// @Produce application/octet-stream
// @Param runID path string true "Run ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {object} map[string]interface{} "Invalid URL format"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{runID}/{filename} [get]
func (h *MatchHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/runID/filename
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, downloadPrefix), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "Invalid URL format, expected /api/v1/download/{runID}/{filename}", http.StatusBadRequest)
		return
	}

	filePath, err := h.Outputs.ResolveDownloadPath(parts[0], parts[1])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", parts[1]))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, filePath)
}

// checkDataPath only admits tables inside the directories of the configured
// operators and buildings tables.
func (h *MatchHandler) checkDataPath(path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", path, err)
	}
	for _, configured := range []string{h.Config.Data.Operators, h.Config.Data.Buildings} {
		dir, err := filepath.Abs(filepath.Dir(configured))
		if err != nil {
			continue
		}
		if rel, err := filepath.Rel(dir, target); err == nil && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path %s is outside the data directories", path)
}

func (h *MatchHandler) notFoundOrError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	h.Logger.Error("store lookup failed", zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// pathParam extracts the segment between prefix and suffix.
func pathParam(path, prefix, suffix string) string {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
