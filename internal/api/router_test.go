package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"space-matchmaker/internal/api/handler"
	"space-matchmaker/internal/config"
	"space-matchmaker/internal/model"
	"space-matchmaker/internal/store"
	"space-matchmaker/pkg/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  *router.Router
	handler *handler.MatchHandler
	dir     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, store.InitDB(filepath.Join(dir, "runs.db")))
	t.Cleanup(func() { _ = store.Close() })

	ops := filepath.Join(dir, "ops.csv")
	buildings := filepath.Join(dir, "buildings.csv")
	require.NoError(t, os.WriteFile(ops, []byte("Operator,MinSize,MaxSize\nAcme,1000,5000\nA/B,1,2000\n"), 0644))
	require.NoError(t, os.WriteFile(buildings, []byte(
		"city,post code,size\nLeeds,LS1,1200\nYork,YO1,6000\nHull,HU1,abc\nBath,BA1,5000\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Data.Operators = ops
	cfg.Data.Buildings = buildings
	cfg.Server.OutputDir = filepath.Join(dir, "exports")

	h := handler.NewMatchHandler(cfg, nil)
	r := router.New(nil)
	RegisterRoutes(r, h)
	return &testServer{router: r, handler: h, dir: dir}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createMatch(t *testing.T, spec model.MatchJobSpec) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/matches", spec)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		RunID  string `json:"runID"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RunPending, resp.Status)
	require.NotEmpty(t, resp.RunID)
	s.handler.Wait()
	return resp.RunID
}

type matchResponse struct {
	Run  model.RunRecord `json:"run"`
	File *struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		DownloadURL string `json:"download_url"`
		Size        int64  `json:"size"`
	} `json:"file"`
}

func (s *testServer) getMatch(t *testing.T, id string) matchResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/matches/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp matchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestMatchRunEndToEnd(t *testing.T) {
	s := newTestServer(t)
	id := s.createMatch(t, model.MatchJobSpec{
		Operator: "acme",
		Output:   &model.Output{Path: "matches.csv"},
	})

	resp := s.getMatch(t, id)
	assert.Equal(t, model.RunMatched, resp.Run.Status)
	assert.Equal(t, "Acme", resp.Run.OperatorName)
	assert.Equal(t, 2, resp.Run.MatchCount)
	require.NotNil(t, resp.Run.MinSize)
	assert.Equal(t, 1000.0, *resp.Run.MinSize)
	require.NotNil(t, resp.File)
	assert.Equal(t, "matches.csv", resp.File.Name)
	assert.Equal(t, "csv", resp.File.Type)
	assert.Equal(t, "/api/v1/download/"+id+"/matches.csv", resp.File.DownloadURL)
	assert.Positive(t, resp.File.Size)

	rec := s.do(t, http.MethodGet, resp.File.DownloadURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "matches.csv")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "city,post code,size\n"), body)
	assert.Contains(t, body, "Leeds")
	assert.Contains(t, body, "Bath")
	assert.NotContains(t, body, "York")

	rec = s.do(t, http.MethodGet, "/api/v1/matches/"+id+"/stages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stages []model.StageMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	assert.Len(t, stages, 5)

	rec = s.do(t, http.MethodGet, "/api/v1/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []model.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}

func TestMatchRunPerOperatorFile(t *testing.T) {
	s := newTestServer(t)
	id := s.createMatch(t, model.MatchJobSpec{
		Operator: "1",
		Output:   &model.Output{PerOperator: true},
	})

	resp := s.getMatch(t, id)
	assert.Equal(t, model.RunMatched, resp.Run.Status)
	assert.Equal(t, "A/B", resp.Run.OperatorName)
	require.NotNil(t, resp.File)
	assert.Equal(t, "Matches_for_A_B.xlsx", resp.File.Name)
	assert.FileExists(t, filepath.Join(s.dir, "exports", id, "Matches_for_A_B.xlsx"))
}

func TestMatchRunNotFound(t *testing.T) {
	s := newTestServer(t)
	id := s.createMatch(t, model.MatchJobSpec{Operator: "99"})

	resp := s.getMatch(t, id)
	assert.Equal(t, model.RunNotFound, resp.Run.Status)
	assert.Nil(t, resp.File)

	rec := s.do(t, http.MethodGet, "/api/v1/matches/"+id+"/errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var errs struct {
		Errors []string `json:"errors"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errs))
	assert.Equal(t, 1, errs.Count)
	assert.Contains(t, errs.Errors[0], "invalid operator index: 99")
}

func TestMatchRunMissingInput(t *testing.T) {
	s := newTestServer(t)
	id := s.createMatch(t, model.MatchJobSpec{
		Operator: "Acme",
		Inputs:   model.Inputs{Buildings: filepath.Join(s.dir, "nope.csv")},
	})

	resp := s.getMatch(t, id)
	assert.Equal(t, model.RunFailed, resp.Run.Status)
	assert.Contains(t, resp.Run.Error, "nope.csv")
}

func TestCreateMatchValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/matches", model.MatchJobSpec{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/matches", model.MatchJobSpec{
		Operator: "Acme",
		Output:   &model.Output{PerOperator: true, Pattern: "../../escape_{operator}.xlsx"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoFileExists(t, filepath.Join(s.dir, "escape_Acme.xlsx"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRun(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/matches/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/matches/missing/stages", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/download/missing/out.csv", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodDelete, "/api/v1/matches/missing", nil).Code)
}

func TestListOperators(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/operators", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []model.Operator
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, "Acme", ops[0].Name)
	assert.Equal(t, 5000.0, ops[0].MaxSize.Value)

	rec = s.do(t, http.MethodGet, "/api/v1/operators?path="+filepath.Join(s.dir, "missing.csv"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/operators?path=/etc/passwd", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateMatchRejectsInputsOutsideDataDir(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/matches", model.MatchJobSpec{
		Operator: "Acme",
		Inputs:   model.Inputs{Buildings: filepath.Join(s.dir, "..", "buildings.csv")},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	runs, err := store.ListRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSwaggerDoc(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/matches/{id}/stages")
}
