package render

import (
	"testing"
	"time"

	"space-matchmaker/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestOperators(t *testing.T) {
	out := Operators([]model.Operator{
		{Row: 0, Name: "Acme", MinSize: model.Size{Value: 1000, Valid: true}, MaxSize: model.Size{Value: 5000, Valid: true}},
		{Row: 1, Name: "Broken"},
	})
	assert.Contains(t, out, "Operator")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "5000")
	assert.Contains(t, out, "n/a")
}

func TestPreviewSkipsMissingColumns(t *testing.T) {
	result := model.MatchResult{
		Columns:    []string{"city", "size", "notes"},
		SizeColumn: "size",
		Buildings: []model.Building{
			{Fields: map[string]string{"city": "Leeds", "size": " 1200 ", "notes": "secret"}, Size: model.Size{Value: 1200, Valid: true}},
		},
	}

	out := Preview(result, []string{"city", "post code", "size"})
	assert.Contains(t, out, "Leeds")
	assert.Contains(t, out, "1200")
	assert.NotContains(t, out, "post code")
	assert.NotContains(t, out, "secret")

	all := Preview(result, []string{"nothing"})
	assert.Contains(t, all, "secret")
}

func TestSummary(t *testing.T) {
	assert.Empty(t, Summary(nil))
	out := Summary([]model.GroupSummary{{GroupKey: "city", GroupValue: "Leeds", Count: 2, MinSize: 100, MaxSize: 200, AvgSize: 150}})
	assert.Contains(t, out, "city")
	assert.Contains(t, out, "Leeds")
	assert.Contains(t, out, "150")
}

func TestRuns(t *testing.T) {
	out := Runs([]model.RunRecord{{ID: "abc", Status: model.RunMatched, MatchCount: 3, CreatedAt: time.Now()}})
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, model.RunMatched)
}
