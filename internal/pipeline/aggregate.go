package pipeline

import (
	"sort"
	"strings"

	"space-matchmaker/internal/model"
)

// BlankGroup labels buildings whose group column is empty.
const BlankGroup = "(blank)"

// groupAccumulator collects metrics for one group value
type groupAccumulator struct {
	summary model.GroupSummary
}

func (g *groupAccumulator) add(size float64) {
	s := &g.summary
	if s.Count == 0 || size < s.MinSize {
		s.MinSize = size
	}
	if s.Count == 0 || size > s.MaxSize {
		s.MaxSize = size
	}
	s.Count++
	s.TotalSize += size
	s.AvgSize = s.TotalSize / float64(s.Count)
}

// Summarize groups matched buildings by a passthrough column and computes count, min,
// max, total and average size per group. Groups are sorted by value. An empty groupBy
// yields nil.
func Summarize(result model.MatchResult, groupBy string) []model.GroupSummary {
	if groupBy == "" {
		return nil
	}

	groups := make(map[string]*groupAccumulator)
	for _, b := range result.Buildings {
		if b.Size.Missing() {
			continue
		}
		value := strings.TrimSpace(b.Field(groupBy))
		if value == "" {
			value = BlankGroup
		}
		acc, ok := groups[value]
		if !ok {
			acc = &groupAccumulator{summary: model.GroupSummary{GroupKey: groupBy, GroupValue: value}}
			groups[value] = acc
		}
		acc.add(b.Size.Value)
	}

	summaries := make([]model.GroupSummary, 0, len(groups))
	for _, acc := range groups {
		summaries = append(summaries, acc.summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GroupValue < summaries[j].GroupValue
	})
	return summaries
}
