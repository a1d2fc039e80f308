package history

import "sort"

// topPatternCount is how many query patterns a summary reports.
const topPatternCount = 10

// PatternSummary aggregates the records sharing one query pattern.
type PatternSummary struct {
	Pattern        string  `json:"pattern"`
	ExecutionCount int     `json:"execution_count"`
	AvgCPUMs       float64 `json:"avg_cpu_ms"`
	TotalCPUMs     int64   `json:"total_cpu_ms"`
}

// Summary is the aggregate view over a set of history records.
type Summary struct {
	TotalExecutions int              `json:"total_executions"`
	UniquePatterns  int              `json:"unique_patterns"`
	TopQueries      []PatternSummary `json:"top_queries"`
}

// Summarize groups records by the first 100 characters of their query
// text and reports the 10 most frequent patterns. Ordering is by
// descending frequency; ties keep first-seen order, so the result is
// deterministic for a given input order.
func Summarize(records []QueryExecutionRecord) *Summary {
	groups := make(map[string]*PatternSummary)
	var order []string

	for _, rec := range records {
		key := patternKey(rec.QueryText)
		group, ok := groups[key]
		if !ok {
			group = &PatternSummary{Pattern: key}
			groups[key] = group
			order = append(order, key)
		}
		group.ExecutionCount++
		group.TotalCPUMs += rec.CPUTimeMs
	}

	summaries := make([]PatternSummary, 0, len(order))
	for _, key := range order {
		group := groups[key]
		group.AvgCPUMs = float64(group.TotalCPUMs) / float64(group.ExecutionCount)
		summaries = append(summaries, *group)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ExecutionCount > summaries[j].ExecutionCount
	})

	top := summaries
	if len(top) > topPatternCount {
		top = top[:topPatternCount]
	}

	return &Summary{
		TotalExecutions: len(records),
		UniquePatterns:  len(groups),
		TopQueries:      top,
	}
}
