package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(queryText string, cpuMs int64) QueryExecutionRecord {
	return QueryExecutionRecord{QueryText: queryText, CPUTimeMs: cpuMs}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.TotalExecutions)
	assert.Equal(t, 0, summary.UniquePatterns)
	assert.Empty(t, summary.TopQueries)
}

func TestSummarizeGroupsBySharedPrefix(t *testing.T) {
	// Two queries identical in their first 100 chars group together.
	prefix := strings.Repeat("SELECT col FROM tbl ", 5) // 100 chars
	require.Len(t, prefix, 100)

	records := []QueryExecutionRecord{
		rec(prefix+"WHERE id = 1", 50),
		rec(prefix+"WHERE id = 2", 150),
	}

	summary := Summarize(records)
	assert.Equal(t, 2, summary.TotalExecutions)
	assert.Equal(t, 1, summary.UniquePatterns)
	require.Len(t, summary.TopQueries, 1)

	top := summary.TopQueries[0]
	assert.Equal(t, prefix, top.Pattern)
	assert.Equal(t, 2, top.ExecutionCount)
	assert.Equal(t, 100.0, top.AvgCPUMs)
	assert.Equal(t, int64(200), top.TotalCPUMs)
}

func TestSummarizeOrdersByFrequencyDescending(t *testing.T) {
	records := []QueryExecutionRecord{
		rec("rare query", 10),
		rec("common query", 10),
		rec("common query", 10),
		rec("common query", 10),
		rec("middling query", 10),
		rec("middling query", 10),
	}

	summary := Summarize(records)
	require.Len(t, summary.TopQueries, 3)
	assert.Equal(t, "common query", summary.TopQueries[0].Pattern)
	assert.Equal(t, "middling query", summary.TopQueries[1].Pattern)
	assert.Equal(t, "rare query", summary.TopQueries[2].Pattern)
}

func TestSummarizeTiesKeepFirstSeenOrder(t *testing.T) {
	records := []QueryExecutionRecord{
		rec("alpha", 1),
		rec("beta", 1),
		rec("gamma", 1),
	}

	summary := Summarize(records)
	require.Len(t, summary.TopQueries, 3)
	assert.Equal(t, "alpha", summary.TopQueries[0].Pattern)
	assert.Equal(t, "beta", summary.TopQueries[1].Pattern)
	assert.Equal(t, "gamma", summary.TopQueries[2].Pattern)
}

func TestSummarizeCapsAtTenPatterns(t *testing.T) {
	var records []QueryExecutionRecord
	for i := 0; i < 15; i++ {
		records = append(records, rec(fmt.Sprintf("query %02d", i), 5))
	}

	summary := Summarize(records)
	assert.Equal(t, 15, summary.UniquePatterns)
	assert.Len(t, summary.TopQueries, 10)
}
