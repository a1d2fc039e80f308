// Package history captures lakehouse query statistics to an append-only
// JSONL log and answers questions over it. The plan cache on a Fabric
// SQL endpoint evicts aggressively, so snapshots are taken on a timer
// and persisted before they disappear.
package history

import (
	"time"
	"unicode/utf8"
)

// MaxQueryTextLength is the truncation limit for logged query text.
const MaxQueryTextLength = 500

// patternKeyLength is how much of the query text identifies a pattern.
const patternKeyLength = 100

// QueryExecutionRecord is one snapshot of a cached query's statistics.
// Records are immutable once written; the log is append-only.
type QueryExecutionRecord struct {
	CapturedAt        time.Time `json:"captured_at"`
	ExecutionCount    int64     `json:"execution_count"`
	CreationTime      time.Time `json:"creation_time"`
	LastExecutionTime time.Time `json:"last_execution_time"`
	CPUTimeMs         int64     `json:"cpu_time_ms"`
	ElapsedTimeMs     int64     `json:"elapsed_time_ms"`
	LogicalReads      int64     `json:"logical_reads"`
	LogicalWrites     int64     `json:"logical_writes"`
	QueryText         string    `json:"query_text"`
}

// truncateQueryText enforces the query text limit.
func truncateQueryText(text string) string {
	return truncateOnRuneBoundary(text, MaxQueryTextLength)
}

// patternKey returns the grouping key for summarization: the first 100
// bytes of the query text.
func patternKey(queryText string) string {
	return truncateOnRuneBoundary(queryText, patternKeyLength)
}

// truncateOnRuneBoundary cuts s to at most max bytes without splitting a
// UTF-8 rune. A torn rune would be rewritten as U+FFFD by the JSON
// encoder and break the write/read round trip.
func truncateOnRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

