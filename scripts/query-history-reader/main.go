// query-history-reader prints captured query history from the JSONL log.
//
// It reads the same log the capture loop writes and applies the same
// filters the query_history MCP tool exposes. Output is JSON on stdout,
// one document for the whole result.
//
// Usage: go run ./scripts/query-history-reader [flags]
//
// Flags:
//
//	-log      Path to the history log (default: query_history.jsonl)
//	-hours    How many hours of history to read (default: 24)
//	-search   Case-insensitive substring to match in query text
//	-min-cpu  Minimum CPU time in milliseconds
//	-summary  Print a pattern summary instead of raw records
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/history"
)

func main() {
	logPath := flag.String("log", "query_history.jsonl", "Path to the history log")
	hours := flag.Int("hours", history.DefaultHoursBack, "How many hours of history to read")
	search := flag.String("search", "", "Case-insensitive substring to match in query text")
	minCPU := flag.Int64("min-cpu", 0, "Minimum CPU time in milliseconds")
	summary := flag.Bool("summary", false, "Print a pattern summary instead of raw records")
	flag.Parse()

	if *hours < 0 {
		fmt.Fprintln(os.Stderr, "-hours cannot be negative")
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	reader := history.NewReader(*logPath, logger)
	records, err := reader.Read(history.Filter{
		HoursBack:  *hours,
		SearchText: *search,
		MinCPUMs:   *minCPU,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read history: %v\n", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if *summary {
		if err := encoder.Encode(history.Summarize(records)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode summary: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := encoder.Encode(map[string]any{
		"hours_back": *hours,
		"records":    records,
		"count":      len(records),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode records: %v\n", err)
		os.Exit(1)
	}
}
