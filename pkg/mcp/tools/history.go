package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/history"
)

// HistoryToolDeps contains dependencies for query history tools.
type HistoryToolDeps struct {
	Reader *history.Reader
	// DefaultHoursBack is applied when the caller omits hours_back.
	// Zero means history.DefaultHoursBack.
	DefaultHoursBack int
	Logger           *zap.Logger
}

// RegisterHistoryTools registers the query history log tools.
func RegisterHistoryTools(s *server.MCPServer, deps *HistoryToolDeps) {
	registerQueryHistoryTool(s, deps)
	registerQueryHistorySummaryTool(s, deps)
}

func (d *HistoryToolDeps) hoursBack(req mcp.CallToolRequest) int {
	fallback := d.DefaultHoursBack
	if fallback <= 0 {
		fallback = history.DefaultHoursBack
	}
	return intOrDefault(req, "hours_back", fallback)
}

func registerQueryHistoryTool(s *server.MCPServer, deps *HistoryToolDeps) {
	tool := mcp.NewTool(
		"query_history",
		mcp.WithDescription(
			"Read captured query execution history from the local log. Supports a time "+
				"window, case-insensitive text search, and a minimum CPU threshold. "+
				"Returns an empty list when no history has been captured yet. "+
				"Example: query_history(hours_back=24, search_text='orders', min_cpu_ms=100)",
		),
		mcp.WithNumber(
			"hours_back",
			mcp.Description("Optional - How many hours of history to read (default 24)"),
		),
		mcp.WithString(
			"search_text",
			mcp.Description("Optional - Case-insensitive substring to match in query text"),
		),
		mcp.WithNumber(
			"min_cpu_ms",
			mcp.Description("Optional - Only return queries with at least this much CPU time in milliseconds"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hoursBack := deps.hoursBack(req)
		if hoursBack < 0 {
			return NewErrorResult("invalid_parameters", "parameter 'hours_back' cannot be negative"), nil
		}

		filter := history.Filter{
			HoursBack:  hoursBack,
			SearchText: trimString(getOptionalString(req, "search_text")),
			MinCPUMs:   int64(intOrDefault(req, "min_cpu_ms", 0)),
		}

		records, err := deps.Reader.Read(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to read query history: %w", err)
		}

		deps.Logger.Debug("query history read",
			zap.Int("hours_back", hoursBack),
			zap.Int("records", len(records)))

		return newJSONResult(map[string]any{
			"hours_back": hoursBack,
			"records":    records,
			"count":      len(records),
		})
	})
}

func registerQueryHistorySummaryTool(s *server.MCPServer, deps *HistoryToolDeps) {
	tool := mcp.NewTool(
		"query_history_summary",
		mcp.WithDescription(
			"Summarize captured query history: total executions, unique query patterns, "+
				"and the 10 most frequent patterns with CPU aggregates. "+
				"Example: query_history_summary(hours_back=24)",
		),
		mcp.WithNumber(
			"hours_back",
			mcp.Description("Optional - How many hours of history to summarize (default 24)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hoursBack := deps.hoursBack(req)
		if hoursBack < 0 {
			return NewErrorResult("invalid_parameters", "parameter 'hours_back' cannot be negative"), nil
		}

		records, err := deps.Reader.Read(history.Filter{HoursBack: hoursBack})
		if err != nil {
			return nil, fmt.Errorf("failed to read query history: %w", err)
		}

		summary := history.Summarize(records)
		return newJSONResult(map[string]any{
			"hours_back": hoursBack,
			"summary":    summary,
		})
	})
}
