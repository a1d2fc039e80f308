package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/explore"
	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
)

// ExploreToolDeps contains dependencies for guided exploration tools.
type ExploreToolDeps struct {
	Service *explore.Service
	Logger  *zap.Logger
}

// RegisterExploreTools registers the profiling and onboarding tools.
func RegisterExploreTools(s *server.MCPServer, deps *ExploreToolDeps) {
	registerProfileTableTool(s, deps)
	registerStarterQueriesTool(s, deps)
	registerExplorationGuideTool(s, deps)
}

func registerProfileTableTool(s *server.MCPServer, deps *ExploreToolDeps) {
	tool := mcp.NewTool(
		"profile_table",
		mcp.WithDescription(
			"Profile a table: row count, per-column null percentage, distinct counts, "+
				"frequent values for text columns, and min/max/avg for numeric columns. "+
				"Distinct counts are sampled on large tables to keep the profile cheap. "+
				"Example: profile_table(schema='dbo', table='Orders', sample_size=1000)",
		),
		mcp.WithString(
			"schema",
			mcp.Required(),
			mcp.Description("Schema name (e.g., 'dbo')"),
		),
		mcp.WithString(
			"table",
			mcp.Required(),
			mcp.Description("Table name"),
		),
		mcp.WithNumber(
			"sample_size",
			mcp.Description("Optional - Sample size for distinct counts on large tables (default 1000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, table, errResult := requireSchemaTable(req)
		if errResult != nil {
			return errResult, nil
		}

		sampleSize := intOrDefault(req, "sample_size", explore.DefaultSampleSize)

		deps.Logger.Debug("profiling table",
			zap.String("schema", schema),
			zap.String("table", table),
			zap.Int("sample_size", sampleSize))

		profile, err := deps.Service.ProfileTable(ctx, schema, table, sampleSize)
		if err != nil {
			if errors.Is(err, lakehouse.ErrTableNotFound) {
				return NewErrorResult("table_not_found",
					fmt.Sprintf("no table named '%s.%s' found", schema, table)), nil
			}
			return nil, fmt.Errorf("failed to profile table: %w", err)
		}
		return newJSONResult(profile)
	})
}

func registerStarterQueriesTool(s *server.MCPServer, deps *ExploreToolDeps) {
	tool := mcp.NewTool(
		"get_starter_queries",
		mcp.WithDescription(
			"Suggest ready-to-run starter queries for a table based on its column types: "+
				"preview, size, freshness, value distribution, uniqueness, and data quality checks. "+
				"Example: get_starter_queries(schema='dbo', table='Orders')",
		),
		mcp.WithString(
			"schema",
			mcp.Required(),
			mcp.Description("Schema name (e.g., 'dbo')"),
		),
		mcp.WithString(
			"table",
			mcp.Required(),
			mcp.Description("Table name"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, table, errResult := requireSchemaTable(req)
		if errResult != nil {
			return errResult, nil
		}

		suggestions, err := deps.Service.SuggestQueries(ctx, schema, table)
		if err != nil {
			if errors.Is(err, lakehouse.ErrTableNotFound) {
				return NewErrorResult("table_not_found",
					fmt.Sprintf("no table named '%s.%s' found", schema, table)), nil
			}
			return nil, fmt.Errorf("failed to build starter queries: %w", err)
		}

		return newJSONResult(map[string]any{
			"schema":      schema,
			"table":       table,
			"suggestions": suggestions,
		})
	})
}

func registerExplorationGuideTool(s *server.MCPServer, deps *ExploreToolDeps) {
	tool := mcp.NewTool(
		"get_schema_exploration_guide",
		mcp.WithDescription(
			"Build a step-by-step exploration plan for a schema, ordering tables by size "+
				"and pointing at the most promising starting points. "+
				"Example: get_schema_exploration_guide(schema='dbo')",
		),
		mcp.WithString(
			"schema",
			mcp.Required(),
			mcp.Description("Schema name to explore (e.g., 'dbo')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, err := req.RequireString("schema")
		if err != nil {
			return nil, err
		}
		schema = trimString(schema)
		if schema == "" {
			return NewErrorResult("invalid_parameters", "parameter 'schema' cannot be empty"), nil
		}

		guide, err := deps.Service.ExplorationGuide(ctx, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to build exploration guide: %w", err)
		}
		return newJSONResult(guide)
	})
}
