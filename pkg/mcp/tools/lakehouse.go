// Package tools provides MCP tool implementations for fabric-mcp.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"github.com/melisaluis/fabric-mcp/pkg/logging"
	"github.com/melisaluis/fabric-mcp/pkg/sqlcheck"
)

// defaultSampleLimit is how many rows lakehouse_sample_table returns when
// the caller does not ask for a specific count.
const defaultSampleLimit = 10

// LakehouseToolDeps contains dependencies for lakehouse SQL tools.
type LakehouseToolDeps struct {
	Executor *lakehouse.Executor
	Catalog  *lakehouse.Catalog
	Logger   *zap.Logger
}

// RegisterLakehouseTools registers the SQL endpoint query and catalog tools.
func RegisterLakehouseTools(s *server.MCPServer, deps *LakehouseToolDeps) {
	registerSQLQueryTool(s, deps)
	registerListTablesTool(s, deps)
	registerDescribeTableTool(s, deps)
	registerSampleTableTool(s, deps)
}

func registerSQLQueryTool(s *server.MCPServer, deps *LakehouseToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_sql_query",
		mcp.WithDescription(
			"Execute a read-only T-SQL query against the lakehouse SQL analytics endpoint. "+
				"Exactly one statement is allowed and the result set is capped at 1000 rows. "+
				"Example: lakehouse_sql_query(query='SELECT TOP 5 * FROM dbo.Orders', limit=5)",
		),
		mcp.WithString(
			"query",
			mcp.Required(),
			mcp.Description("T-SQL SELECT statement to execute"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Optional - Maximum rows to return (default 100, max 1000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return nil, err
		}

		normalized, err := sqlcheck.ValidateAndNormalize(query)
		if err != nil {
			return NewErrorResult("invalid_query", err.Error()), nil
		}

		limit := intOrDefault(req, "limit", 0)

		deps.Logger.Debug("executing lakehouse query",
			zap.String("query", logging.SanitizeQuery(normalized)),
			zap.Int("limit", limit))

		result, err := deps.Executor.Query(ctx, normalized, limit)
		if err != nil {
			if errResult := NewSQLErrorResult(err); errResult != nil {
				return errResult, nil
			}
			return nil, fmt.Errorf("query execution failed: %w", err)
		}
		return newJSONResult(result)
	})
}

func registerListTablesTool(s *server.MCPServer, deps *LakehouseToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_list_tables",
		mcp.WithDescription(
			"List all tables in the lakehouse with their schema and approximate row counts.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables, err := deps.Catalog.ListTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		return newJSONResult(map[string]any{
			"tables": tables,
			"count":  len(tables),
		})
	})
}

func registerDescribeTableTool(s *server.MCPServer, deps *LakehouseToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_describe_table",
		mcp.WithDescription(
			"Describe the columns of a table: name, data type, nullability, and ordinal position. "+
				"Example: lakehouse_describe_table(schema='dbo', table='Orders')",
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

		columns, err := deps.Catalog.DescribeTable(ctx, schema, table)
		if err != nil {
			if errors.Is(err, lakehouse.ErrTableNotFound) {
				return NewErrorResult("table_not_found",
					fmt.Sprintf("no table named '%s.%s' found", schema, table)), nil
			}
			return nil, fmt.Errorf("failed to describe table: %w", err)
		}

		return newJSONResult(map[string]any{
			"schema":       schema,
			"table":        table,
			"columns":      columns,
			"column_count": len(columns),
		})
	})
}

func registerSampleTableTool(s *server.MCPServer, deps *LakehouseToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_sample_table",
		mcp.WithDescription(
			"Return a few sample rows from a table to get a feel for its contents. "+
				"Example: lakehouse_sample_table(schema='dbo', table='Orders', limit=10)",
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
			"limit",
			mcp.Description("Optional - Number of rows to sample (default 10)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, table, errResult := requireSchemaTable(req)
		if errResult != nil {
			return errResult, nil
		}

		limit := intOrDefault(req, "limit", defaultSampleLimit)

		result, err := deps.Catalog.SampleTable(ctx, schema, table, limit)
		if err != nil {
			if errors.Is(err, lakehouse.ErrTableNotFound) {
				return NewErrorResult("table_not_found",
					fmt.Sprintf("no table named '%s.%s' found", schema, table)), nil
			}
			return nil, fmt.Errorf("failed to sample table: %w", err)
		}
		return newJSONResult(result)
	})
}

// requireSchemaTable extracts and validates the schema and table parameters
// shared by the table-scoped tools. A non-nil result is the error result to
// return to the caller.
func requireSchemaTable(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	schema, err := req.RequireString("schema")
	if err != nil {
		return "", "", NewErrorResult("invalid_parameters", err.Error())
	}
	table, err := req.RequireString("table")
	if err != nil {
		return "", "", NewErrorResult("invalid_parameters", err.Error())
	}

	schema = trimString(schema)
	table = trimString(table)
	if schema == "" {
		return "", "", NewErrorResult("invalid_parameters", "parameter 'schema' cannot be empty")
	}
	if table == "" {
		return "", "", NewErrorResult("invalid_parameters", "parameter 'table' cannot be empty")
	}

	for _, check := range sqlcheck.CheckAllParameters(map[string]any{"schema": schema, "table": table}) {
		if check.IsSQLi {
			return "", "", NewErrorResultWithDetails(
				"injection_detected",
				fmt.Sprintf("parameter '%s' failed SQL injection screening", check.ParamName),
				map[string]any{"parameter": check.ParamName, "fingerprint": check.Fingerprint},
			)
		}
	}

	return schema, table, nil
}
