package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequireSchemaTable(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantCode string
	}{
		{
			name: "valid",
			args: map[string]any{"schema": "dbo", "table": "Orders"},
		},
		{
			name: "trims whitespace",
			args: map[string]any{"schema": " dbo ", "table": "\tOrders\n"},
		},
		{
			name:     "missing table",
			args:     map[string]any{"schema": "dbo"},
			wantCode: "invalid_parameters",
		},
		{
			name:     "empty schema",
			args:     map[string]any{"schema": "   ", "table": "Orders"},
			wantCode: "invalid_parameters",
		},
		{
			name:     "injection in table name",
			args:     map[string]any{"schema": "dbo", "table": "Orders' OR '1'='1"},
			wantCode: "injection_detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, table, errResult := requireSchemaTable(requestWithArgs(tt.args))
			if tt.wantCode == "" {
				require.Nil(t, errResult)
				assert.Equal(t, "dbo", schema)
				assert.Equal(t, "Orders", table)
				return
			}
			require.NotNil(t, errResult)
			resp := decodeErrorResult(t, errResult.Content[0].(mcp.TextContent).Text)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

// Parameter validation runs before any catalog access, so a server wired
// with no catalog still rejects bad input cleanly.
func TestDescribeTableToolRejectsBadParameters(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterLakehouseTools(mcpServer, &LakehouseToolDeps{Logger: zap.NewNop()})

	text, isError := callTool(t, mcpServer, "lakehouse_describe_table", map[string]any{
		"schema": "dbo",
		"table":  "",
	})
	assert.True(t, isError)
	resp := decodeErrorResult(t, text)
	assert.Equal(t, "invalid_parameters", resp.Code)
}

func TestSQLQueryToolRejectsMultipleStatements(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterLakehouseTools(mcpServer, &LakehouseToolDeps{Logger: zap.NewNop()})

	text, isError := callTool(t, mcpServer, "lakehouse_sql_query", map[string]any{
		"query": "SELECT 1; DROP TABLE dbo.Orders",
	})
	assert.True(t, isError)
	resp := decodeErrorResult(t, text)
	assert.Equal(t, "invalid_query", resp.Code)
}
