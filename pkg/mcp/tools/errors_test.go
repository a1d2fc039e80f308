package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melisaluis/fabric-mcp/pkg/sqlcheck"
)

func decodeErrorResult(t *testing.T, text string) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	return resp
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("table_not_found", "no table named 'dbo.Orders' found")

	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	text := result.Content[0].(mcp.TextContent).Text
	resp := decodeErrorResult(t, text)
	assert.True(t, resp.Error)
	assert.Equal(t, "table_not_found", resp.Code)
	assert.Equal(t, "no table named 'dbo.Orders' found", resp.Message)
	assert.Nil(t, resp.Details)
}

func TestNewErrorResultWithDetails(t *testing.T) {
	result := NewErrorResultWithDetails("injection_detected", "screening failed",
		map[string]any{"parameter": "table"})

	assert.True(t, result.IsError)
	text := result.Content[0].(mcp.TextContent).Text
	resp := decodeErrorResult(t, text)
	assert.Equal(t, "injection_detected", resp.Code)

	details, ok := resp.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "table", details["parameter"])
}

func TestIsSQLUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"syntax error severity 15", mssql.Error{Number: 102, Class: 15, Message: "Incorrect syntax near 'FORM'."}, true},
		{"missing object severity 16", mssql.Error{Number: 208, Class: 16, Message: "Invalid object name 'dbo.Nope'."}, true},
		{"wrapped sql error", fmt.Errorf("query execution failed: %w", mssql.Error{Number: 207, Class: 16}), true},
		{"engine fault severity 20", mssql.Error{Number: 823, Class: 24, Message: "I/O error"}, false},
		{"plain error", errors.New("dial tcp: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSQLUserError(tt.err))
		})
	}
}

func TestSQLUserErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"syntax", mssql.Error{Number: 102, Class: 15}, "syntax_error"},
		{"undefined column", mssql.Error{Number: 207, Class: 16}, "undefined_column"},
		{"undefined table", mssql.Error{Number: 208, Class: 16}, "undefined_table"},
		{"conversion", mssql.Error{Number: 245, Class: 16}, "conversion_error"},
		{"division by zero", mssql.Error{Number: 8134, Class: 16}, "division_by_zero"},
		{"permission", mssql.Error{Number: 229, Class: 14}, "permission_denied"},
		{"unmapped number", mssql.Error{Number: 4104, Class: 16}, "sql_error"},
		{"server fault", mssql.Error{Number: 823, Class: 24}, ""},
		{"not a sql error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLUserErrorCode(tt.err))
		})
	}
}

func TestExtractSQLErrorMessage(t *testing.T) {
	sqlErr := mssql.Error{Number: 208, Class: 16, Message: "Invalid object name 'dbo.Nope'."}
	assert.Equal(t, "Invalid object name 'dbo.Nope'.",
		ExtractSQLErrorMessage(fmt.Errorf("query execution failed: %w", sqlErr)))

	assert.Equal(t, "something broke",
		ExtractSQLErrorMessage(errors.New("execution failed: something broke")))
	assert.Equal(t, "", ExtractSQLErrorMessage(nil))
}

func TestNewSQLErrorResult(t *testing.T) {
	result := NewSQLErrorResult(mssql.Error{Number: 102, Class: 15, Message: "Incorrect syntax near 'FORM'."})
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	resp := decodeErrorResult(t, result.Content[0].(mcp.TextContent).Text)
	assert.Equal(t, "syntax_error", resp.Code)
	assert.Equal(t, "Incorrect syntax near 'FORM'.", resp.Message)

	assert.Nil(t, NewSQLErrorResult(errors.New("dial tcp: connection refused")))
}

func TestIsInputError(t *testing.T) {
	assert.True(t, IsInputError(mssql.Error{Number: 102, Class: 15}))
	assert.True(t, IsInputError(errors.New("table not found")))
	assert.True(t, IsInputError(errors.New("parameter 'schema' cannot be empty")))
	assert.True(t, IsInputError(sqlcheck.ErrMultipleStatements))
	assert.False(t, IsInputError(errors.New("dial tcp: connection refused")))
	assert.False(t, IsInputError(nil))
}
