package tools

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mssql "github.com/microsoft/go-mssqldb"
)

// ErrorResponse represents a structured error in tool results.
// This is used to return actionable error information to Claude
// as a successful tool result, ensuring error details are visible
// rather than being swallowed by the MCP client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable/actionable errors that Claude should see and
// can potentially fix (e.g., invalid parameters, table not found).
//
// Do NOT use this for system failures (connection errors, internal
// server errors) - those should still return Go errors.
//
// Example:
//
//	if !exists {
//	    return NewErrorResult("table_not_found", "no table named 'dbo.Orders' found"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// NewErrorResultWithDetails creates an error result with additional context.
// The details field can contain any additional information that might help
// Claude understand and respond to the error.
//
// Example:
//
//	return NewErrorResultWithDetails(
//	    "injection_detected",
//	    "parameter failed SQL injection screening",
//	    map[string]any{"parameter": "search_text", "fingerprint": fp},
//	), nil
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// IsSQLUserError returns true if the error is a SQL user error (bad SQL,
// missing table, bad conversion, permission denied) rather than a server
// error (connection failure, internal error, etc.).
//
// These errors should be returned as JSON error results, not MCP protocol
// errors, because they are actionable by the user/AI - they can fix their
// SQL and retry.
//
// SQL Server severity classes 11-16 indicate errors the caller can correct;
// 17 and above indicate resource or engine faults.
func IsSQLUserError(err error) bool {
	if err == nil {
		return false
	}

	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Class >= 11 && sqlErr.Class <= 16
	}

	return false
}

// SQLUserErrorCode returns an appropriate error code for a SQL user error.
// Returns empty string if the error is not a SQL user error.
func SQLUserErrorCode(err error) string {
	var sqlErr mssql.Error
	if !errors.As(err, &sqlErr) {
		return ""
	}
	if sqlErr.Class < 11 || sqlErr.Class > 16 {
		return ""
	}
	return mapErrorNumberToCode(sqlErr.Number)
}

// mapErrorNumberToCode maps a SQL Server error number to a human-readable
// error code.
func mapErrorNumberToCode(number int32) string {
	switch number {
	case 102, 105, 156: // incorrect syntax / unclosed quote / keyword misuse
		return "syntax_error"
	case 207: // invalid column name
		return "undefined_column"
	case 208: // invalid object name
		return "undefined_table"
	case 209: // ambiguous column name
		return "ambiguous_column"
	case 241, 245, 8114: // conversion failures
		return "conversion_error"
	case 8134:
		return "division_by_zero"
	case 515: // cannot insert NULL
		return "not_null_violation"
	case 547: // constraint conflict
		return "constraint_violation"
	case 2627, 2601: // duplicate key
		return "unique_violation"
	case 229, 230, 262, 297: // permission denied
		return "permission_denied"
	case 1205:
		return "deadlock_victim"
	}
	return "sql_error"
}

// ExtractSQLErrorMessage extracts a clean error message from a SQL error.
// Uses the server-provided message when available and strips wrapper
// prefixes added along the way.
func ExtractSQLErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Message
	}

	msg := err.Error()
	prefixes := []string{
		"execution failed: ",
		"query execution failed: ",
		"failed to execute query: ",
		"mssql: ",
	}
	for _, prefix := range prefixes {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

// NewSQLErrorResult creates an error result from a SQL error if it's a user error.
// Returns nil if the error is not a SQL user error (caller should return Go error instead).
//
// Example usage:
//
//	result, err := executor.Query(ctx, sql)
//	if err != nil {
//	    if errResult := NewSQLErrorResult(err); errResult != nil {
//	        return errResult, nil
//	    }
//	    return nil, fmt.Errorf("query execution failed: %w", err)
//	}
func NewSQLErrorResult(err error) *mcp.CallToolResult {
	if !IsSQLUserError(err) {
		return nil
	}
	code := SQLUserErrorCode(err)
	message := ExtractSQLErrorMessage(err)
	return NewErrorResult(code, message)
}

// inputErrorPatterns are substrings that indicate an error is due to user input
// rather than a server failure. These errors should be logged at DEBUG/INFO level,
// not ERROR level, because they are expected when users provide invalid input.
var inputErrorPatterns = []string{
	"not found",
	"validation failed",
	"already exists",
	"invalid input",
	"missing required",
	"cannot be empty",
	"multiple sql statements",
}

// IsInputError returns true if the error appears to be caused by user input
// rather than a server failure. Input errors include:
//   - SQL user errors (syntax, missing table, bad conversion)
//   - Validation failures
//   - Resource not found (user named a table that does not exist)
//
// These errors should be logged at DEBUG level, not ERROR level.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}

	if IsSQLUserError(err) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range inputErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
