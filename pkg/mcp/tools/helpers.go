package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
// This is a common helper used across MCP tool parameter validation.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

// getOptionalInt extracts an optional integer argument from the request.
// JSON numbers arrive as float64; fractional values are truncated.
func getOptionalInt(req mcp.CallToolRequest, key string) (int, bool) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	val, ok := args[key].(float64)
	if !ok {
		return 0, false
	}
	return int(val), true
}

// intOrDefault returns the optional integer argument, or defaultVal when
// the argument is absent or not a number.
func intOrDefault(req mcp.CallToolRequest, key string, defaultVal int) int {
	if val, ok := getOptionalInt(req, key); ok {
		return val
	}
	return defaultVal
}

// newJSONResult marshals v and wraps it in a text tool result.
func newJSONResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
