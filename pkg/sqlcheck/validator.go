// Package sqlcheck provides SQL statement validation for lakehouse queries.
package sqlcheck

import (
	"errors"
	"strings"
)

var (
	// ErrMultipleStatements indicates the query contains more than one SQL statement.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

	// ErrEmptyQuery indicates the query is empty after trimming.
	ErrEmptyQuery = errors.New("query must not be empty")
)

// ValidateAndNormalize trims the query, strips a single trailing
// semicolon, and rejects anything that still contains a semicolon
// outside of string literals. T-SQL batches are never forwarded to the
// lakehouse as one request.
func ValidateAndNormalize(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	normalized := stripTrailingSemicolon(query)

	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}

	return normalized, nil
}

// hasSemicolonOutsideStrings scans the query with a small quote-aware
// state machine. A semicolon inside '...' or "..." is data, not a
// statement separator.
func hasSemicolonOutsideStrings(query string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal

	for _, char := range query {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// T-SQL escapes a quote by doubling it, never with a
			// backslash. A doubled quote exits here and immediately
			// re-enters the string on the next character, so treating
			// every quote as a delimiter is correct.
			if char == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' {
				state = stateNormal
			}
		}
	}

	return false
}

func stripTrailingSemicolon(query string) string {
	query = strings.TrimRight(query, " \t\n\r")
	if strings.HasSuffix(query, ";") {
		query = strings.TrimSuffix(query, ";")
		query = strings.TrimRight(query, " \t\n\r")
	}
	return query
}
