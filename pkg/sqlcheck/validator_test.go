package sqlcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "plain select",
			input: "SELECT * FROM dbo.orders",
			want:  "SELECT * FROM dbo.orders",
		},
		{
			name:  "trailing semicolon stripped",
			input: "SELECT 1;",
			want:  "SELECT 1",
		},
		{
			name:  "trailing semicolon with whitespace",
			input: "SELECT 1 ;  \n",
			want:  "SELECT 1",
		},
		{
			name:  "semicolon inside string literal",
			input: "SELECT * FROM t WHERE note = 'a;b'",
			want:  "SELECT * FROM t WHERE note = 'a;b'",
		},
		{
			name:  "doubled quote escape then semicolon in string",
			input: "SELECT 'it''s; fine' AS v",
			want:  "SELECT 'it''s; fine' AS v",
		},
		{
			name:  "literal ending in backslash",
			input: `SELECT 'C:\' AS path`,
			want:  `SELECT 'C:\' AS path`,
		},
		{
			name:    "two statements",
			input:   "SELECT 1; SELECT 2",
			wantErr: ErrMultipleStatements,
		},
		{
			// A backslash before the closing quote does not escape it in
			// T-SQL; the semicolons after '\' are statement separators.
			name:    "backslash before closing quote hides batch",
			input:   `SELECT '\') AS x; DROP TABLE dbo.Orders; SELECT ('x'`,
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "backslash in double-quoted identifier",
			input:   `SELECT 1 AS "a\"; DROP TABLE t; SELECT "b`,
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "piggybacked drop",
			input:   "SELECT * FROM t; DROP TABLE t",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: ErrEmptyQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAndNormalize(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
