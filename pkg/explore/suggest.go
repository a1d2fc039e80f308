package explore

import (
	"context"
	"fmt"
	"strings"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
)

// Suggestion is one starter query with its rationale.
type Suggestion struct {
	Description string `json:"description"`
	Query       string `json:"query"`
	Purpose     string `json:"purpose"`
}

// interestingKeywords mark string columns that usually carry a small
// categorical domain worth a distribution query.
var interestingKeywords = []string{"status", "type", "category", "severity", "priority", "state"}

// SuggestQueries generates starter queries for a table based on its
// column structure. The table must exist; DescribeTable gates that.
func (s *Service) SuggestQueries(ctx context.Context, schema, table string) ([]Suggestion, error) {
	columns, err := s.catalog.DescribeTable(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	return buildSuggestions(schema, table, columns), nil
}

// buildSuggestions is the pure heuristic over the column list.
func buildSuggestions(schema, table string, columns []lakehouse.ColumnDetail) []Suggestion {
	fullName := lakehouse.FullyQualifiedName(schema, table)

	suggestions := []Suggestion{
		{
			Description: "Preview first 10 rows to see sample data",
			Query:       fmt.Sprintf("SELECT TOP 10 * FROM %s", fullName),
			Purpose:     "data_preview",
		},
		{
			Description: "Count total number of records",
			Query:       fmt.Sprintf("SELECT COUNT(*) AS total_records FROM %s", fullName),
			Purpose:     "size_check",
		},
	}

	if dateCol := firstDateColumn(columns); dateCol != "" {
		quoted := lakehouse.QuoteName(dateCol)
		suggestions = append(suggestions,
			Suggestion{
				Description: "Check data freshness - when was data last updated?",
				Query: fmt.Sprintf(`SELECT
    MIN(%[1]s) AS oldest_record,
    MAX(%[1]s) AS newest_record,
    COUNT(*) AS total_records,
    DATEDIFF(day, MIN(%[1]s), MAX(%[1]s)) AS days_span
FROM %[2]s`, quoted, fullName),
				Purpose: "data_freshness",
			},
			Suggestion{
				Description: "Show most recent 10 records",
				Query:       fmt.Sprintf("SELECT TOP 10 * FROM %s ORDER BY %s DESC", fullName, quoted),
				Purpose:     "recent_data",
			},
		)
	}

	if distCol := pickDistributionColumn(columns); distCol != "" {
		quoted := lakehouse.QuoteName(distCol)
		suggestions = append(suggestions, Suggestion{
			Description: fmt.Sprintf("Show distribution of values in %s", quoted),
			Query: fmt.Sprintf(`SELECT
    %[1]s,
    COUNT(*) AS count,
    CAST(COUNT(*) * 100.0 / SUM(COUNT(*)) OVER () AS DECIMAL(5,2)) AS percentage
FROM %[2]s
GROUP BY %[1]s
ORDER BY COUNT(*) DESC`, quoted, fullName),
			Purpose: "value_distribution",
		})
	}

	if idCol := firstIDColumn(columns); idCol != "" {
		quoted := lakehouse.QuoteName(idCol)
		suggestions = append(suggestions, Suggestion{
			Description: fmt.Sprintf("Check if %s is unique (find duplicates)", quoted),
			Query: fmt.Sprintf(`SELECT
    %[1]s,
    COUNT(*) AS frequency
FROM %[2]s
GROUP BY %[1]s
HAVING COUNT(*) > 1
ORDER BY COUNT(*) DESC`, quoted, fullName),
			Purpose: "uniqueness_check",
		})
	}

	suggestions = append(suggestions, Suggestion{
		Description: "Check for null/missing values across columns",
		Query:       buildNullAnalysisQuery(fullName, columns),
		Purpose:     "data_quality",
	})

	if numCol := firstNumericColumn(columns); numCol != "" {
		quoted := lakehouse.QuoteName(numCol)
		suggestions = append(suggestions, Suggestion{
			Description: fmt.Sprintf("Basic statistics for numeric column %s", quoted),
			Query: fmt.Sprintf(`SELECT
    MIN(%[1]s) AS min_value,
    MAX(%[1]s) AS max_value,
    AVG(CAST(%[1]s AS FLOAT)) AS avg_value,
    COUNT(DISTINCT %[1]s) AS distinct_values
FROM %[2]s
WHERE %[1]s IS NOT NULL`, quoted, fullName),
			Purpose: "numeric_analysis",
		})
	}

	return suggestions
}

// firstDateColumn returns the first date/time typed column.
func firstDateColumn(columns []lakehouse.ColumnDetail) string {
	for _, col := range columns {
		if lakehouse.IsDateTimeType(col.DataType) {
			return col.Name
		}
	}
	return ""
}

// pickDistributionColumn prefers a status/type/category-like string
// column, falling back to the first string column.
func pickDistributionColumn(columns []lakehouse.ColumnDetail) string {
	first := ""
	for _, col := range columns {
		if !strings.Contains(strings.ToLower(col.DataType), "char") {
			continue
		}
		if first == "" {
			first = col.Name
		}
		lower := strings.ToLower(col.Name)
		for _, keyword := range interestingKeywords {
			if strings.Contains(lower, keyword) {
				return col.Name
			}
		}
	}
	return first
}

// firstIDColumn returns the first column that looks like an identifier,
// skipping GUIDs whose duplicates are never interesting.
func firstIDColumn(columns []lakehouse.ColumnDetail) string {
	for _, col := range columns {
		lower := strings.ToLower(col.Name)
		if strings.Contains(lower, "id") && !strings.Contains(lower, "guid") {
			return col.Name
		}
	}
	return ""
}

func firstNumericColumn(columns []lakehouse.ColumnDetail) string {
	for _, col := range columns {
		switch strings.ToLower(col.DataType) {
		case "int", "bigint", "decimal", "numeric", "float", "real":
			return col.Name
		}
	}
	return ""
}

// buildNullAnalysisQuery covers the first 5 columns; beyond that the
// result gets too wide to read.
func buildNullAnalysisQuery(fullName string, columns []lakehouse.ColumnDetail) string {
	limit := len(columns)
	if limit > 5 {
		limit = 5
	}

	var b strings.Builder
	b.WriteString("SELECT\n")
	for _, col := range columns[:limit] {
		fmt.Fprintf(&b, "    SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END) AS %s,\n",
			lakehouse.QuoteName(col.Name), lakehouse.QuoteName(col.Name+"_nulls"))
	}
	b.WriteString("    COUNT(*) AS total_rows\nFROM ")
	b.WriteString(fullName)
	return b.String()
}
