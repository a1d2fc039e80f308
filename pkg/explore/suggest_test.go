package explore

import (
	"strings"
	"testing"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(name, dataType string) lakehouse.ColumnDetail {
	return lakehouse.ColumnDetail{Name: name, DataType: dataType}
}

func purposes(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Purpose
	}
	return out
}

func TestBuildSuggestionsMinimalTable(t *testing.T) {
	// A table with no dates, strings, ids or numerics still gets the
	// universal suggestions.
	columns := []lakehouse.ColumnDetail{col("Flag", "bit")}

	suggestions := buildSuggestions("dbo", "Flags", columns)
	assert.Equal(t, []string{"data_preview", "size_check", "data_quality"}, purposes(suggestions))
	assert.Equal(t, "SELECT TOP 10 * FROM [dbo].[Flags]", suggestions[0].Query)
}

func TestBuildSuggestionsFullTable(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("IncidentId", "bigint"),
		col("Title", "nvarchar"),
		col("Status", "varchar"),
		col("CreatedDate", "datetime2"),
		col("Severity", "int"),
	}

	suggestions := buildSuggestions("ICM", "Incidents", columns)
	got := purposes(suggestions)

	assert.Contains(t, got, "data_freshness")
	assert.Contains(t, got, "recent_data")
	assert.Contains(t, got, "value_distribution")
	assert.Contains(t, got, "uniqueness_check")
	assert.Contains(t, got, "numeric_analysis")

	for _, s := range suggestions {
		assert.Contains(t, s.Query, "[ICM].[Incidents]")
	}
}

func TestFirstDateColumn(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("Title", "nvarchar"),
		col("EventTime", "datetimeoffset"),
		col("CreatedDate", "date"),
	}
	assert.Equal(t, "EventTime", firstDateColumn(columns))

	assert.Empty(t, firstDateColumn([]lakehouse.ColumnDetail{col("Amount", "decimal")}))
}

func TestPickDistributionColumnPrefersCategorical(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("Title", "nvarchar"),
		col("Status", "varchar"),
	}
	assert.Equal(t, "Status", pickDistributionColumn(columns))
}

func TestPickDistributionColumnFallsBackToFirstString(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("Amount", "decimal"),
		col("Title", "nvarchar"),
		col("Notes", "nvarchar"),
	}
	assert.Equal(t, "Title", pickDistributionColumn(columns))
}

func TestFirstIDColumnSkipsGuids(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("RowGuid", "uniqueidentifier"),
		col("OrderId", "bigint"),
	}
	assert.Equal(t, "OrderId", firstIDColumn(columns))
}

func TestBuildNullAnalysisQueryCapsAtFiveColumns(t *testing.T) {
	columns := []lakehouse.ColumnDetail{
		col("A", "int"), col("B", "int"), col("C", "int"),
		col("D", "int"), col("E", "int"), col("F", "int"),
	}

	query := buildNullAnalysisQuery("[dbo].[Wide]", columns)
	require.Contains(t, query, "[E_nulls]")
	assert.NotContains(t, query, "[F_nulls]")
	assert.Equal(t, 5, strings.Count(query, "IS NULL"))
}
