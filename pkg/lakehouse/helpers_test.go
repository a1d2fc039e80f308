package lakehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "[orders]", QuoteName("orders"))
	assert.Equal(t, "[weird]]name]", QuoteName("weird]name"))
	assert.Equal(t, "[a]]]]b]", QuoteName("a]]b"))
}

func TestBuildFullyQualifiedName(t *testing.T) {
	assert.Equal(t, "[dbo].[orders]", FullyQualifiedName("dbo", "orders"))
}

func TestMapSQLServerType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"INT", "INTEGER"},
		{"int", "INTEGER"},
		{"NVARCHAR", "VARCHAR"},
		{"DATETIME2", "TIMESTAMP"},
		{"BIT", "BOOLEAN"},
		{"UNIQUEIDENTIFIER", "UUID"},
		{"GEOGRAPHY", "GEOGRAPHY"}, // unknown passes through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapSQLServerType(tt.input), "input %q", tt.input)
	}
}

func TestTypeClassifiers(t *testing.T) {
	assert.True(t, IsStringType("nvarchar"))
	assert.False(t, IsStringType("int"))
	assert.True(t, IsNumericType("DECIMAL"))
	assert.False(t, IsNumericType("NVARCHAR"))
	assert.True(t, IsDateTimeType("datetime2"))
	assert.False(t, IsDateTimeType("BIT"))
}
