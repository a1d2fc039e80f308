package lakehouse

import (
	"fmt"
	"strings"
)

// QuoteName quotes an identifier with QUOTENAME semantics: square
// brackets, ] escaped as ]].
func QuoteName(identifier string) string {
	escaped := strings.ReplaceAll(identifier, "]", "]]")
	return fmt.Sprintf("[%s]", escaped)
}

// FullyQualifiedName builds a fully qualified table name: [schema].[table]
func FullyQualifiedName(schema, table string) string {
	return fmt.Sprintf("%s.%s", QuoteName(schema), QuoteName(table))
}

// mapSQLServerType maps SQL Server type names to standard type names so
// tool output is consistent regardless of the endpoint's exact types.
func mapSQLServerType(sqlServerType string) string {
	sqlServerType = strings.ToUpper(sqlServerType)

	switch sqlServerType {
	case "TINYINT":
		return "TINYINT"
	case "SMALLINT":
		return "SMALLINT"
	case "INT":
		return "INTEGER"
	case "BIGINT":
		return "BIGINT"

	case "DECIMAL", "NUMERIC":
		return "NUMERIC"
	case "MONEY", "SMALLMONEY":
		return "MONEY"
	case "FLOAT":
		return "DOUBLE PRECISION"
	case "REAL":
		return "REAL"

	case "CHAR", "NCHAR":
		return "CHAR"
	case "VARCHAR", "NVARCHAR":
		return "VARCHAR"
	case "TEXT", "NTEXT":
		return "TEXT"

	case "BINARY", "VARBINARY":
		return "BYTEA"

	case "DATE":
		return "DATE"
	case "TIME":
		return "TIME"
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return "TIMESTAMP"
	case "DATETIMEOFFSET":
		return "TIMESTAMP WITH TIME ZONE"

	case "BIT":
		return "BOOLEAN"

	case "UNIQUEIDENTIFIER":
		return "UUID"

	case "XML":
		return "XML"

	default:
		return sqlServerType
	}
}

// IsStringType returns true if the type is a string type in SQL Server.
func IsStringType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT":
		return true
	}
	return false
}

// IsNumericType returns true if the type is a numeric type in SQL Server.
func IsNumericType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "TINYINT", "SMALLINT", "INT", "BIGINT",
		"DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY",
		"FLOAT", "REAL":
		return true
	}
	return false
}

// IsDateTimeType returns true if the type is a date/time type in SQL Server.
func IsDateTimeType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "DATE", "TIME", "DATETIME", "DATETIME2", "SMALLDATETIME", "DATETIMEOFFSET":
		return true
	}
	return false
}
