package lakehouse

import (
	"context"
	"database/sql"
	"fmt"
)

// MaxQueryLimit is the hard cap on rows returned by any lakehouse query.
const MaxQueryLimit = 1000

// DefaultQueryLimit is used when the caller does not pass a limit.
const DefaultQueryLimit = 100

// ColumnInfo describes one column in a query result.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryResult holds the bounded result of a lakehouse query.
type QueryResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Executor runs bounded queries against a lakehouse connection. Every
// statement runs under the connection's configured query timeout.
type Executor struct {
	conn *Conn
}

// NewExecutor creates an executor over an open connection.
func NewExecutor(conn *Conn) *Executor {
	return &Executor{conn: conn}
}

// effectiveLimit clamps a caller-supplied limit into (0, MaxQueryLimit].
func effectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

// boundQuery wraps a query so the endpoint never streams back an
// unbounded result set.
func boundQuery(query string, limit int) string {
	return fmt.Sprintf("SELECT TOP (%d) * FROM (%s) AS _limited", effectiveLimit(limit), query)
}

// Query runs a SELECT statement and returns bounded results. The query
// is wrapped with TOP regardless of what the caller wrote.
func (e *Executor) Query(ctx context.Context, query string, limit int) (*QueryResult, error) {
	return e.run(ctx, boundQuery(query, limit))
}

// QueryWithParams runs a parameterized SELECT with bounded results.
// The SQL uses @p1, @p2, ... placeholders; params are bound positionally.
func (e *Executor) QueryWithParams(ctx context.Context, query string, params []any, limit int) (*QueryResult, error) {
	namedParams := make([]any, len(params))
	for i, param := range params {
		namedParams[i] = sql.Named(fmt.Sprintf("p%d", i+1), param)
	}
	return e.run(ctx, boundQuery(query, limit), namedParams...)
}

// QueryRaw runs a statement verbatim, without the TOP wrapper. Used for
// catalog queries that already bound themselves.
func (e *Executor) QueryRaw(ctx context.Context, query string, params ...any) (*QueryResult, error) {
	return e.run(ctx, query, params...)
}

func (e *Executor) run(ctx context.Context, query string, params ...any) (*QueryResult, error) {
	ctx, cancel := e.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := e.conn.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// collectRows scans every row into a map keyed by column name.
// []byte values in text columns come back as string.
func collectRows(rows *sql.Rows) (*QueryResult, error) {
	columnNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	columns := make([]ColumnInfo, len(columnNames))
	for i, colName := range columnNames {
		columns[i] = ColumnInfo{
			Name: colName,
			Type: mapSQLServerType(columnTypes[i].DatabaseTypeName()),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columnNames))
		valuePtrs := make([]any, len(columnNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		rowMap := make(map[string]any)
		for i, col := range columnNames {
			val := values[i]
			if b, ok := val.([]byte); ok && IsStringType(columnTypes[i].DatabaseTypeName()) {
				val = string(b)
			}
			rowMap[col] = val
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
