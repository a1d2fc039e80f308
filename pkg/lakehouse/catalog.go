package lakehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrTableNotFound indicates the requested table does not exist in the
// lakehouse catalog.
var ErrTableNotFound = errors.New("table not found")

// TableInfo describes one table in the lakehouse.
type TableInfo struct {
	Schema   string `json:"schema"`
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// ColumnDetail describes one column of a table.
type ColumnDetail struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	MaxLength       *int64 `json:"max_length,omitempty"`
	Precision       *int64 `json:"precision,omitempty"`
	Scale           *int64 `json:"scale,omitempty"`
	IsNullable      bool   `json:"is_nullable"`
	OrdinalPosition int    `json:"ordinal_position"`
}

// Relationship describes a declared foreign key between two tables.
type Relationship struct {
	Name       string `json:"name"`
	FromSchema string `json:"from_schema"`
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToSchema   string `json:"to_schema"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// PrimaryKeyColumn describes one column of a primary key index.
type PrimaryKeyColumn struct {
	Schema     string `json:"schema"`
	Table      string `json:"table"`
	Column     string `json:"column"`
	KeyOrdinal int    `json:"key_ordinal"`
	IndexName  string `json:"index_name"`
}

// SchemaStat summarizes one schema of the lakehouse.
type SchemaStat struct {
	Schema          string `json:"schema"`
	TableCount      int    `json:"table_count"`
	ColumnCount     int    `json:"column_count"`
	LinkColumnCount int    `json:"link_column_count"`
}

// Catalog answers metadata questions about the lakehouse. Every query
// shape returns its own record type and binds identifiers as parameters;
// the only interpolated identifiers go through QuoteName after a
// TableExists gate.
type Catalog struct {
	conn     *Conn
	executor *Executor
}

// NewCatalog creates a catalog over an open connection.
func NewCatalog(conn *Conn) *Catalog {
	return &Catalog{conn: conn, executor: NewExecutor(conn)}
}

// ListTables returns every user table with its approximate row count.
func (c *Catalog) ListTables(ctx context.Context) ([]TableInfo, error) {
	const query = `
SELECT s.name AS schema_name, t.name AS table_name, SUM(p.rows) AS row_count
FROM sys.tables t
JOIN sys.schemas s ON t.schema_id = s.schema_id
JOIN sys.partitions p ON t.object_id = p.object_id AND p.index_id IN (0, 1)
GROUP BY s.name, t.name
ORDER BY s.name, t.name`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.RowCount); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// TableExists checks the catalog for the given table. This is the
// allow-list gate for every operation that interpolates identifiers.
func (c *Catalog) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const query = `
SELECT COUNT(*) AS table_count
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2`

	result, err := c.executor.QueryWithParams(ctx, query, []any{schema, table}, 1)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	if result.RowCount == 0 {
		return false, nil
	}

	count, ok := result.Rows[0]["table_count"].(int64)
	if !ok {
		return false, fmt.Errorf("check table exists: unexpected count type %T", result.Rows[0]["table_count"])
	}

	return count > 0, nil
}

// DescribeTable returns the column definitions of a table in ordinal order.
func (c *Catalog) DescribeTable(ctx context.Context, schema, table string) ([]ColumnDetail, error) {
	exists, err := c.TableExists(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}

	const query = `
SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH,
       NUMERIC_PRECISION, NUMERIC_SCALE, IS_NULLABLE, ORDINAL_POSITION
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query,
		sql.Named("p1", schema),
		sql.Named("p2", table),
	)
	if err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	defer rows.Close()

	var columns []ColumnDetail
	for rows.Next() {
		var (
			col        ColumnDetail
			maxLength  sql.NullInt64
			precision  sql.NullInt64
			scale      sql.NullInt64
			isNullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &maxLength, &precision, &scale, &isNullable, &col.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		if maxLength.Valid {
			col.MaxLength = &maxLength.Int64
		}
		if precision.Valid {
			col.Precision = &precision.Int64
		}
		if scale.Valid {
			col.Scale = &scale.Int64
		}
		col.IsNullable = isNullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

// SampleTable returns up to limit rows from the table. The identifiers
// are validated against the catalog before being quoted into the query.
func (c *Catalog) SampleTable(ctx context.Context, schema, table string, limit int) (*QueryResult, error) {
	exists, err := c.TableExists(ctx, schema, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, schema, table)
	}

	query := fmt.Sprintf("SELECT TOP (%d) * FROM %s",
		effectiveLimit(limit), FullyQualifiedName(schema, table))

	result, err := c.executor.QueryRaw(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample table: %w", err)
	}

	return result, nil
}

// FindForeignKeys returns every declared foreign key relationship.
// Fabric lakehouses rarely declare them, which is why
// FindPotentialRelationships exists as the heuristic companion.
func (c *Catalog) FindForeignKeys(ctx context.Context) ([]Relationship, error) {
	const query = `
SELECT fk.name,
       ps.name AS parent_schema, pt.name AS parent_table, pc.name AS parent_column,
       rs.name AS ref_schema, rt.name AS ref_table, rc.name AS ref_column
FROM sys.foreign_key_columns fkc
JOIN sys.foreign_keys fk ON fkc.constraint_object_id = fk.object_id
JOIN sys.tables pt ON fkc.parent_object_id = pt.object_id
JOIN sys.schemas ps ON pt.schema_id = ps.schema_id
JOIN sys.columns pc ON fkc.parent_object_id = pc.object_id AND fkc.parent_column_id = pc.column_id
JOIN sys.tables rt ON fkc.referenced_object_id = rt.object_id
JOIN sys.schemas rs ON rt.schema_id = rs.schema_id
JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
ORDER BY fk.name`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find foreign keys: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.Name, &r.FromSchema, &r.FromTable, &r.FromColumn,
			&r.ToSchema, &r.ToTable, &r.ToColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}

	return rels, nil
}

// FindPrimaryKeys returns every primary key column in key order.
func (c *Catalog) FindPrimaryKeys(ctx context.Context) ([]PrimaryKeyColumn, error) {
	const query = `
SELECT s.name AS schema_name, t.name AS table_name, c.name AS column_name,
       ic.key_ordinal, i.name AS index_name
FROM sys.indexes i
JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id
JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id
JOIN sys.tables t ON i.object_id = t.object_id
JOIN sys.schemas s ON t.schema_id = s.schema_id
WHERE i.is_primary_key = 1
ORDER BY s.name, t.name, ic.key_ordinal`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find primary keys: %w", err)
	}
	defer rows.Close()

	var keys []PrimaryKeyColumn
	for rows.Next() {
		var k PrimaryKeyColumn
		if err := rows.Scan(&k.Schema, &k.Table, &k.Column, &k.KeyOrdinal, &k.IndexName); err != nil {
			return nil, fmt.Errorf("scan primary key row: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate primary keys: %w", err)
	}

	return keys, nil
}

// SchemaStats summarizes each user schema: table count, column count,
// and how many columns look like join keys (Id/Key/Code/Ref suffix).
func (c *Catalog) SchemaStats(ctx context.Context) ([]SchemaStat, error) {
	const query = `
SELECT s.name AS schema_name,
       COUNT(DISTINCT t.object_id) AS table_count,
       COUNT(c.column_id) AS column_count,
       SUM(CASE WHEN c.name LIKE '%Id' OR c.name LIKE '%Key'
                  OR c.name LIKE '%Code' OR c.name LIKE '%Ref'
             THEN 1 ELSE 0 END) AS link_column_count
FROM sys.schemas s
JOIN sys.tables t ON t.schema_id = s.schema_id
JOIN sys.columns c ON c.object_id = t.object_id
GROUP BY s.name
ORDER BY s.name`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("schema stats: %w", err)
	}
	defer rows.Close()

	var stats []SchemaStat
	for rows.Next() {
		var st SchemaStat
		if err := rows.Scan(&st.Schema, &st.TableCount, &st.ColumnCount, &st.LinkColumnCount); err != nil {
			return nil, fmt.Errorf("scan schema stat row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema stats: %w", err)
	}

	return stats, nil
}
