package lakehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// PotentialRelationship is an inferred join between two tables. Fabric
// lakehouse tables usually carry no declared foreign keys, so joins are
// guessed from column naming conventions.
type PotentialRelationship struct {
	FromSchema string `json:"from_schema"`
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToSchema   string `json:"to_schema"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
	MatchType  string `json:"match_type"` // "name_pattern" or "shared_column"
}

// catalogColumn is one (schema, table, column) triple from the catalog.
type catalogColumn struct {
	Schema string
	Table  string
	Column string
}

// linkSuffixes are the column suffixes treated as join-key candidates.
var linkSuffixes = []string{"Id", "ID", "_id", "Key", "Code", "Ref"}

// FindPotentialRelationships infers joins from column names:
// a column like CustomerId points at a table named Customer or Customers,
// and identical key-suffixed columns shared by two tables suggest a join.
func (c *Catalog) FindPotentialRelationships(ctx context.Context) ([]PotentialRelationship, error) {
	const query = `
SELECT s.name AS schema_name, t.name AS table_name, c.name AS column_name
FROM sys.columns c
JOIN sys.tables t ON c.object_id = t.object_id
JOIN sys.schemas s ON t.schema_id = s.schema_id
ORDER BY s.name, t.name, c.column_id`

	ctx, cancel := c.conn.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := c.conn.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	columns, err := scanCatalogColumns(rows)
	if err != nil {
		return nil, err
	}

	return matchPotentialRelationships(columns), nil
}

func scanCatalogColumns(rows *sql.Rows) ([]catalogColumn, error) {
	var columns []catalogColumn
	for rows.Next() {
		var col catalogColumn
		if err := rows.Scan(&col.Schema, &col.Table, &col.Column); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// linkBase returns the column name with a recognized key suffix
// stripped, or "" if the column does not look like a join key.
// A bare "Id" has no base and is the table's own key, not a link.
func linkBase(column string) string {
	for _, suffix := range linkSuffixes {
		if strings.HasSuffix(column, suffix) && len(column) > len(suffix) {
			return strings.TrimSuffix(column, suffix)
		}
	}
	return ""
}

// matchPotentialRelationships runs the naming heuristic over the full
// column list. Pure function; results are ordered by input order.
func matchPotentialRelationships(columns []catalogColumn) []PotentialRelationship {
	// Index tables by lowercase name for the name-pattern match.
	type tableKey struct{ Schema, Table string }
	tablesByName := make(map[string][]tableKey)
	tableSeen := make(map[tableKey]bool)
	for _, col := range columns {
		key := tableKey{col.Schema, col.Table}
		if !tableSeen[key] {
			tableSeen[key] = true
			tablesByName[strings.ToLower(col.Table)] = append(tablesByName[strings.ToLower(col.Table)], key)
		}
	}

	// Index key-suffixed columns by lowercase column name for the
	// shared-column match.
	sharedIndex := make(map[string][]catalogColumn)

	var rels []PotentialRelationship
	seen := make(map[string]bool)

	addRel := func(rel PotentialRelationship) {
		dedupeKey := strings.ToLower(fmt.Sprintf("%s.%s.%s->%s.%s.%s",
			rel.FromSchema, rel.FromTable, rel.FromColumn,
			rel.ToSchema, rel.ToTable, rel.ToColumn))
		if !seen[dedupeKey] {
			seen[dedupeKey] = true
			rels = append(rels, rel)
		}
	}

	for _, col := range columns {
		base := linkBase(col.Column)
		if base == "" {
			continue
		}

		// Name pattern: CustomerId -> Customer or Customers.
		candidates := []string{
			strings.ToLower(base),
			strings.ToLower(inflection.Plural(base)),
			strings.ToLower(inflection.Singular(base)),
		}
		for _, candidate := range candidates {
			for _, target := range tablesByName[candidate] {
				if target.Schema == col.Schema && target.Table == col.Table {
					continue
				}
				addRel(PotentialRelationship{
					FromSchema: col.Schema,
					FromTable:  col.Table,
					FromColumn: col.Column,
					ToSchema:   target.Schema,
					ToTable:    target.Table,
					ToColumn:   col.Column,
					MatchType:  "name_pattern",
				})
			}
		}

		// Shared column: the same key-suffixed name in two tables.
		for _, other := range sharedIndex[strings.ToLower(col.Column)] {
			if other.Schema == col.Schema && other.Table == col.Table {
				continue
			}
			addRel(PotentialRelationship{
				FromSchema: other.Schema,
				FromTable:  other.Table,
				FromColumn: other.Column,
				ToSchema:   col.Schema,
				ToTable:    col.Table,
				ToColumn:   col.Column,
				MatchType:  "shared_column",
			})
		}
		sharedIndex[strings.ToLower(col.Column)] = append(sharedIndex[strings.ToLower(col.Column)], col)
	}

	return rels
}
