package semanticmodel

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// relationshipQueries are the two ways executeQueries exposes
// relationship metadata. Tenants differ in which one works, so both are
// tried and the results merged.
var relationshipQueries = []string{
	"EVALUATE TMSCHEMA_RELATIONSHIPS",
	"EVALUATE $SYSTEM.TMSCHEMA_RELATIONSHIPS",
}

// ListRelationships returns the relationships defined in a dataset.
// Each query variant that fails is logged and skipped; an error is
// returned only when every variant failed.
func (c *Client) ListRelationships(ctx context.Context, datasetID string) ([]Relationship, error) {
	var (
		relationships []Relationship
		seen          = make(map[string]bool)
		lastErr       error
		succeeded     int
	)

	for _, query := range relationshipQueries {
		rows, err := c.ExecuteQuery(ctx, datasetID, query)
		if err != nil {
			lastErr = err
			c.logger.Warn("relationship query variant failed",
				zap.String("dataset_id", datasetID),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		succeeded++

		for _, row := range rows {
			rel := parseRelationshipRow(row)
			key := strings.Join([]string{rel.Name, rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn}, "|")
			if !seen[key] {
				seen[key] = true
				relationships = append(relationships, rel)
			}
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all relationship queries failed: %w", lastErr)
	}

	return relationships, nil
}

// parseRelationshipRow reads one executeQueries row. Column keys come
// back either bare ("Name") or bracketed ("[Name]") depending on the
// query variant.
func parseRelationshipRow(row map[string]any) Relationship {
	return Relationship{
		Name:           rowString(row, "Name"),
		FromTable:      rowString(row, "FromTable"),
		FromColumn:     rowString(row, "FromColumn"),
		ToTable:        rowString(row, "ToTable"),
		ToColumn:       rowString(row, "ToColumn"),
		CrossFiltering: firstNonEmpty(rowString(row, "CrossFilterDirection"), rowString(row, "CrossFilteringBehavior")),
		IsActive:       rowBool(row, "IsActive", true),
	}
}

func rowValue(row map[string]any, key string) (any, bool) {
	if v, ok := row[key]; ok {
		return v, true
	}
	if v, ok := row["["+key+"]"]; ok {
		return v, true
	}
	return nil, false
}

func rowString(row map[string]any, key string) string {
	v, ok := rowValue(row, key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func rowBool(row map[string]any, key string, fallback bool) bool {
	v, ok := rowValue(row, key)
	if !ok || v == nil {
		return fallback
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
