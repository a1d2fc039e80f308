package explore

import (
	"context"
	"fmt"
	"sort"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
)

// Row count thresholds separating lookup tables from fact tables.
const (
	smallTableThreshold = 1000
	largeTableThreshold = 10000
)

// GuideStep is one step of the schema exploration path.
type GuideStep struct {
	Step   int      `json:"step"`
	Action string   `json:"action"`
	Tables []string `json:"tables"`
	Reason string   `json:"reason"`
}

// Guide is a suggested order for exploring a schema.
type Guide struct {
	Schema         string      `json:"schema"`
	TotalTables    int         `json:"total_tables"`
	Recommendation string      `json:"recommendation,omitempty"`
	Steps          []GuideStep `json:"exploration_steps,omitempty"`
}

// ExplorationGuide buckets a schema's tables by size and suggests an
// order to look at them.
func (s *Service) ExplorationGuide(ctx context.Context, schema string) (*Guide, error) {
	tables, err := s.catalog.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var inSchema []lakehouse.TableInfo
	for _, t := range tables {
		if t.Schema == schema {
			inSchema = append(inSchema, t)
		}
	}

	return buildGuide(schema, inSchema), nil
}

// buildGuide is the pure bucketing over the table list. Tables are
// considered largest-first within each step.
func buildGuide(schema string, tables []lakehouse.TableInfo) *Guide {
	if len(tables) == 0 {
		return &Guide{
			Schema:         schema,
			Recommendation: fmt.Sprintf("No tables found in schema %q", schema),
		}
	}

	sorted := make([]lakehouse.TableInfo, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RowCount > sorted[j].RowCount
	})

	var small, medium, large []string
	for _, t := range sorted {
		switch {
		case t.RowCount < smallTableThreshold:
			small = append(small, t.Name)
		case t.RowCount >= largeTableThreshold:
			large = append(large, t.Name)
		default:
			medium = append(medium, t.Name)
		}
	}

	return &Guide{
		Schema:      schema,
		TotalTables: len(tables),
		Steps: []GuideStep{
			{
				Step:   1,
				Action: "Start with small reference tables",
				Tables: topN(small, 3),
				Reason: "These are likely lookup/reference tables - understanding them first helps interpret the main data",
			},
			{
				Step:   2,
				Action: "Explore medium-sized fact tables",
				Tables: topN(medium, 3),
				Reason: "These contain the core business data and are easier to work with than the largest tables",
			},
			{
				Step:   3,
				Action: "Investigate large tables (be cautious with queries)",
				Tables: topN(large, 3),
				Reason: "These have the most data - use TOP/WHERE clauses to avoid slow queries",
			},
		},
	}
}

func topN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
