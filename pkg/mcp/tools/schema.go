package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/lakehouse"
)

// SchemaToolDeps contains dependencies for schema discovery tools.
type SchemaToolDeps struct {
	Catalog *lakehouse.Catalog
	Logger  *zap.Logger
}

// RegisterSchemaTools registers the relationship and schema statistics tools.
func RegisterSchemaTools(s *server.MCPServer, deps *SchemaToolDeps) {
	registerFindRelationshipsTool(s, deps)
	registerFindPotentialRelationshipsTool(s, deps)
	registerFindPrimaryKeysTool(s, deps)
	registerSchemaStatsTool(s, deps)
}

func registerFindRelationshipsTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_find_relationships",
		mcp.WithDescription(
			"Find declared foreign key relationships between tables. "+
				"Lakehouse SQL endpoints rarely declare foreign keys, so an empty result "+
				"is common - use lakehouse_find_potential_relationships as a fallback.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		relationships, err := deps.Catalog.FindForeignKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find relationships: %w", err)
		}
		return newJSONResult(map[string]any{
			"relationships": relationships,
			"count":         len(relationships),
		})
	})
}

func registerFindPotentialRelationshipsTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_find_potential_relationships",
		mcp.WithDescription(
			"Infer likely join relationships from column naming conventions "+
				"(CustomerId -> Customers.Id, shared link columns across tables). "+
				"These are heuristic matches, not declared constraints.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		relationships, err := deps.Catalog.FindPotentialRelationships(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find potential relationships: %w", err)
		}
		return newJSONResult(map[string]any{
			"potential_relationships": relationships,
			"count":                   len(relationships),
		})
	})
}

func registerFindPrimaryKeysTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_find_primary_keys",
		mcp.WithDescription(
			"List primary key columns declared across all tables.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keys, err := deps.Catalog.FindPrimaryKeys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to find primary keys: %w", err)
		}
		return newJSONResult(map[string]any{
			"primary_keys": keys,
			"count":        len(keys),
		})
	})
}

func registerSchemaStatsTool(s *server.MCPServer, deps *SchemaToolDeps) {
	tool := mcp.NewTool(
		"lakehouse_get_schema_stats",
		mcp.WithDescription(
			"Summarize each schema: table count, column count, and how many columns "+
				"look like link columns (Id/Key/Code/Ref suffixes).",
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := deps.Catalog.SchemaStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to compute schema stats: %w", err)
		}
		return newJSONResult(map[string]any{
			"schemas": stats,
			"count":   len(stats),
		})
	})
}
