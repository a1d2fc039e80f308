package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/semanticmodel"
)

// SemanticModelToolDeps contains dependencies for Power BI semantic model tools.
type SemanticModelToolDeps struct {
	Client *semanticmodel.Client
	// DatasetID is the configured dataset. When empty, tools resolve the
	// dataset by matching LakehouseName against the workspace's datasets.
	DatasetID     string
	LakehouseName string
	Logger        *zap.Logger
}

// RegisterSemanticModelTools registers the Power BI semantic model tools.
func RegisterSemanticModelTools(s *server.MCPServer, deps *SemanticModelToolDeps) {
	registerSemanticModelRelationshipsTool(s, deps)
	registerSemanticModelDetailsTool(s, deps)
	registerSemanticModelTestConnectionTool(s, deps)
}

// notConfiguredResult is returned by every semantic model tool when no
// Power BI workspace has been configured.
func (d *SemanticModelToolDeps) notConfiguredResult() *mcp.CallToolResult {
	if d.Client != nil {
		return nil
	}
	return NewErrorResult("not_configured",
		"semantic model access is not configured; set POWERBI_WORKSPACE_ID")
}

// resolveDatasetID returns the configured dataset ID, falling back to a
// workspace lookup by lakehouse name.
func (d *SemanticModelToolDeps) resolveDatasetID(ctx context.Context) (string, error) {
	if d.DatasetID != "" {
		return d.DatasetID, nil
	}
	return d.Client.FindDatasetForLakehouse(ctx, d.LakehouseName)
}

func registerSemanticModelRelationshipsTool(s *server.MCPServer, deps *SemanticModelToolDeps) {
	tool := mcp.NewTool(
		"semantic_model_relationships",
		mcp.WithDescription(
			"List the relationships defined in the lakehouse's Power BI semantic model. "+
				"Semantic model relationships are the authoritative join paths even when "+
				"the SQL endpoint declares no foreign keys.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if result := deps.notConfiguredResult(); result != nil {
			return result, nil
		}

		datasetID, err := deps.resolveDatasetID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dataset: %w", err)
		}
		if datasetID == "" {
			return NewErrorResult("dataset_not_found",
				fmt.Sprintf("no semantic model found for lakehouse '%s'", deps.LakehouseName)), nil
		}

		relationships, err := deps.Client.ListRelationships(ctx, datasetID)
		if err != nil {
			return nil, fmt.Errorf("failed to list semantic model relationships: %w", err)
		}

		return newJSONResult(map[string]any{
			"dataset_id":    datasetID,
			"relationships": relationships,
			"count":         len(relationships),
		})
	})
}

func registerSemanticModelDetailsTool(s *server.MCPServer, deps *SemanticModelToolDeps) {
	tool := mcp.NewTool(
		"semantic_model_details",
		mcp.WithDescription(
			"Return details about the semantic model backing this lakehouse: whether one "+
				"was found, its dataset ID, and its relationship inventory.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if result := deps.notConfiguredResult(); result != nil {
			return result, nil
		}

		info, err := deps.Client.ModelInfo(ctx, deps.LakehouseName)
		if err != nil {
			return nil, fmt.Errorf("failed to get semantic model details: %w", err)
		}
		return newJSONResult(info)
	})
}

func registerSemanticModelTestConnectionTool(s *server.MCPServer, deps *SemanticModelToolDeps) {
	tool := mcp.NewTool(
		"semantic_model_test_connection",
		mcp.WithDescription(
			"Verify that the Power BI REST API is reachable and the credential can list "+
				"datasets in the configured workspace.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if result := deps.notConfiguredResult(); result != nil {
			return result, nil
		}

		if err := deps.Client.TestConnection(ctx); err != nil {
			deps.Logger.Debug("semantic model connection test failed", zap.Error(err))
			return NewErrorResult("connection_failed", err.Error()), nil
		}
		return newJSONResult(map[string]any{
			"status":  "ok",
			"message": "Power BI API reachable",
		})
	})
}
