package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/semanticmodel"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newSemanticModelTestServer(t *testing.T) *server.MCPServer {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/datasets"):
			json.NewEncoder(w).Encode(map[string]any{
				"value": []map[string]any{{"id": "ds-1", "name": "Sales Lakehouse Model"}},
			})
		case strings.HasSuffix(r.URL.Path, "/executeQueries"):
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{{
					"tables": []map[string]any{{
						"rows": []map[string]any{{
							"[Name]":       "Orders_Customers",
							"[FromTable]":  "Orders",
							"[FromColumn]": "CustomerId",
							"[ToTable]":    "Customers",
							"[ToColumn]":   "Id",
						}},
					}},
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(api.Close)

	client := semanticmodel.NewClient(fakeCredential{}, "ws-1", zap.NewNop(),
		semanticmodel.WithBaseURL(api.URL),
		semanticmodel.WithHTTPClient(api.Client()))

	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterSemanticModelTools(mcpServer, &SemanticModelToolDeps{
		Client:        client,
		LakehouseName: "Sales",
		Logger:        zap.NewNop(),
	})
	return mcpServer
}

func TestSemanticModelToolsNotConfigured(t *testing.T) {
	mcpServer := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterSemanticModelTools(mcpServer, &SemanticModelToolDeps{Logger: zap.NewNop()})

	for _, name := range []string{
		"semantic_model_relationships",
		"semantic_model_details",
		"semantic_model_test_connection",
	} {
		text, isError := callTool(t, mcpServer, name, nil)
		assert.True(t, isError, name)
		resp := decodeErrorResult(t, text)
		assert.Equal(t, "not_configured", resp.Code, name)
	}
}

func TestSemanticModelTestConnectionTool(t *testing.T) {
	text, isError := callTool(t, newSemanticModelTestServer(t), "semantic_model_test_connection", nil)
	require.False(t, isError)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, "ok", result["status"])
}

func TestSemanticModelRelationshipsTool(t *testing.T) {
	text, isError := callTool(t, newSemanticModelTestServer(t), "semantic_model_relationships", nil)
	require.False(t, isError)

	var result struct {
		DatasetID     string                       `json:"dataset_id"`
		Relationships []semanticmodel.Relationship `json:"relationships"`
		Count         int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, "ds-1", result.DatasetID)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Orders", result.Relationships[0].FromTable)
	assert.Equal(t, "Customers", result.Relationships[0].ToTable)
}
