package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/melisaluis/fabric-mcp/pkg/mcp"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mcpServer := mcp.NewServer("fabric-mcp-test", "0.0.1", zap.NewNop())
	handler := NewMCPHandler(mcpServer, zap.NewNop())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func TestMCPEndpointRejectsNonPOST(t *testing.T) {
	mux := newTestMux(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/mcp", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "POST", rec.Header().Get("Allow"))
	}
}

func TestMCPEndpointHandlesInitialize(t *testing.T) {
	mux := newTestMux(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fabric-mcp-test")
}
