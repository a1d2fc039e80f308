// Package semanticmodel queries the Power BI semantic model that Fabric
// provisions alongside a lakehouse. Relationship metadata lives there,
// not in the SQL analytics endpoint.
package semanticmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"go.uber.org/zap"
)

const (
	// tokenScope is the Power BI REST API scope.
	tokenScope = "https://analysis.windows.net/powerbi/api/.default"

	// defaultBaseURL is the Power BI REST API root.
	defaultBaseURL = "https://api.powerbi.com/v1.0/myorg"
)

// Dataset is one Power BI dataset (semantic model) in a workspace.
type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Relationship is one relationship defined in a semantic model.
type Relationship struct {
	Name           string `json:"name"`
	FromTable      string `json:"from_table"`
	FromColumn     string `json:"from_column"`
	ToTable        string `json:"to_table"`
	ToColumn       string `json:"to_column"`
	CrossFiltering string `json:"cross_filtering"`
	IsActive       bool   `json:"is_active"`
}

// ModelInfo summarizes the semantic model found for a lakehouse.
type ModelInfo struct {
	Found             bool           `json:"found"`
	Message           string         `json:"message,omitempty"`
	WorkspaceID       string         `json:"workspace_id,omitempty"`
	DatasetID         string         `json:"dataset_id,omitempty"`
	LakehouseName     string         `json:"lakehouse_name,omitempty"`
	RelationshipCount int            `json:"relationship_count"`
	Relationships     []Relationship `json:"relationships,omitempty"`
}

// Client talks to the Power BI REST API for one workspace.
type Client struct {
	cred        azcore.TokenCredential
	httpClient  *http.Client
	baseURL     string
	workspaceID string
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Power BI API root. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client for the given workspace. The credential is
// typically a DefaultAzureCredential; tokens are requested per call and
// cached by the credential itself.
func NewClient(cred azcore.TokenCredential, workspaceID string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		cred:        cred,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultBaseURL,
		workspaceID: workspaceID,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) token(ctx context.Context) (string, error) {
	tok, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{tokenScope},
	})
	if err != nil {
		return "", fmt.Errorf("get power bi token: %w", err)
	}
	return tok.Token, nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, body any) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("power bi request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := string(respBody)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return nil, fmt.Errorf("power bi API returned %d: %s", resp.StatusCode, detail)
	}

	return respBody, nil
}

// ListDatasets returns every dataset in the workspace.
func (c *Client) ListDatasets(ctx context.Context) ([]Dataset, error) {
	url := fmt.Sprintf("%s/groups/%s/datasets", c.baseURL, c.workspaceID)

	body, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Value []Dataset `json:"value"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode datasets: %w", err)
	}

	return response.Value, nil
}

// FindDatasetForLakehouse locates the dataset backing a lakehouse.
// Lakehouses create a default semantic model with the same name, so the
// match is a case-insensitive contains. Returns "" when nothing matches.
func (c *Client) FindDatasetForLakehouse(ctx context.Context, lakehouseName string) (string, error) {
	datasets, err := c.ListDatasets(ctx)
	if err != nil {
		return "", err
	}

	needle := strings.ToLower(lakehouseName)
	for _, ds := range datasets {
		if strings.Contains(strings.ToLower(ds.Name), needle) {
			return ds.ID, nil
		}
	}

	return "", nil
}

// ExecuteQuery runs a DAX or DMV query against a dataset via the
// executeQueries endpoint and returns the rows of the first table.
func (c *Client) ExecuteQuery(ctx context.Context, datasetID, query string) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/groups/%s/datasets/%s/executeQueries", c.baseURL, c.workspaceID, datasetID)

	request := map[string]any{
		"queries": []map[string]string{
			{"query": query},
		},
		"serializerSettings": map[string]bool{
			"includeNulls": true,
		},
	}

	body, err := c.doRequest(ctx, http.MethodPost, url, request)
	if err != nil {
		return nil, err
	}

	var response struct {
		Results []struct {
			Tables []struct {
				Rows []map[string]any `json:"rows"`
			} `json:"tables"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode query result: %w", err)
	}

	if len(response.Results) == 0 || len(response.Results[0].Tables) == 0 {
		return nil, nil
	}

	return response.Results[0].Tables[0].Rows, nil
}

// TestConnection verifies the workspace is reachable with the current
// credential by listing its datasets.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.ListDatasets(ctx); err != nil {
		return fmt.Errorf("semantic model connection test failed: %w", err)
	}
	return nil
}

// ModelInfo finds the semantic model for a lakehouse and returns its
// relationship metadata.
func (c *Client) ModelInfo(ctx context.Context, lakehouseName string) (*ModelInfo, error) {
	datasetID, err := c.FindDatasetForLakehouse(ctx, lakehouseName)
	if err != nil {
		return nil, err
	}
	if datasetID == "" {
		return &ModelInfo{
			Found:   false,
			Message: fmt.Sprintf("No semantic model found for lakehouse %q", lakehouseName),
		}, nil
	}

	relationships, err := c.ListRelationships(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	return &ModelInfo{
		Found:             true,
		WorkspaceID:       c.workspaceID,
		DatasetID:         datasetID,
		LakehouseName:     lakehouseName,
		RelationshipCount: len(relationships),
		Relationships:     relationships,
	}, nil
}
