package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for fabric-mcp.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, client secrets) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Lakehouse SQL endpoint configuration
	Lakehouse LakehouseConfig `yaml:"lakehouse"`

	// Power BI semantic model configuration (optional)
	SemanticModel SemanticModelConfig `yaml:"semantic_model"`

	// Query history capture configuration
	History HistoryConfig `yaml:"history"`
}

// LakehouseConfig holds the Fabric lakehouse SQL endpoint settings.
type LakehouseConfig struct {
	// Server is the SQL analytics endpoint host, e.g.
	// "myworkspace.datawarehouse.fabric.microsoft.com".
	Server   string `yaml:"server" env:"LAKEHOUSE_SERVER"`
	Port     int    `yaml:"port" env:"LAKEHOUSE_PORT" env-default:"1433"`
	Database string `yaml:"database" env:"LAKEHOUSE_DATABASE"`

	// AuthMethod selects how to authenticate: "sql" (username/password),
	// "service_principal" (client id + secret), or "default_azure"
	// (DefaultAzureCredential chain: CLI, managed identity, env).
	AuthMethod string `yaml:"auth_method" env:"LAKEHOUSE_AUTH_METHOD" env-default:"default_azure"`

	Username string `yaml:"username" env:"LAKEHOUSE_USERNAME" env-default:""`
	Password string `yaml:"-" env:"LAKEHOUSE_PASSWORD"` // Secret - not in YAML

	TenantID     string `yaml:"tenant_id" env:"AZURE_TENANT_ID" env-default:""`
	ClientID     string `yaml:"client_id" env:"AZURE_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"AZURE_CLIENT_SECRET"` // Secret - not in YAML

	// ConnectionTimeoutSeconds bounds the initial connection handshake.
	ConnectionTimeoutSeconds int `yaml:"connection_timeout_seconds" env:"LAKEHOUSE_CONNECTION_TIMEOUT_SECONDS" env-default:"30"`

	// QueryTimeoutSeconds bounds every lakehouse query.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"LAKEHOUSE_QUERY_TIMEOUT_SECONDS" env-default:"60"`
}

// SemanticModelConfig holds Power BI dataset access settings.
// When WorkspaceID is empty the semantic model tools report that the
// feature is not configured instead of failing.
type SemanticModelConfig struct {
	WorkspaceID string `yaml:"workspace_id" env:"POWERBI_WORKSPACE_ID" env-default:""`
	DatasetID   string `yaml:"dataset_id" env:"POWERBI_DATASET_ID" env-default:""`
}

// HistoryConfig holds query history capture and read settings.
type HistoryConfig struct {
	// Enabled controls whether the background capture loop starts.
	Enabled bool `yaml:"enabled" env:"HISTORY_ENABLED" env-default:"false"`

	// LogPath is the JSONL file query snapshots are appended to.
	LogPath string `yaml:"log_path" env:"HISTORY_LOG_PATH" env-default:"query_history.jsonl"`

	// IntervalSeconds is how long to wait between capture ticks,
	// measured from the end of one tick to the start of the next.
	IntervalSeconds int `yaml:"interval_seconds" env:"HISTORY_INTERVAL_SECONDS" env-default:"300"`

	// TopQueries is how many queries to snapshot per tick.
	TopQueries int `yaml:"top_queries" env:"HISTORY_TOP_QUERIES" env-default:"100"`

	// DefaultHoursBack is the default read window for the history tools.
	DefaultHoursBack int `yaml:"default_hours_back" env:"HISTORY_DEFAULT_HOURS_BACK" env-default:"24"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFromFile("config.yaml", version)
}

// LoadFromFile is Load with an explicit config file path.
func LoadFromFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Lakehouse.Server == "" {
		return fmt.Errorf("lakehouse.server is required")
	}
	if c.Lakehouse.Database == "" {
		return fmt.Errorf("lakehouse.database is required")
	}

	switch c.Lakehouse.AuthMethod {
	case "sql":
		if c.Lakehouse.Username == "" || c.Lakehouse.Password == "" {
			return fmt.Errorf("auth_method %q requires LAKEHOUSE_USERNAME and LAKEHOUSE_PASSWORD", c.Lakehouse.AuthMethod)
		}
	case "service_principal":
		if c.Lakehouse.TenantID == "" || c.Lakehouse.ClientID == "" || c.Lakehouse.ClientSecret == "" {
			return fmt.Errorf("auth_method %q requires AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET", c.Lakehouse.AuthMethod)
		}
	case "default_azure":
		// Credential chain resolved at connect time.
	default:
		return fmt.Errorf("unknown lakehouse auth_method: %q", c.Lakehouse.AuthMethod)
	}

	if c.History.IntervalSeconds <= 0 {
		return fmt.Errorf("history.interval_seconds must be positive, got %d", c.History.IntervalSeconds)
	}
	if c.History.TopQueries <= 0 {
		return fmt.Errorf("history.top_queries must be positive, got %d", c.History.TopQueries)
	}

	return nil
}
