// Package lakehouse provides connectivity and catalog access for a
// Microsoft Fabric lakehouse SQL analytics endpoint.
package lakehouse

import (
	"fmt"
)

// Config contains lakehouse SQL endpoint connection options.
type Config struct {
	Server   string
	Port     int
	Database string

	// AuthMethod determines which authentication to use
	// Options: "sql", "service_principal", "default_azure"
	AuthMethod string

	// SQL Authentication fields
	Username string
	Password string

	// Service Principal (Azure AD) fields
	TenantID     string
	ClientID     string
	ClientSecret string

	// Connection options
	Encrypt           bool
	ConnectionTimeout int

	// QueryTimeout bounds every statement sent over this connection,
	// in seconds. Zero or negative disables the bound.
	QueryTimeout int
}

// DefaultPort returns the default SQL endpoint port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// DefaultQueryTimeout returns the default per-query timeout in seconds.
func DefaultQueryTimeout() int {
	return 60
}

// applyDefaults fills zero-valued connection options before validation.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort()
	}
	if c.ConnectionTimeout == 0 {
		c.ConnectionTimeout = DefaultConnectionTimeout()
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = DefaultQueryTimeout()
	}
}

// Validate checks if the config has all required fields for the selected auth method.
func (c *Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.AuthMethod {
	case "sql":
		if c.Username == "" {
			return fmt.Errorf("username is required for SQL authentication")
		}
	case "service_principal":
		if c.TenantID == "" {
			return fmt.Errorf("tenant_id is required for service principal")
		}
		if c.ClientID == "" {
			return fmt.Errorf("client_id is required for service principal")
		}
		if c.ClientSecret == "" {
			return fmt.Errorf("client_secret is required for service principal")
		}
	case "default_azure":
		// The DefaultAzureCredential chain resolves at connect time.
	default:
		return fmt.Errorf("invalid auth method: %s (must be sql, service_principal, or default_azure)", c.AuthMethod)
	}

	return nil
}
