package lakehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb"         // SQL Server driver
	_ "github.com/microsoft/go-mssqldb/azuread" // Azure AD support
)

// Conn is an open connection to a lakehouse SQL endpoint. It owns the
// underlying *sql.DB; callers share one Conn across the process instead
// of a package-level singleton.
type Conn struct {
	config *Config
	db     *sql.DB
}

// Connect opens a connection to the lakehouse SQL endpoint and verifies
// it with a ping. Supports three authentication methods:
//  1. SQL Authentication (username/password)
//  2. Service Principal (Azure AD with client credentials)
//  3. Default Azure (DefaultAzureCredential chain: env, managed identity, CLI)
func Connect(ctx context.Context, cfg *Config) (*Conn, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var db *sql.DB
	var err error

	switch cfg.AuthMethod {
	case "sql":
		db, err = openSQLAuthConnection(cfg)
	case "service_principal":
		db, err = openServicePrincipalConnection(cfg)
	case "default_azure":
		db, err = openDefaultAzureConnection(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
	if err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connection test failed: %w", err)
	}

	return &Conn{config: cfg, db: db}, nil
}

func baseQueryValues(cfg *Config) url.Values {
	query := url.Values{}
	query.Add("database", cfg.Database)

	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return query
}

// openSQLAuthConnection opens a connection using SQL Server authentication.
func openSQLAuthConnection(cfg *Config) (*sql.DB, error) {
	query := baseQueryValues(cfg)

	connStr := fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Server,
		cfg.Port,
		query.Encode(),
	)

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open SQL auth connection: %w", err)
	}

	return db, nil
}

// openServicePrincipalConnection opens a connection using Azure AD
// Service Principal credentials via the azuresql driver.
func openServicePrincipalConnection(cfg *Config) (*sql.DB, error) {
	query := baseQueryValues(cfg)
	query.Add("fedauth", "ActiveDirectoryServicePrincipal")
	query.Add("user id", cfg.ClientID)
	query.Add("password", cfg.ClientSecret)
	query.Add("tenant id", cfg.TenantID)

	connStr := fmt.Sprintf("sqlserver://%s:%d?%s",
		cfg.Server,
		cfg.Port,
		query.Encode(),
	)

	db, err := sql.Open("azuresql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open service principal connection: %w", err)
	}

	return db, nil
}

// openDefaultAzureConnection opens a connection using the
// DefaultAzureCredential chain. The azuread driver handles token
// acquisition and refresh.
func openDefaultAzureConnection(cfg *Config) (*sql.DB, error) {
	query := baseQueryValues(cfg)
	query.Add("fedauth", "ActiveDirectoryDefault")

	connStr := fmt.Sprintf("sqlserver://%s:%d?%s",
		cfg.Server,
		cfg.Port,
		query.Encode(),
	)

	db, err := sql.Open("azuresql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open default azure connection: %w", err)
	}

	return db, nil
}

// TestConnection verifies the lakehouse is reachable with valid credentials.
func (c *Conn) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	return nil
}

// WithQueryTimeout derives a context bounded by the configured query
// timeout. With no timeout configured the parent context is returned
// unchanged. The returned cancel func must always be called.
func (c *Conn) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(c.config.QueryTimeout)*time.Second)
}

// DB returns the underlying *sql.DB for use by the executor and catalog.
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Close releases the connection pool.
func (c *Conn) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
