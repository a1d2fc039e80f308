package lakehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:     "myworkspace.datawarehouse.fabric.microsoft.com",
		Port:       1433,
		Database:   "Starbase",
		AuthMethod: "default_azure",
		Encrypt:    true,
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.Equal(t, DefaultPort(), cfg.Port)
	assert.Equal(t, DefaultConnectionTimeout(), cfg.ConnectionTimeout)
	assert.Equal(t, DefaultQueryTimeout(), cfg.QueryTimeout)

	cfg = &Config{Port: 14330, ConnectionTimeout: 5, QueryTimeout: 10}
	cfg.applyDefaults()
	assert.Equal(t, 14330, cfg.Port)
	assert.Equal(t, 5, cfg.ConnectionTimeout)
	assert.Equal(t, 10, cfg.QueryTimeout)
}

func TestConfigValidate(t *testing.T) {
	t.Run("default azure needs no credentials", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing server", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = 70000
		require.Error(t, cfg.Validate())
	})

	t.Run("sql auth requires username", func(t *testing.T) {
		cfg := validConfig()
		cfg.AuthMethod = "sql"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username is required")
	})

	t.Run("service principal requires all fields", func(t *testing.T) {
		cfg := validConfig()
		cfg.AuthMethod = "service_principal"
		cfg.TenantID = "tenant"
		cfg.ClientID = "client"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client_secret is required")
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.AuthMethod = "ntlm"
		require.Error(t, cfg.Validate())
	})
}
