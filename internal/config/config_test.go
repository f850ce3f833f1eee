package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "nasdaq", cfg.Provider.Name)
	assert.Equal(t, 20*time.Second, cfg.Provider.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "light", cfg.Chart.Theme)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
provider:
  name: tiingo
  tiingo_token: from-file
  timeout: 5s
cache:
  enabled: false
chart:
  theme: dark
`)
	t.Setenv("TIINGO_API_TOKEN", "from-env")
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "tiingo", cfg.Provider.Name)
	assert.Equal(t, "from-env", cfg.Provider.TiingoToken)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "dark", cfg.Chart.Theme)
	assert.Equal(t, 400, cfg.Provider.RowLimit, "untouched keys keep defaults")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [1, 2"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider.Name = "yahoo" }},
		{"tiingo without token", func(c *Config) { c.Provider.Name = "tiingo" }},
		{"bad theme", func(c *Config) { c.Chart.Theme = "sepia" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero timeout", func(c *Config) { c.Provider.Timeout = 0 }},
		{"bad verify url", func(c *Config) { c.Auth.VerifyURL = "not a url" }},
		{"refresh without cache", func(c *Config) { c.Cache.Enabled = false; c.Cache.RefreshCron = "0 0 22 * * 1-5" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAuthEnabled(t *testing.T) {
	cfg := Default()
	cfg.Auth.VerifyURL = "https://id.example.com/verify"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AuthEnabled())
}
