package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.True(t, cfg.Server.ReadOnly)
	assert.Equal(t, "default", cfg.Drive.DefaultAccount)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
google:
  client_id: abc.apps.googleusercontent.com
drive:
  default_account: work
  store_dir: /var/lib/gdrive
server:
  transport: streamable-http
  http_addr: 127.0.0.1:8181
  read_only: false
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc.apps.googleusercontent.com", cfg.Google.ClientID)
	assert.Equal(t, defaultRedirectURL, cfg.Google.RedirectURL)
	assert.Equal(t, "work", cfg.Drive.DefaultAccount)
	assert.Equal(t, "/var/lib/gdrive", cfg.Drive.StoreDir)
	assert.Equal(t, TransportStreamableHTTP, cfg.Server.Transport)
	assert.Equal(t, "127.0.0.1:8181", cfg.Server.HTTPAddr)
	assert.False(t, cfg.Server.ReadOnly)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Google.ClientSecret = "s3cret"
	cfg.Drive.DefaultAccount = "personal"
	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "env-client")
	t.Setenv("GDRIVE_ACCOUNT", "team")
	t.Setenv("MCP_TRANSPORT", TransportStreamableHTTP)
	t.Setenv("MCP_READ_ONLY", "false")
	t.Setenv("METRICS_ENABLED", "not-a-bool")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "env-client", cfg.Google.ClientID)
	assert.Equal(t, "team", cfg.Drive.DefaultAccount)
	assert.Equal(t, TransportStreamableHTTP, cfg.Server.Transport)
	assert.False(t, cfg.Server.ReadOnly)
	assert.True(t, cfg.Metrics.Enabled, "unparsable booleans keep the current value")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Server.Transport = "grpc" },
			wantErr: "server.transport: must be one of: stdio, streamable-http",
		},
		{
			name: "http transport needs an address",
			mutate: func(c *Config) {
				c.Server.Transport = TransportStreamableHTTP
				c.Server.HTTPAddr = ""
			},
			wantErr: "server.http_addr: required",
		},
		{
			name:    "malformed http address",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "localhost" },
			wantErr: "server.http_addr: must be a host:port address",
		},
		{
			name:    "account with an email address",
			mutate:  func(c *Config) { c.Drive.DefaultAccount = "jane@example.com" },
			wantErr: "drive.default_account: may only contain",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Drive.BaseURL = "drive/v3" },
			wantErr: "drive.base_url: must be a valid URL",
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format: must be one of: text, json",
		},
		{
			name: "metrics disabled without address",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.Addr = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllFields(t *testing.T) {
	cfg := Default()
	cfg.Drive.StoreDir = ""
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drive.store_dir: required")
	assert.Contains(t, err.Error(), "logging.level: must be one of")
}
