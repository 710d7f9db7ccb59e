package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "https://api.airtable.com/v0", cfg.Airtable.BaseURL)
	assert.Equal(t, "influencerTable", cfg.Airtable.Tables.Influencers)
	assert.Equal(t, "postTable", cfg.Airtable.Tables.Posts)
	assert.Equal(t, "contentErrorLogTable", cfg.Airtable.Tables.Errors)
	assert.Equal(t, "campaignTable", cfg.Airtable.Tables.Campaigns)
	assert.Equal(t, "30s", cfg.Audit.Timeout)
	assert.Equal(t, "10s", cfg.Audit.Cooldown)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadDuration(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	cfg.Audit.Cooldown = "ten seconds"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit.cooldown")
}

func TestValidateRequiresTOTPSecret(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	cfg.Auth.Enabled = true

	assert.Error(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	content := `
server:
  port: 8080
airtable:
  api_key: key123
  base_id: app123
audit:
  webhook_url: https://example.com/hook
  cooldown: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "key123", cfg.Airtable.APIKey)
	assert.Equal(t, "app123", cfg.Airtable.BaseID)
	assert.Equal(t, time.Second, Duration(cfg.Audit.Cooldown, 0))
	assert.Equal(t, "postTable", cfg.Airtable.Tables.Posts)
}

func TestDurationFallback(t *testing.T) {
	assert.Equal(t, 3*time.Second, Duration("bogus", 3*time.Second))
}
