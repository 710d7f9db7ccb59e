package config

import (
	"fmt"
	"time"

	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/ifuryst/reelcheck/pkg/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logger   logger.Config  `yaml:"logger"`
	Airtable AirtableConfig `yaml:"airtable"`
	Review   ReviewConfig   `yaml:"review"`
	Audit    AuditConfig    `yaml:"audit"`
	Outreach OutreachConfig `yaml:"outreach"`
	Auth     AuthConfig     `yaml:"auth"`
	Probe    ProbeConfig    `yaml:"probe"`
	Slack    SlackConfig    `yaml:"slack"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	Host         string   `yaml:"host"`
	Mode         string   `yaml:"mode"`
	CertFile     string   `yaml:"cert_file"`
	KeyFile      string   `yaml:"key_file"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig backs the local outreach log and audit history.
// The campaign data itself always lives in Airtable.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type AirtableConfig struct {
	APIKey            string       `yaml:"api_key"`
	BaseID            string       `yaml:"base_id"`
	BaseURL           string       `yaml:"base_url"`
	Timeout           string       `yaml:"timeout"`
	RequestsPerSecond float64      `yaml:"requests_per_second"`
	Burst             int          `yaml:"burst"`
	Tables            TablesConfig `yaml:"tables"`
}

type TablesConfig struct {
	Influencers string `yaml:"influencers"`
	Posts       string `yaml:"posts"`
	Errors      string `yaml:"errors"`
	Campaigns   string `yaml:"campaigns"`
}

type ReviewConfig struct {
	// RequireAudited additionally gates the not-uploaded queue on Audited=YES.
	RequireAudited bool `yaml:"require_audited"`
}

type AuditConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Timeout    string `yaml:"timeout"`
	Cooldown   string `yaml:"cooldown"`
}

type OutreachConfig struct {
	DefaultRegion string `yaml:"default_region"`
}

type AuthConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TOTPSecret string `yaml:"totp_secret"`
	SessionTTL string `yaml:"session_ttl"`
}

type ProbeConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SetDefaults fills every zero value that has a sensible default.
func (cfg *Config) SetDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.Timeout == "" {
		cfg.Airtable.Timeout = "30s"
	}
	if cfg.Airtable.RequestsPerSecond == 0 {
		cfg.Airtable.RequestsPerSecond = 5
	}
	if cfg.Airtable.Burst == 0 {
		cfg.Airtable.Burst = 5
	}
	if cfg.Airtable.Tables.Influencers == "" {
		cfg.Airtable.Tables.Influencers = "influencerTable"
	}
	if cfg.Airtable.Tables.Posts == "" {
		cfg.Airtable.Tables.Posts = "postTable"
	}
	if cfg.Airtable.Tables.Errors == "" {
		cfg.Airtable.Tables.Errors = "contentErrorLogTable"
	}
	if cfg.Airtable.Tables.Campaigns == "" {
		cfg.Airtable.Tables.Campaigns = "campaignTable"
	}
	if cfg.Audit.Timeout == "" {
		cfg.Audit.Timeout = "30s"
	}
	if cfg.Audit.Cooldown == "" {
		cfg.Audit.Cooldown = "10s"
	}
	if cfg.Outreach.DefaultRegion == "" {
		cfg.Outreach.DefaultRegion = "US"
	}
	if cfg.Auth.SessionTTL == "" {
		cfg.Auth.SessionTTL = "12h"
	}
	if cfg.Probe.Interval == "" {
		cfg.Probe.Interval = "5m"
	}
}

// Validate checks the settings that would otherwise fail at first use.
func (cfg *Config) Validate() error {
	for name, value := range map[string]string{
		"airtable.timeout": cfg.Airtable.Timeout,
		"audit.timeout":    cfg.Audit.Timeout,
		"audit.cooldown":   cfg.Audit.Cooldown,
		"auth.session_ttl": cfg.Auth.SessionTTL,
		"probe.interval":   cfg.Probe.Interval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	if cfg.Auth.Enabled && cfg.Auth.TOTPSecret == "" {
		return fmt.Errorf("auth.totp_secret is required when auth is enabled")
	}
	return nil
}

// Duration parses a validated duration string, falling back on error.
func Duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
