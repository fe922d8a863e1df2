package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for sda-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, model API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Anthropic model configuration
	Anthropic AnthropicConfig `yaml:"anthropic"`

	// Assistant behaviour configuration
	Assistant AssistantConfig `yaml:"assistant"`

	// Document blob store configuration
	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig points at the blob store that holds compliance documents.
type StorageConfig struct {
	BaseURL string `yaml:"base_url" env:"STORAGE_BASE_URL" env-default:"http://localhost:9000/sda-documents"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"sda"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"sda_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// AnthropicConfig holds the model endpoint settings.
// The API key is a secret and must come from the environment.
type AnthropicConfig struct {
	APIKey    string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-20250514"`
	MaxTokens int    `yaml:"max_tokens" env:"ANTHROPIC_MAX_TOKENS" env-default:"4096"`
}

// AssistantConfig holds tunables for the chat assistant.
type AssistantConfig struct {
	// ConfidenceThreshold is the minimum classifier confidence before an
	// intent is downgraded to unknown.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"ASSISTANT_CONFIDENCE_THRESHOLD" env-default:"0.5"`

	// PendingActionTTLMinutes is how long an unconfirmed action stays valid.
	// Confirmations after this window fail as stale.
	PendingActionTTLMinutes int `yaml:"pending_action_ttl_minutes" env:"ASSISTANT_PENDING_ACTION_TTL_MINUTES" env-default:"10"`

	// HistoryLimit is how many prior turns are replayed to the classifier.
	HistoryLimit int `yaml:"history_limit" env:"ASSISTANT_HISTORY_LIMIT" env-default:"20"`
}

// PendingActionTTL returns the pending-action lifetime as a duration.
func (c *AssistantConfig) PendingActionTTL() time.Duration {
	return time.Duration(c.PendingActionTTLMinutes) * time.Minute
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Assistant.ConfidenceThreshold < 0 || c.Assistant.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1], got %v", c.Assistant.ConfidenceThreshold)
	}
	if c.Assistant.PendingActionTTLMinutes <= 0 {
		return fmt.Errorf("pending_action_ttl_minutes must be positive, got %d", c.Assistant.PendingActionTTLMinutes)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
