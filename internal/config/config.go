// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL       string `mapstructure:"REDIS_URL"`

	// Durable post collection location. The posts file lives at <DataDir>/posts.json.
	DataDir string `mapstructure:"DATA_DIR"`

	// Shared-secret bearer token guarding the admin endpoints.
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	FeedPageSize int `mapstructure:"FEED_PAGE_SIZE"`

	// Ingestion source endpoints. Each adapter owns its endpoint so tests can
	// point them at local fixtures.
	DevtoBaseURL     string `mapstructure:"DEVTO_BASE_URL"`
	HashnodeURL      string `mapstructure:"HASHNODE_URL"`
	WikinewsAPIURL   string `mapstructure:"WIKINEWS_API_URL"`
	WikinewsBaseURL  string `mapstructure:"WIKINEWS_BASE_URL"`
	GuardianBaseURL  string `mapstructure:"GUARDIAN_BASE_URL"`
	SourceTimeoutSec int    `mapstructure:"SOURCE_TIMEOUT_SECONDS"`

	// Per-source ingestion toggles, e.g. "devto=on,guardian=off".
	SourceFlags string `mapstructure:"SOURCE_FLAGS"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampler  float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// SourceTimeout returns the per-request budget for external content fetches.
func (c *Config) SourceTimeout() time.Duration {
	if c.SourceTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SourceTimeoutSec) * time.Second
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8480")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("DATA_DIR", ".inkboard-cache")
	viper.SetDefault("ADMIN_TOKEN", "admin-secret-key")
	viper.SetDefault("FEED_PAGE_SIZE", 30)
	viper.SetDefault("DEVTO_BASE_URL", "https://dev.to")
	viper.SetDefault("HASHNODE_URL", "https://gql.hashnode.com")
	viper.SetDefault("WIKINEWS_API_URL", "https://en.wikinews.org/w/api.php")
	viper.SetDefault("WIKINEWS_BASE_URL", "https://en.wikinews.org")
	viper.SetDefault("GUARDIAN_BASE_URL", "https://content.guardianapis.com")
	viper.SetDefault("SOURCE_FLAGS", "devto=on,hashnode=on,wikinews=on,guardian=off")
	viper.SetDefault("SOURCE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.AdminToken == "" {
		return errors.New("ADMIN_TOKEN is required")
	}
	if c.Env == "production" && c.AdminToken == "admin-secret-key" {
		return errors.New("ADMIN_TOKEN must be changed from the default in production")
	}
	if c.FeedPageSize <= 0 {
		return errors.New("FEED_PAGE_SIZE must be positive")
	}
	return nil
}
