// Package config loads the assistant configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"maitred/internal/intent"
	"maitred/internal/normalize"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Data       DataConfig        `yaml:"data"`
	Orders     OrdersConfig      `yaml:"orders"`
	Database   DatabaseConfig    `yaml:"database"`
	LLM        LLMConfig         `yaml:"llm"`
	Auth       AuthConfig        `yaml:"auth"`
	Sessions   SessionConfig     `yaml:"sessions"`
	Normalizer NormalizerConfig  `yaml:"normalizer"`
	Intents    intent.Vocabulary `yaml:"intents"`
	Moderation ModerationConfig  `yaml:"moderation"`
	Log        LogConfig         `yaml:"log"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port            int      `yaml:"port"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// DataConfig locates the reference data files
type DataConfig struct {
	MenuPath   string `yaml:"menu_path"`
	CitiesPath string `yaml:"cities_path"`
}

// OrdersConfig locates the append-only order files. An empty path disables that file.
type OrdersConfig struct {
	CSVPath   string `yaml:"csv_path"`
	JSONLPath string `yaml:"jsonl_path"`
}

// DatabaseConfig configures the optional SQL order store
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3, postgres
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

// LLMConfig configures the language model used for relevance checks and fallback answers
type LLMConfig struct {
	Provider     string `yaml:"provider"` // openai, anthropic, ollama, azure; empty disables
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	APIVersion   string `yaml:"api_version"` // azure only
	Timeout      string `yaml:"timeout"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Enabled reports whether a provider is configured
func (l LLMConfig) Enabled() bool {
	return l.Provider != "" && l.Provider != "none"
}

// AuthConfig configures bearer-token authentication of the API
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Enabled reports whether API requests must carry a token
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// SessionConfig configures idle session expiry
type SessionConfig struct {
	IdleTimeout   string `yaml:"idle_timeout"`
	SweepInterval string `yaml:"sweep_interval"`
}

// NormalizerConfig holds the item name replacement rules
type NormalizerConfig struct {
	Rules []normalize.Rule `yaml:"rules"`
}

// ModerationConfig configures the content filter
type ModerationConfig struct {
	Enabled bool     `yaml:"enabled"`
	Terms   []string `yaml:"terms"`
}

// LogConfig configures zap
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ValidProviders lists the supported LLM providers
var ValidProviders = []string{"openai", "anthropic", "ollama", "azure"}

// Default returns a configuration that runs without a language model or database
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: "10s",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Data: DataConfig{
			MenuPath:   "data/menu.csv",
			CitiesPath: "data/cities.csv",
		},
		Orders: OrdersConfig{
			CSVPath:   "data/orders.csv",
			JSONLPath: "data/orders.jsonl",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
		},
		LLM: LLMConfig{
			Timeout: "30s",
		},
		Sessions: SessionConfig{
			IdleTimeout:   "30m",
			SweepInterval: "1m",
		},
		Normalizer: NormalizerConfig{
			Rules: append([]normalize.Rule(nil), normalize.DefaultRules...),
		},
		Intents: intent.DefaultVocabulary(),
		Moderation: ModerationConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env, merges the YAML file at path over the defaults, applies
// environment overrides and validates the result. A missing file leaves the
// defaults in place.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies secrets and deployment settings from the environment
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("MAITRED_LLM_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && (c.LLM.Provider == "" || c.LLM.Provider == "openai") {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && (c.LLM.Provider == "" || c.LLM.Provider == "anthropic") {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if url := os.Getenv("OLLAMA_HOST"); url != "" && c.LLM.Provider == "ollama" {
		c.LLM.BaseURL = url
	}
	if c.LLM.Provider == "azure" {
		if key := os.Getenv("AZURE_OPENAI_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
		if endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT"); endpoint != "" {
			c.LLM.BaseURL = endpoint
		}
		if deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); deployment != "" {
			c.LLM.Model = deployment
		}
	}

	if secret := os.Getenv("MAITRED_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}

	if dsn := os.Getenv("MAITRED_DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			c.Database.Driver = "postgres"
		}
	}

	if level := os.Getenv("MAITRED_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics port %d collides with server port", c.Metrics.Port)
		}
	}

	if c.LLM.Enabled() {
		if !contains(ValidProviders, c.LLM.Provider) {
			return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
		}
		if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
			return fmt.Errorf("LLM provider %s requires an API key", c.LLM.Provider)
		}
		if c.LLM.Provider == "azure" && (c.LLM.BaseURL == "" || c.LLM.Model == "") {
			return errors.New("azure provider requires base_url (endpoint) and model (deployment name)")
		}
	}

	if c.Database.Enabled() && c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	for name, value := range map[string]string{
		"llm.timeout":             c.LLM.Timeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"sessions.idle_timeout":   c.Sessions.IdleTimeout,
		"sessions.sweep_interval": c.Sessions.SweepInterval,
	} {
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid duration for %s: %q", name, value)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// GetLLMTimeout returns the per-call language model timeout
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 30*time.Second)
}

// GetShutdownTimeout returns how long graceful shutdown may take
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionIdleTimeout returns how long an untouched session lives
func (c *Config) GetSessionIdleTimeout() time.Duration {
	return parseDuration(c.Sessions.IdleTimeout, 30*time.Minute)
}

// GetSessionSweepInterval returns how often idle sessions are expired
func (c *Config) GetSessionSweepInterval() time.Duration {
	return parseDuration(c.Sessions.SweepInterval, time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
