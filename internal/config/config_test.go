package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"maitred/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"MAITRED_LLM_PROVIDER", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_HOST",
		"MAITRED_JWT_SECRET", "MAITRED_DATABASE_URL", "MAITRED_LOG_LEVEL",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT_NAME",
	} {
		t.Setenv(key, "")
	}
	// Load looks for .env in the working directory
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Auth.Enabled())
	assert.Equal(t, normalize.DefaultRules, cfg.Normalizer.Rules)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8181
llm:
  provider: ollama
  model: llama3
  timeout: 5s
normalizer:
  rules:
    - from: refresco
      to: soda
intents:
  menu: [platos]
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, []normalize.Rule{{From: "refresco", To: "soda"}}, cfg.Normalizer.Rules)
	assert.Equal(t, []string{"platos"}, cfg.Intents.Menu)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAITRED_JWT_SECRET", "secret")
	t.Setenv("MAITRED_DATABASE_URL", "postgres://maitred@localhost/maitred?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.Auth.Enabled())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoad_AzureEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAITRED_LLM_PROVIDER", "azure")
	t.Setenv("AZURE_OPENAI_API_KEY", "az-key")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "menu-bot")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "azure", cfg.LLM.Provider)
	assert.Equal(t, "az-key", cfg.LLM.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.LLM.BaseURL)
	assert.Equal(t, "menu-bot", cfg.LLM.Model)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to ""
	require.NoError(t, os.Unsetenv("MAITRED_JWT_SECRET"))
	require.NoError(t, os.WriteFile(".env", []byte("MAITRED_JWT_SECRET=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MAITRED_JWT_SECRET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"metrics port collision", func(c *Config) { c.Metrics.Port = c.Server.Port }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "cohere" }},
		{"missing api key", func(c *Config) { c.LLM.Provider = "anthropic" }},
		{"azure without endpoint", func(c *Config) { c.LLM.Provider = "azure"; c.LLM.APIKey = "k"; c.LLM.Model = "d" }},
		{"bad driver", func(c *Config) { c.Database.DSN = "x"; c.Database.Driver = "mysql" }},
		{"bad duration", func(c *Config) { c.Sessions.IdleTimeout = "soon" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_OllamaNeedsNoKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "ollama"
	assert.NoError(t, cfg.Validate())
}
