package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv("FINBOT_"+envName(key), "")
		os.Unsetenv("FINBOT_" + envName(key))
	}
	for _, legacy := range legacyEnv {
		t.Setenv(legacy, "")
		os.Unsetenv(legacy)
	}
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Telegram.PollTimeout)
	assert.Equal(t, ":8080", cfg.Telegram.ListenAddr)
	assert.Equal(t, DriverSupabase, cfg.Storage.Driver)
	assert.Equal(t, ProviderGemini, cfg.Interpreter.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Interpreter.Model)
	assert.Equal(t, 30*time.Second, cfg.Interpreter.Timeout)
	assert.Equal(t, "NaoInformado", cfg.Engine.UnspecifiedPaymentMethod)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("FINBOT_SUPABASE_KEY", "secret")
	t.Setenv("FINBOT_INTERPRETER_PROVIDER", "ollama")
	t.Setenv("FINBOT_INTERPRETER_TIMEOUT", "5s")
	t.Setenv("FINBOT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", cfg.Telegram.Token)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "secret", cfg.Supabase.Key)
	assert.Equal(t, ProviderOllama, cfg.Interpreter.Provider)
	assert.Equal(t, "llama3", cfg.Interpreter.Model)
	assert.Equal(t, 5*time.Second, cfg.Interpreter.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedWinsOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINBOT_TELEGRAM_TOKEN", "new")
	t.Setenv("TELEGRAM_BOT_TOKEN", "old")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Telegram.Token)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: from-file
storage:
  driver: memory
interpreter:
  api_key: key
  model: gemini-2.0-flash
engine:
  ambiguous_terms_file: terms.yaml
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "gemini-2.0-flash", cfg.Interpreter.Model)
	assert.Equal(t, "terms.yaml", cfg.Engine.AmbiguousTermsFile)
	assert.NoError(t, cfg.Validate())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.Telegram.Token = "t"
		c.Storage.Driver = DriverMemory
		c.Interpreter.Provider = ProviderGemini
		c.Interpreter.APIKey = "k"
		c.Interpreter.Timeout = time.Second
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no token", func(c *Config) { c.Telegram.Token = "" }, "telegram.token"},
		{"supabase without url", func(c *Config) { c.Storage.Driver = DriverSupabase }, "supabase.url"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"gemini without key", func(c *Config) { c.Interpreter.APIKey = "" }, "interpreter.api_key"},
		{"unknown provider", func(c *Config) { c.Interpreter.Provider = "gpt" }, "interpreter.provider"},
		{"zero timeout", func(c *Config) { c.Interpreter.Timeout = 0 }, "interpreter.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
