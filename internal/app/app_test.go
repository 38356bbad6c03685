package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivanoskov/finance_intake_bot/internal/config"
	"github.com/ivanoskov/finance_intake_bot/internal/conversation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverMemory
	cfg.Interpreter.Provider = config.ProviderOllama
	cfg.Interpreter.OllamaURL = "http://127.0.0.1:1"
	cfg.Interpreter.Model = "llama3"
	cfg.Interpreter.Timeout = time.Second
	return cfg
}

func TestBuild_Memory(t *testing.T) {
	c, err := Build(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Tracker.EnsureCategory(ctx, "Lazer")
	require.NoError(t, err)

	found, err := c.Categories.Exact(ctx, "lazer")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, conversation.StateAwaitingMessage, c.Engine.State(1))
}

func TestBuild_AmbiguousTermsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pet: [Pets, Casa]\n"), 0o600))

	cfg := memoryConfig()
	cfg.Engine.AmbiguousTermsFile = path
	_, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	cfg.Engine.AmbiguousTermsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Build(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestBuild_UnknownBackends(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := Build(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown storage driver "sqlite"`)

	cfg = memoryConfig()
	cfg.Interpreter.Provider = "claude"
	_, err = Build(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown interpreter provider "claude"`)
}
