package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-planner/internal/memory"
	"career-planner/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Model.APIKey = ""
	cfg.Model.APIKeyEnv = "CAREER_TEST_UNSET_KEY"
	cfg.Memory.Dir = t.TempDir()
	cfg.Search.Provider = "none"
	return cfg
}

func TestNewBootstrap_WithoutCredential(t *testing.T) {
	b, err := NewBootstrap(testConfig(t))
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.LLM)
	assert.False(t, b.Advisor.Configured())
	assert.NotNil(t, b.Memory)
	assert.Equal(t, 4, b.Scheduler.Weeks())
}

func TestNewBootstrap_WithCredential(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Provider = "claude"
	cfg.Model.APIKey = "sk-test"

	b, err := NewBootstrap(cfg)
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.LLM)
	assert.True(t, b.Advisor.Configured())
}

func TestNewBootstrap_InvalidMemoryType(t *testing.T) {
	cfg := testConfig(t)
	cfg.Memory.Type = "etcd"
	_, err := NewBootstrap(cfg)
	assert.ErrorContains(t, err, "unsupported memory type")
}

func TestOpenConsoleMemory_UsesDefaultFile(t *testing.T) {
	cfg := testConfig(t)
	b, err := NewBootstrap(cfg)
	require.NoError(t, err)

	store, err := b.OpenConsoleMemory(context.Background())
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.UpdateGoal(context.Background(), "Veri Bilimci"))

	data, err := os.ReadFile(filepath.Join(cfg.Memory.Dir, "user_memory.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"`+memory.KeyCareerGoal+`": "Veri Bilimci"`)
}
