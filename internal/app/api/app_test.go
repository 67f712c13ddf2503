package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-planner/internal/app"
	"career-planner/pkg/config"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, parseDuration("", 50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, parseDuration("soon", 50*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, parseDuration("-1s", 50*time.Millisecond))
	assert.Equal(t, time.Duration(0), parseDuration("0s", 50*time.Millisecond))
	assert.Equal(t, 200*time.Millisecond, parseDuration("200ms", 50*time.Millisecond))
}

func TestNewApp(t *testing.T) {
	cfg := config.Default()
	cfg.Model.APIKey = ""
	cfg.Model.APIKeyEnv = "CAREER_TEST_UNSET_KEY"
	cfg.Memory.Dir = t.TempDir()
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 9001

	b, err := app.NewBootstrap(cfg)
	require.NoError(t, err)

	a, err := NewApp(b)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9001", a.Addr())

	h := a.build(":0")
	require.NotNil(t, h)
	assert.Nil(t, a.otelProvider)
}

func TestNewApp_NilBootstrap(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}
