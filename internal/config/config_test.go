package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tablebot/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(viper.New(), config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8547", cfg.API.BaseURL)
	assert.Equal(t, "TheHungryUnicorn", cfg.API.Restaurant)
	assert.Equal(t, "ONLINE", cfg.API.Channel)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.API.Retries)
	assert.Equal(t, 300*time.Millisecond, cfg.API.Backoff)
	assert.Equal(t, uint32(5), cfg.API.Breaker.Failures)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.ErrorIs(t, cfg.RequireToken(), config.ErrMissingToken)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOOKING_API_BASE_URL", "http://api.example:9000")
	t.Setenv("BOOKING_API_TOKEN", "secret")
	t.Setenv("TABLEBOT_API_RETRIES", "5")
	t.Setenv("TABLEBOT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TABLEBOT_LOG_FORMAT", "json")

	cfg, err := config.Load(viper.New(), config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "http://api.example:9000", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, 5, cfg.API.Retries)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_ConfigAndEnvFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("api:\n  restaurant: TheHungryDragon\n  timeout: 2s\nhttp:\n  addr: \":9090\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tablebot.yaml"), yaml, 0o600))

	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("TABLEBOT_API_CHANNEL=PHONE\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TABLEBOT_API_CHANNEL") })

	cfg, err := config.Load(viper.New(), config.Options{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "TheHungryDragon", cfg.API.Restaurant)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "PHONE", cfg.API.Channel)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.Load(viper.New(), config.Options{ConfigFile: "missing.yaml"})
	assert.Error(t, err)

	_, err = config.Load(viper.New(), config.Options{EnvFile: "missing.env"})
	assert.Error(t, err)

	t.Setenv("TABLEBOT_LOG_FORMAT", "xml")
	_, err = config.Load(viper.New(), config.Options{})
	assert.ErrorContains(t, err, "log.format")
}
