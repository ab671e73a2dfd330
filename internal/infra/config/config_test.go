package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 1, cfg.Trails.MinFitnessLevel)
	require.Equal(t, 5, cfg.Trails.MaxFitnessLevel)
	require.False(t, cfg.Trails.FallbackToUnranked)
	require.Equal(t, 10*time.Minute, cfg.Weather.CacheTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
http:
  address: ":9090"
trails:
  fallbackToUnranked: true
weather:
  cacheTtl: 5m
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDRESS", ":7070")
	t.Setenv("DATABASE_URL", "postgres://trails@localhost/trails")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.True(t, cfg.Trails.FallbackToUnranked)
	require.Equal(t, 5*time.Minute, cfg.Weather.CacheTTL)
	require.Equal(t, "postgres://trails@localhost/trails", cfg.Database.DSN)
}

func TestValidateRejectsInvertedFitnessRange(t *testing.T) {
	cfg := defaultConfig()
	cfg.Trails.MinFitnessLevel = 5
	cfg.Trails.MaxFitnessLevel = 1
	require.Error(t, cfg.Validate())
}

func TestValidateRequiresRedisAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Weather.Redis.Enabled = true
	require.Error(t, cfg.Validate())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
}
