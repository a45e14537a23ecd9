package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(dbPathEnv, "")
	t.Setenv(logLevelEnv, "")
	t.Setenv(repairStrategyEnv, "")
	t.Setenv(outputFormatEnv, "")

	cfg := Load("")
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
database:
  path: /var/lib/pub.db
  connectDelay: 2s
ingest:
  repairStrategy: markup
query:
  pageSize: 50
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv(configPathEnv, "")
	t.Setenv(dbPathEnv, "")
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(repairStrategyEnv, "")
	t.Setenv(outputFormatEnv, "yaml")

	cfg := Load(path)

	assert.Equal(t, "/var/lib/pub.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Second, cfg.Database.ConnectDelay)
	assert.Equal(t, uint(3), cfg.Database.ConnectAttempts)
	assert.Equal(t, "markup", cfg.Ingest.RepairStrategy)
	assert.Equal(t, 10, cfg.Ingest.ProgressSteps)
	assert.Equal(t, 50, cfg.Query.PageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "yaml", cfg.Query.Format)
}

func TestLoadEnvPathAndBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o644))

	t.Setenv(configPathEnv, path)
	t.Setenv(dbPathEnv, "env.db")
	t.Setenv(logLevelEnv, "")
	t.Setenv(repairStrategyEnv, "")
	t.Setenv(outputFormatEnv, "")

	cfg := Load("")
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, "heuristic", cfg.Ingest.RepairStrategy)
}
