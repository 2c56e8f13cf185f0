package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiredFieldMissing(t *testing.T) {
	t.Setenv("DATABASE_FILE_PATH", "")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required config")
	assert.Contains(t, err.Error(), "DATABASE_FILE_PATH")
	assert.Contains(t, err.Error(), "database_file_path")
}

func TestNew_WithEnvVar(t *testing.T) {
	t.Setenv("DATABASE_FILE_PATH", "/tmp/test.db")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DatabaseFilePath)
}

func TestNew_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "catalog.yaml")

	configContent := `
database_file_path: /data/catalog.db
server_port: 8080
database_debug: true
search_sync_timeout: 45s
search_rebuild_on_start: true
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/catalog.db", cfg.DatabaseFilePath)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.DatabaseDebug)
	assert.Equal(t, 45*time.Second, cfg.SearchSyncTimeout)
	assert.True(t, cfg.SearchRebuildOnStart)
}

func TestNew_EnvVarOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "catalog.yaml")

	configContent := `
database_file_path: /data/from-file.db
server_port: 8080
search_sync_workers: 4
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("DATABASE_FILE_PATH", "/data/from-env.db")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := New()
	require.NoError(t, err)
	// Env vars should override config file
	assert.Equal(t, "/data/from-env.db", cfg.DatabaseFilePath)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 4, cfg.SearchSyncWorkers)
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("DATABASE_FILE_PATH", "/tmp/test.db")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DatabaseConnectRetryCount)
	assert.Equal(t, 2*time.Second, cfg.DatabaseConnectRetryDelay)
	assert.Equal(t, 5*time.Second, cfg.DatabaseBusyTimeout)
	assert.False(t, cfg.DatabaseDebug)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, 3689, cfg.ServerPort)
	assert.Equal(t, 2, cfg.SearchSyncWorkers)
	assert.Equal(t, 1024, cfg.SearchSyncQueueSize)
	assert.Equal(t, 30*time.Second, cfg.SearchSyncTimeout)
	assert.False(t, cfg.SearchRebuildOnStart)
}

func TestNew_InvalidWorkerCount(t *testing.T) {
	t.Setenv("DATABASE_FILE_PATH", "/tmp/test.db")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("SEARCH_SYNC_WORKERS", "0")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_sync_workers")
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()
	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, "127.0.0.1", cfg.ServerHost)
	assert.Empty(t, cfg.SearchIndexPath)
}

func TestRetrieveSettings(t *testing.T) {
	cfg := NewForTest()
	settings := NewService(cfg).RetrieveSettings()
	assert.True(t, settings.SearchIndexInMemory)
	assert.Equal(t, "5s", settings.SearchSyncTimeout)
	assert.Equal(t, cfg.SearchSyncWorkers, settings.SearchSyncWorkers)
}
