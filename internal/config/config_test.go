package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = "postgres://spendlens@localhost/spendlens"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Import.InboxDir = "inbox"
	cfg.Import.ChaseAccount = "CHASE-0042"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "aib", cfg.Import.DefaultImporter)
	assert.True(t, cfg.Import.AutoApplyCategories)
	assert.Equal(t, "@every 5m", cfg.Import.InboxSchedule)
	assert.Empty(t, cfg.Import.InboxDir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\nimport:\n  auto_apply_categories: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Import.AutoApplyCategories)
	assert.Equal(t, "aib", cfg.Import.DefaultImporter)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPENDLENS_DB_DSN", "/tmp/other.db")
	t.Setenv("SPENDLENS_PORT", "9999")
	t.Setenv("SPENDLENS_AUTO_APPLY", "false")
	t.Setenv("SPENDLENS_LOG_LEVEL", "debug")
	t.Setenv("SPENDLENS_DEFAULT_IMPORTER", "revolut")

	cfg := Default()
	ApplyEnv(cfg)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.False(t, cfg.Import.AutoApplyCategories)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "revolut", cfg.Import.DefaultImporter)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestApplyEnv_IgnoresBadNumbers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SPENDLENS_PORT", "eighty")

	cfg := Default()
	ApplyEnv(cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestApplyEnv_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPENDLENS_INBOX_DIR=dropbox\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SPENDLENS_INBOX_DIR") })

	cfg := Default()
	ApplyEnv(cfg)
	assert.Equal(t, "dropbox", cfg.Import.InboxDir)
}
