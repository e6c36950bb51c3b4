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
	cfg.Sources = []Source{
		{Pattern: "stmt*.txt", Institution: "Bank Of America", AccountID: 1, Category: "Uncategorized"},
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Database.Path, got.Database.Path)
	assert.Equal(t, cfg.Import.Concurrency, got.Import.Concurrency)
	assert.Equal(t, cfg.Import.MarkProcessed, got.Import.MarkProcessed)
	assert.Equal(t, cfg.Log.Level, got.Log.Level)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "Bank Of America", got.Sources[0].Institution)
	assert.Equal(t, int64(1), got.Sources[0].AccountID)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "bankimport.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.True(t, cfg.Import.MarkProcessed)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Sources)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("database: [oops"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: bankimport.db")
	assert.Contains(t, contents, "mark_processed: true")
	assert.Contains(t, contents, "level: info")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvDatabase, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", got.Database.Path)
	assert.Equal(t, "debug", got.Log.Level)
}

func TestDotEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvLogLevel+"=warn\n"), 0o644))

	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default()))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", got.Log.Level)
}

func TestSourceFor(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{
		{Pattern: "amex*.csv", Institution: "American Express"},
		{Pattern: "*.csv", Institution: "Wells Fargo"},
	}

	s, ok := cfg.SourceFor("amex-2025-12.csv")
	require.True(t, ok)
	assert.Equal(t, "American Express", s.Institution)

	s, ok = cfg.SourceFor("checking.csv")
	require.True(t, ok)
	assert.Equal(t, "Wells Fargo", s.Institution)

	_, ok = cfg.SourceFor("stmt.txt")
	assert.False(t, ok)
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/proj", "bankimport.db"), cfg.DatabasePath("/proj"))

	cfg.Database.Path = "/var/data/x.db"
	assert.Equal(t, "/var/data/x.db", cfg.DatabasePath("/proj"))
}

func TestApplyEnv_OnDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDatabase, "/tmp/env.db")
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(EnvLogLevel))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvLogLevel+"=debug\n"+EnvDatabase+"=/tmp/dotenv.db\n"), 0o644))

	cfg := Default()
	cfg.ApplyEnv(dir)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path, "set variables win over .env")
	assert.Equal(t, "debug", cfg.Log.Level)
}
