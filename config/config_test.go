package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "gnuplot", cfg.Render.Gnuplot)
	assert.GreaterOrEqual(t, cfg.Render.Workers, 1)
}

func TestLoadLayersFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admissions.yaml")
	yaml := `
logging:
  level: warn
  format: json
database:
  driver: postgres
  name: results
  user: registrar
render:
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("ADMISSIONS_LOGGING_LEVEL", "debug")
	t.Setenv("ADMISSIONS_DB_SSL_MODE", "require")
	t.Setenv("ADMISSIONS_RENDER_TABULA", "java,-jar,/opt/tabula.jar")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level, "environment wins over the file")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "results", cfg.Database.Name)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 5432, cfg.Database.Port, "defaults survive a partial file")
	assert.Equal(t, 2, cfg.Render.Workers)
	assert.Equal(t, []string{"java", "-jar", "/opt/tabula.jar"}, cfg.Render.Tabula)

	assert.Equal(t,
		"host=localhost port=5432 user=registrar password= dbname=results sslmode=require",
		cfg.Database.ConnString())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ADMISSIONS_LOGGING_LEVEL", "verbose")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConnString(t *testing.T) {
	db := DatabaseConfig{Driver: "sqlite", Name: "runs"}
	assert.Equal(t, "file:runs.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", db.ConnString())

	db.DSN = "file::memory:"
	assert.Equal(t, "file::memory:", db.ConnString())
}

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "admissions.log")

	logger, closer, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", FilePath: path})
	require.NoError(t, err)

	logger.Debug("parsed publication", "students", 42)
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "parsed publication", entry["msg"])
	assert.Equal(t, "DEBUG", entry["level"])
	assert.EqualValues(t, 42, entry["students"])
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"":        "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}
