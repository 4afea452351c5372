package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 10*time.Second, cfg.JobsPollInterval)
	assert.Equal(t, 5*time.Second, cfg.QueuePollInterval)
	assert.Equal(t, 5*time.Second, cfg.JobPollInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOLDCARE_API_URL", "http://api.internal:9000")
	t.Setenv("GOLDCTL_JOBS_POLL_INTERVAL", "30s")
	t.Setenv("GOLDCTL_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "http://api.internal:9000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.JobsPollInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv("GOLDCTL_QUEUE_POLL_INTERVAL", "not-a-duration")
	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.QueuePollInterval)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goldctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_url: http://staging:3001\npage_size: 50\n"), 0o644))

	base := Load()
	cfg, err := LoadFile(path, base)
	require.NoError(t, err)

	assert.Equal(t, "http://staging:3001", cfg.APIURL)
	assert.Equal(t, 50, cfg.PageSize)
	// Fields absent from the file keep their environment defaults.
	assert.Equal(t, base.JobsPollInterval, cfg.JobsPollInterval)
	assert.Equal(t, base.LogFile, cfg.LogFile)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), Load())
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("garbage"))
}

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("ingest accepted", "jobId", "j1")

	assert.Contains(t, stderr.String(), "ingest accepted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry), "file sink is JSON")
	assert.Equal(t, "ingest accepted", entry["msg"])
	assert.Equal(t, "j1", entry["jobId"])
}
