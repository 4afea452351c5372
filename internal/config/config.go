// Package config loads goldctl configuration from the environment, with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Backend
	APIURL        string        `yaml:"api_url"`
	ClientTimeout time.Duration `yaml:"client_timeout"`

	// Listing
	PageSize int `yaml:"page_size"`

	// Poll intervals. The jobs list, queue status, and job detail views poll
	// independently of each other.
	JobsPollInterval  time.Duration `yaml:"jobs_poll_interval"`
	QueuePollInterval time.Duration `yaml:"queue_poll_interval"`
	JobPollInterval   time.Duration `yaml:"job_poll_interval"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. Defaults match the
// web front-end: jobs list every 10s, queue status every 5s, job detail
// every 5s, 20 rows per page.
func Load() Config {
	return Config{
		APIURL:        getEnv("GOLDCARE_API_URL", "http://localhost:3001"),
		ClientTimeout: getDuration("GOLDCARE_CLIENT_TIMEOUT", 30*time.Second),

		PageSize: 20,

		JobsPollInterval:  getDuration("GOLDCTL_JOBS_POLL_INTERVAL", 10*time.Second),
		QueuePollInterval: getDuration("GOLDCTL_QUEUE_POLL_INTERVAL", 5*time.Second),
		JobPollInterval:   getDuration("GOLDCTL_JOB_POLL_INTERVAL", 5*time.Second),

		LogFile:  getEnv("GOLDCTL_LOG_FILE", "/tmp/goldctl.log"),
		LogLevel: parseLogLevel(getEnv("GOLDCTL_LOG_LEVEL", "INFO")),
	}
}

// LoadFile overlays values from a YAML config file onto cfg. Zero-valued
// fields in the file leave the existing value in place.
func LoadFile(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if overlay.APIURL != "" {
		cfg.APIURL = overlay.APIURL
	}
	if overlay.ClientTimeout != 0 {
		cfg.ClientTimeout = overlay.ClientTimeout
	}
	if overlay.PageSize != 0 {
		cfg.PageSize = overlay.PageSize
	}
	if overlay.JobsPollInterval != 0 {
		cfg.JobsPollInterval = overlay.JobsPollInterval
	}
	if overlay.QueuePollInterval != 0 {
		cfg.QueuePollInterval = overlay.QueuePollInterval
	}
	if overlay.JobPollInterval != 0 {
		cfg.JobPollInterval = overlay.JobPollInterval
	}
	if overlay.LogFile != "" {
		cfg.LogFile = overlay.LogFile
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
