package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Environment      string `yaml:"environment"`
	APIBaseURL       string `yaml:"api_base_url"`
	LogLevel         string `yaml:"log_level"`
	StateBackend     string `yaml:"state_backend"` // "file" or "redis"
	StateDir         string `yaml:"state_dir"`
	RedisURL         string `yaml:"redis_url"`
	DivisionsPerPage int    `yaml:"divisions_per_page"`
	MetricsAddr      string `yaml:"metrics_addr"`  // empty disables the /metrics listener
	OTLPEndpoint     string `yaml:"otlp_endpoint"` // empty disables tracing
}

// Load reads configuration from an optional config file and the
// environment. Environment variables win over file values. A .env
// file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      "development",
		APIBaseURL:       "https://aksamedia-syahreza-be-test.vercel.app/api/api",
		LogLevel:         "info",
		StateBackend:     "file",
		StateDir:         defaultStateDir(),
		RedisURL:         "redis://localhost:6379",
		DivisionsPerPage: 6,
	}

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.APIBaseURL = getEnv("STAFFDESK_API_URL", cfg.APIBaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.StateBackend = getEnv("STAFFDESK_STATE_BACKEND", cfg.StateBackend)
	cfg.StateDir = getEnv("STAFFDESK_STATE_DIR", cfg.StateDir)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.MetricsAddr = getEnv("STAFFDESK_METRICS_ADDR", cfg.MetricsAddr)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)

	perPage, err := strconv.Atoi(getEnv("STAFFDESK_DIVISIONS_PER_PAGE", strconv.Itoa(cfg.DivisionsPerPage)))
	if err != nil {
		return nil, fmt.Errorf("invalid STAFFDESK_DIVISIONS_PER_PAGE: %w", err)
	}
	cfg.DivisionsPerPage = perPage

	if cfg.StateBackend != "file" && cfg.StateBackend != "redis" {
		return nil, fmt.Errorf("invalid state backend %q: must be file or redis", cfg.StateBackend)
	}

	return cfg, nil
}

// configFilePath returns the explicit config path from the
// environment, or the default location otherwise.
func configFilePath() string {
	if path := os.Getenv("STAFFDESK_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "staffdesk", "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".staffdesk"
	}
	return filepath.Join(home, ".local", "state", "staffdesk")
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
