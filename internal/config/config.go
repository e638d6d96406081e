// Package config provides centralized configuration for the animalcompare server.
// Values are loaded from an optional YAML file, then overridden by environment
// variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// configPathEnv names the environment variable that points to the YAML file.
const configPathEnv = "ANIMALCOMPARE_CONFIG"

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string `yaml:"port"`

	// DBPath is the path to the SQLite database file.
	DBPath string `yaml:"dbPath"`

	// LoadAmount is the target batch size for one backlog refill.
	LoadAmount int `yaml:"loadAmount"`

	// AttemptCap bounds source fetch attempts per refill batch.
	AttemptCap int `yaml:"attemptCap"`

	// RecycleBase is the maximum number of already-seen animals requeued
	// per replenishment cycle.
	RecycleBase int `yaml:"recycleBase"`

	// RecycleMinCatalog is the catalog size below which no recycling happens.
	RecycleMinCatalog int `yaml:"recycleMinCatalog"`

	// RecycleMaxCatalog is the catalog size at which recycling reaches RecycleBase.
	RecycleMaxCatalog int `yaml:"recycleMaxCatalog"`

	// MaxFileSize is the largest accepted image, for sources that report a size.
	MaxFileSize int64 `yaml:"maxFileSize"`

	// HTTPTimeout is the timeout for outgoing HTTP requests (sources, prefetch).
	HTTPTimeout time.Duration `yaml:"httpTimeout"`

	// PrefetchEnabled toggles the best-effort image prefetch after refills.
	PrefetchEnabled bool `yaml:"prefetchEnabled"`

	// OfflineSources swaps the real animal feeds for stub adapters that
	// synthesise urls, for development without network access.
	OfflineSources bool `yaml:"offlineSources"`

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string `yaml:"corsOrigin"`

	// LogLevel is the minimum slog level: "debug", "info", "warn", "error".
	LogLevel string `yaml:"logLevel"`
}

// RefillThreshold is the backlog size below which a refill is triggered,
// half of the normal target batch.
func (c Config) RefillThreshold() int {
	return c.LoadAmount / 2
}

// Load reads configuration from the optional YAML file named by
// ANIMALCOMPARE_CONFIG, then applies environment overrides and defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:              "8080",
		DBPath:            "animalcompare.db",
		LoadAmount:        20,
		AttemptCap:        50,
		RecycleBase:       20,
		RecycleMinCatalog: 40,
		RecycleMaxCatalog: 200,
		MaxFileSize:       1 << 20, // 1MB
		HTTPTimeout:       30 * time.Second,
		PrefetchEnabled:   true,
		CORSOrigin:        "*",
		LogLevel:          "info",
	}

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.LoadAmount = envInt("LOAD_AMOUNT", cfg.LoadAmount)
	cfg.AttemptCap = envInt("ATTEMPT_CAP", cfg.AttemptCap)
	cfg.RecycleBase = envInt("RECYCLE_BASE", cfg.RecycleBase)
	cfg.RecycleMinCatalog = envInt("RECYCLE_MIN_CATALOG", cfg.RecycleMinCatalog)
	cfg.RecycleMaxCatalog = envInt("RECYCLE_MAX_CATALOG", cfg.RecycleMaxCatalog)
	cfg.MaxFileSize = envInt64("MAX_FILE_SIZE", cfg.MaxFileSize)
	cfg.HTTPTimeout = envDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.PrefetchEnabled = envBool("PREFETCH_ENABLED", cfg.PrefetchEnabled)
	cfg.OfflineSources = envBool("OFFLINE_SOURCES", cfg.OfflineSources)
	cfg.CORSOrigin = envOr("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.LoadAmount <= 0 {
		return fmt.Errorf("loadAmount must be positive, got %d", c.LoadAmount)
	}
	if c.AttemptCap < c.LoadAmount {
		return fmt.Errorf("attemptCap %d must be at least loadAmount %d", c.AttemptCap, c.LoadAmount)
	}
	if c.RecycleMaxCatalog <= c.RecycleMinCatalog {
		return fmt.Errorf("recycleMaxCatalog %d must exceed recycleMinCatalog %d",
			c.RecycleMaxCatalog, c.RecycleMinCatalog)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
