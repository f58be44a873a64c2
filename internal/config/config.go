// Package config loads catalog service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort            = "5000"
	defaultUploadDir       = "uploads"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds catalog runtime configuration.
type Config struct {
	Port      string
	LogLevel  string
	UploadDir string

	MetricsEnabled bool
	MetricsToken   string

	CORSOrigins       []string
	UploadLimitPerMin int
	ShutdownTimeout   time.Duration
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load returns configuration parsed from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Port:           envOrDefault("PORT", defaultPort),
		LogLevel:       strings.ToLower(strings.TrimSpace(envOrDefault("LOG_LEVEL", defaultLogLevel))),
		UploadDir:      envOrDefault("UPLOAD_DIR", defaultUploadDir),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		CORSOrigins:    envList("CORS_ORIGINS"),
	}

	var err error
	if cfg.UploadLimitPerMin, err = envInt("UPLOAD_LIMIT_PER_MIN", 0); err != nil {
		return Config{}, err
	}
	if cfg.UploadLimitPerMin < 0 {
		return Config{}, fmt.Errorf("invalid UPLOAD_LIMIT_PER_MIN %d: must not be negative", cfg.UploadLimitPerMin)
	}

	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Config{}, err
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q: must be between 1 and 65535", cfg.Port)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug|info|warn|error)", cfg.LogLevel)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
