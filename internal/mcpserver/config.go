package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/erraggy/oascombine/merger"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Combine defaults.
	ContinueOnError    bool
	PathStrategy       merger.Strategy
	DefinitionStrategy merger.Strategy
	Concurrency        int

	// Limits.
	MaxSources    int
	MaxInlineSize int64
	Timeout       time.Duration

	// AllowPrivateIPs disables the SSRF guard on URL sources.
	AllowPrivateIPs bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASCOMBINE_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		ContinueOnError:    envBool("OASCOMBINE_CONTINUE_ON_ERROR", false),
		PathStrategy:       envStrategy("OASCOMBINE_PATH_STRATEGY"),
		DefinitionStrategy: envStrategy("OASCOMBINE_DEFINITION_STRATEGY"),
		Concurrency:        envInt("OASCOMBINE_CONCURRENCY", 4),
		MaxSources:         envInt("OASCOMBINE_MAX_SOURCES", 20),
		MaxInlineSize:      int64(envInt("OASCOMBINE_MAX_INLINE_SIZE", 10*1024*1024)),
		Timeout:            envDuration("OASCOMBINE_TIMEOUT", 2*time.Minute),
		AllowPrivateIPs:    envBool("OASCOMBINE_ALLOW_PRIVATE_IPS", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

// envStrategy returns the collision strategy named by key, or "" when the
// variable is unset or names no strategy.
func envStrategy(key string) merger.Strategy {
	v := os.Getenv(key)
	if v == "" {
		return ""
	}
	s, err := merger.ParseStrategy(v)
	if err != nil {
		slog.Warn("invalid strategy env var, ignoring", "key", key, "value", v) //nolint:gosec // G706: values are structured log fields, not format strings
		return ""
	}
	return s
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
