// Package config defines service configuration and its loading.
//
// Conventions:
// - New() builds a Config holding every default.
// - Load(ctx) layers a YAML file and STRIDE_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// metricNamespace matches a valid Prometheus metric name prefix.
var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration shared by the server and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file; empty keeps everything in memory.
	DatabasePath string `koanf:"database_path"`

	// StaticDir holds the built frontend served at "/".
	StaticDir string `koanf:"static_dir"`

	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	AdminSecret   string `koanf:"admin_secret"`

	// TokenTTLHours is the lifetime of an admin token.
	TokenTTLHours int `koanf:"token_ttl_hours"`

	// Categories lists the leaderboard partitions in display order.
	Categories []string `koanf:"categories"`

	// MeetPlaceholder is shown when a best time's meet cannot be resolved.
	MeetPlaceholder string `koanf:"meet_placeholder"`

	// TieBreak orders equal times: "id" (athlete id) or "name".
	TieBreak string `koanf:"tie_break"`

	// FetchTimeoutMS bounds the concurrent store reads behind one view.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	CORSAllowOrigin string `koanf:"cors_allow_origin"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`

	// MetricsNamespace prefixes every series on /metrics.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		DatabasePath:      "",
		StaticDir:         "frontend/dist",
		AdminUsername:     "admin",
		TokenTTLHours:     24,
		Categories:        []string{"M", "F"},
		MeetPlaceholder:   "—",
		TieBreak:          "id",
		FetchTimeoutMS:    5000,
		CORSAllowOrigin:   "*",
		ShutdownTimeoutMS: 10_000,
		MetricsNamespace:  "stride",
	}
}

// TokenTTL returns the admin token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// FetchTimeout returns the per-view store read budget.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	nonEmpty := 0
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidConfig)
	}
	switch strings.ToLower(c.TieBreak) {
	case "id", "name":
	default:
		return fmt.Errorf("%w: tie_break must be id or name, got %q", ErrInvalidConfig, c.TieBreak)
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("%w: token_ttl_hours must be positive", ErrInvalidConfig)
	}
	if c.FetchTimeoutMS <= 0 {
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	}
	if !metricNamespace.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric prefix", ErrInvalidConfig, c.MetricsNamespace)
	}
	return nil
}
