package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrNonPositiveDuration = errors.New("must be positive")

// Config holds runtime settings for the gophdocs CLI.
//
// Fields:
//   - ServerURL: base URL of the document management REST API.
//   - RequestTimeout: per-request HTTP timeout.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - AllowProceedOnError: offer to run a view/download when validation itself fails.
//   - DatabasePath: local SQLite file for the session and pending approvals.
//   - DownloadDir: where downloaded versions are written.
//   - LogLevel: debug, info, warn or error.
//   - MaxUploadSize: largest file accepted by the upload command, in bytes.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	AllowProceedOnError bool
	DatabasePath        string
	DownloadDir         string
	LogLevel            string
	MaxUploadSize       int64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000/api"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.AllowProceedOnError = false
	c.DatabasePath = "gophdocs.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.MaxUploadSize = 50 << 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones. An invalid result panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout %s: %w", c.RequestTimeout, ErrNonPositiveDuration)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval %s: %w", c.OnlineCheckInterval, ErrNonPositiveDuration)
	}
	return nil
}
