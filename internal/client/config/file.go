package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophdocs/internal/flagx"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	"github.com/docker/go-units"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig is a DTO used exclusively for config file decoding. Durations
// use timex.Duration, so they can be written as "3s" (or, in JSON, integer
// nanoseconds). MaxUploadSize is a human size such as "20MB". Fields left
// out of the file keep their previous value.
type FileConfig struct {
	ServerURL           string         `json:"server_url" toml:"server_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" toml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" toml:"online_check_interval"`
	AllowProceedOnError *bool          `json:"allow_proceed_on_error" toml:"allow_proceed_on_error"`
	DatabasePath        string         `json:"database_path" toml:"database_path"`
	DownloadDir         string         `json:"download_dir" toml:"download_dir"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
	MaxUploadSize       string         `json:"max_upload_size" toml:"max_upload_size"`
}

// parseFile overlays Config with values loaded from a config file.
//
// The path comes from -c or -config (flagx.ConfigFileFlag); without one
// nothing is loaded. Files ending in .toml are decoded with go-toml, anything
// else as JSON. Read, decode and size errors panic.
//
// Intended usage is: defaults -> parseFile -> parseFlags, where later stages
// override earlier ones.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	if err := fc.apply(cfg); err != nil {
		panic(err)
	}
}

func (fc FileConfig) apply(cfg *Config) error {
	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.AllowProceedOnError != nil {
		cfg.AllowProceedOnError = *fc.AllowProceedOnError
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.DownloadDir != "" {
		cfg.DownloadDir = fc.DownloadDir
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.MaxUploadSize != "" {
		size, err := units.RAMInBytes(fc.MaxUploadSize)
		if err != nil {
			return err
		}
		cfg.MaxUploadSize = size
	}
	return nil
}
