// Package config loads runtime configuration for the gophdocs CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config.
//     A .toml extension selects TOML, anything else is read as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-p          allow proceeding when validation cannot be completed
//	-d string   local database file
//	-o string   download directory
//	-l string   log level
//	-m string   maximum upload size ("20MB", "512KiB")
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or, in
// JSON, integer nanoseconds:
//
//	{
//	  "server_url": "https://docs.example.com/api",
//	  "request_timeout": "15s",
//	  "online_check_interval": "3s",
//	  "allow_proceed_on_error": true,
//	  "database_path": "/var/lib/gophdocs/client.db",
//	  "download_dir": "downloads",
//	  "log_level": "debug",
//	  "max_upload_size": "20MB"
//	}
//
// The same keys work in TOML.
//
// Note: This package does not read environment variables directly; use the
// config file or flags to configure values.
package config
