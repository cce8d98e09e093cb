package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/flagx"
	"github.com/docker/go-units"
)

var knownFlags = []string{"-a", "-t", "-i", "-p", "-d", "-o", "-l", "-m"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API
//	-t int      request timeout in seconds
//	-i int      online check interval in seconds
//	-p          allow proceeding when validation cannot be completed (-p=false to disable)
//	-d string   local database file
//	-o string   download directory
//	-l string   log level
//	-m string   maximum upload size, e.g. 20MB
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
// Malformed values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the document API")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.BoolVar(&cfg.AllowProceedOnError, "p", cfg.AllowProceedOnError, "allow proceeding when validation fails to run")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	maxUpload := fs.String("m", "", "maximum upload size (default "+units.BytesSize(float64(cfg.MaxUploadSize))+")")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// durations from a config file may be finer than whole seconds
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["t"] {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	if set["i"] {
		cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	}

	if *maxUpload != "" {
		size, err := units.RAMInBytes(*maxUpload)
		if err != nil {
			panic(err)
		}
		cfg.MaxUploadSize = size
	}
}
