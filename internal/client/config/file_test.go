package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	full := &Config{
		ServerURL:           "https://docs.example/api",
		RequestTimeout:      15 * time.Second,
		OnlineCheckInterval: 10 * time.Second,
		AllowProceedOnError: true,
		DatabasePath:        "client.db",
		DownloadDir:         "out",
		LogLevel:            "debug",
		MaxUploadSize:       20 << 20,
	}

	jsonPath := writeTempFile(t, "cfg.json", `{
  "server_url": "https://docs.example/api",
  "request_timeout": "15s",
  "online_check_interval": 10000000000,
  "allow_proceed_on_error": true,
  "database_path": "client.db",
  "download_dir": "out",
  "log_level": "debug",
  "max_upload_size": "20MB"
}`)

	tomlPath := writeTempFile(t, "cfg.toml", `
server_url = "https://docs.example/api"
request_timeout = "15s"
online_check_interval = "10s"
allow_proceed_on_error = true
database_path = "client.db"
download_dir = "out"
log_level = "debug"
max_upload_size = "20MB"
`)

	t.Run("loads json from -config", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", jsonPath}

		cfg := &Config{}
		parseFile(cfg)
		assert.Empty(t, cmp.Diff(full, cfg))
	})

	t.Run("loads toml from -c", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", tomlPath}

		cfg := &Config{}
		parseFile(cfg)
		assert.Empty(t, cmp.Diff(full, cfg))
	})

	t.Run("missing keys keep previous values", func(t *testing.T) {
		partial := writeTempFile(t, "partial.json", `{"log_level": "error"}`)
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		want := &Config{}
		want.LoadDefaults()
		want.LogLevel = "error"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("explicit false overrides", func(t *testing.T) {
		off := writeTempFile(t, "off.json", `{"allow_proceed_on_error": false}`)
		os.Args = []string{"testbin", "-c", off}

		cfg := &Config{AllowProceedOnError: true}
		parseFile(cfg)
		assert.False(t, cfg.AllowProceedOnError)
	})

	t.Run("no flags -> no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{ServerURL: "http://defaults:1234", OnlineCheckInterval: 42 * time.Second}
		parseFile(cfg)

		assert.Equal(t, "http://defaults:1234", cfg.ServerURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON -> panics", func(t *testing.T) {
		bad := writeTempFile(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("invalid TOML -> panics", func(t *testing.T) {
		bad := writeTempFile(t, "bad.toml", `server_url = `)
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("bad size -> panics", func(t *testing.T) {
		bad := writeTempFile(t, "size.json", `{"max_upload_size": "huge"}`)
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("missing file -> panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}

		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
