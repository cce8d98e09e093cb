package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:5000/api", c.ServerURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.False(t, c.AllowProceedOnError)
	assert.Equal(t, "gophdocs.db", c.DatabasePath)
	assert.Equal(t, "downloads", c.DownloadDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, int64(50<<20), c.MaxUploadSize)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.json", `{"server_url": "https://file.example/api", "log_level": "warn"}`)
	os.Args = []string{"testbin", "-c", path, "-a", "https://flag.example/api"}

	cfg := LoadConfig()
	assert.Equal(t, "https://flag.example/api", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.Validate())

	c.OnlineCheckInterval = 0
	require.ErrorIs(t, c.Validate(), ErrNonPositiveDuration)

	c.LoadDefaults()
	c.RequestTimeout = -time.Second
	require.ErrorIs(t, c.Validate(), ErrNonPositiveDuration)
}

func TestLoadConfig_NonPositiveIntervalsPanic(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	for _, args := range [][]string{
		{"testbin", "-i", "0"},
		{"testbin", "-i", "-5"},
		{"testbin", "-t", "0"},
	} {
		os.Args = args
		require.Panics(t, func() { LoadConfig() }, args)
	}

	path := writeTempFile(t, "cfg.json", `{"online_check_interval": "-2s"}`)
	os.Args = []string{"testbin", "-c", path}
	require.Panics(t, func() { LoadConfig() })
}

func TestLoadConfig_SubSecondFileIntervalKept(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempFile(t, "cfg.toml", "online_check_interval = \"500ms\"\nrequest_timeout = \"1500ms\"\n")
	os.Args = []string{"testbin", "-c", path}

	cfg := LoadConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.OnlineCheckInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}
