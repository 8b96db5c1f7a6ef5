package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Run.Workers)
	assert.Equal(t, "jsonl", cfg.Output.Format)
	assert.Equal(t, 1000, cfg.Limit.OriginIntervalMS)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trowel.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "DEBUG"

[fetch]
user_agent = "trowel/1.0"
timeout_ms = 5000

[run]
workers = 2
max_depth = 3
strict = true

[output]
format = "sqlite"
sqlite_path = "out.db"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "trowel/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 5000, cfg.Fetch.TimeoutMS)
	assert.Equal(t, 2, cfg.Run.Workers)
	assert.Equal(t, 3, cfg.Run.MaxDepth)
	assert.True(t, cfg.Run.Strict)
	assert.Equal(t, "sqlite", cfg.Output.Format)
	// untouched sections keep their defaults
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
	assert.Equal(t, "records", cfg.Output.Table)
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFetcherRejectsBadProxy(t *testing.T) {
	cfg := defaults
	cfg.Fetch.Proxies = []string{"://not-a-url"}
	_, err := cfg.Fetcher(nil, nil)
	assert.Error(t, err)
}
