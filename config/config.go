// Package config loads the toml run configuration shared by the CLI
// commands.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/limiter"
	"go.uber.org/zap"
)

type Config struct {
	LogLevel string       `toml:"log_level"`
	LogFile  string       `toml:"log_file"`
	Fetch    FetchConfig  `toml:"fetch"`
	Limit    LimitConfig  `toml:"limit"`
	Run      RunConfig    `toml:"run"`
	Output   OutputConfig `toml:"output"`
}

type FetchConfig struct {
	TimeoutMS  int      `toml:"timeout_ms"`
	UserAgent  string   `toml:"user_agent"`
	Proxies    []string `toml:"proxies"`
	MaxRetries int      `toml:"max_retries"`
	JitterMS   int      `toml:"jitter_ms"`
}

type LimitConfig struct {
	OriginIntervalMS   int     `toml:"origin_interval_ms"`
	OriginConcurrency  int     `toml:"origin_concurrency"`
	OriginWindowEvents int     `toml:"origin_window_events"`
	OriginWindowMS     int     `toml:"origin_window_ms"`
	GlobalRate         float64 `toml:"global_rate"`
	GlobalBurst        int64   `toml:"global_burst"`
}

type RunConfig struct {
	Workers  int   `toml:"workers"`
	MaxDepth int   `toml:"max_depth"`
	MaxUnits int64 `toml:"max_units"`
	Strict   bool  `toml:"strict"`
	Reload   bool  `toml:"reload"`
}

type OutputConfig struct {
	Dir        string `toml:"dir"`
	Format     string `toml:"format"`
	SQLitePath string `toml:"sqlite_path"`
	Table      string `toml:"table"`
	MergeKey   string `toml:"merge_key"`
}

var defaults = Config{
	LogLevel: "INFO",
	Fetch: FetchConfig{
		TimeoutMS:  30000,
		MaxRetries: 2,
	},
	Limit: LimitConfig{
		OriginIntervalMS: 1000,
	},
	Run: RunConfig{
		Workers: 5,
	},
	Output: OutputConfig{
		Dir:    "_scrapes",
		Format: "jsonl",
		Table:  "records",
	},
}

// Load reads path, falling back to defaults when the file is absent.
func Load(path string) (*Config, error) {
	cfg := defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Gate builds the shared rate gate from the limit section.
func (c *Config) Gate() *limiter.Gate {
	opts := []limiter.GateOption{
		limiter.WithOriginInterval(time.Duration(c.Limit.OriginIntervalMS) * time.Millisecond),
	}
	if c.Limit.OriginConcurrency > 0 {
		opts = append(opts, limiter.WithOriginConcurrency(c.Limit.OriginConcurrency))
	}
	if c.Limit.OriginWindowEvents > 0 && c.Limit.OriginWindowMS > 0 {
		opts = append(opts, limiter.WithOriginWindow(c.Limit.OriginWindowEvents,
			time.Duration(c.Limit.OriginWindowMS)*time.Millisecond))
	}
	if c.Limit.GlobalRate > 0 {
		burst := c.Limit.GlobalBurst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, limiter.WithGlobalBucket(c.Limit.GlobalRate, burst))
	}
	return limiter.NewGate(opts...)
}

// Fetcher builds the HTTP client from the fetch section, wired to the
// given gate.
func (c *Config) Fetcher(gate *limiter.Gate, logger *zap.Logger) (fetch.Fetcher, error) {
	opts := []fetch.ClientOption{
		fetch.WithTimeout(time.Duration(c.Fetch.TimeoutMS) * time.Millisecond),
		fetch.WithMaxRetries(c.Fetch.MaxRetries),
		fetch.WithGate(gate),
		fetch.WithLogger(logger),
	}
	if c.Fetch.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(c.Fetch.UserAgent))
	}
	if c.Fetch.JitterMS > 0 {
		opts = append(opts, fetch.WithJitter(time.Duration(c.Fetch.JitterMS)*time.Millisecond))
	}
	if len(c.Fetch.Proxies) > 0 {
		p, err := fetch.RoundRobinSwitcher(c.Fetch.Proxies...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetch.WithProxy(p))
	}
	return fetch.NewClient(opts...), nil
}
