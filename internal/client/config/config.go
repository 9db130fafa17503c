package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the allerlog CLI.
//
// Fields:
//   - BaseURL: base URL of the backend API, scheme included.
//   - MockBaseURL: base URL of the local mock backend.
//   - UseMocks: when true, EffectiveBaseURL returns MockBaseURL.
//   - TokenFile: where the access token is mirrored between runs.
//   - DatabaseFile: sqlite file holding the offline snapshot.
//   - RequestTimeout: per-request deadline for the HTTP client.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - MetricsAddr: listen address for Prometheus metrics; empty disables them.
type Config struct {
	BaseURL             string
	MockBaseURL         string
	UseMocks            bool
	TokenFile           string
	DatabaseFile        string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	MetricsAddr         string
}

// EffectiveBaseURL returns the URL requests should actually go to,
// honoring the mock toggle.
func (c *Config) EffectiveBaseURL() string {
	if c.UseMocks {
		return c.MockBaseURL
	}
	return c.BaseURL
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.MockBaseURL = "http://127.0.0.1:8081"
	c.UseMocks = false
	c.TokenFile = filepath.Join(defaultStateDir(), "token")
	c.DatabaseFile = filepath.Join(defaultStateDir(), "allerlog.db")
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.MetricsAddr = ""
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".allerlog"
	}
	return filepath.Join(home, ".allerlog")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
