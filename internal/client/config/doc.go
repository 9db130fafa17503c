// Package config loads runtime configuration for the allerlog CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the backend API
//	-t string     path to the persisted access-token file
//	-d string     path to the local snapshot database
//	-i int        online status check interval (seconds)
//	-m string     listen address for the metrics endpoint (empty disables it)
//	-mock         route requests to the mock backend URL
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals and timeouts, so values
// can be either strings like "3s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://allerlog.example.com",
//	  "mock_base_url": "http://127.0.0.1:8081",
//	  "use_mocks": false,
//	  "token_file": "/home/me/.allerlog/token",
//	  "database_file": "/home/me/.allerlog/allerlog.db",
//	  "request_timeout": "15s",
//	  "online_check_interval": "3s",
//	  "metrics_addr": ""
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the CLI
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
