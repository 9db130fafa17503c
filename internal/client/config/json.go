package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkowalczyk/allerlog/internal/flagx"
	"github.com/mkowalczyk/allerlog/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	BaseURL             string         `json:"base_url"`
	MockBaseURL         string         `json:"mock_base_url"`
	UseMocks            bool           `json:"use_mocks"`
	TokenFile           string         `json:"token_file"`
	DatabaseFile        string         `json:"database_file"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	MetricsAddr         string         `json:"metrics_addr"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies set fields into the provided Config; zero values (absent keys)
//     leave the earlier value in place.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.MockBaseURL != "" {
		cfg.MockBaseURL = jc.MockBaseURL
	}
	if jc.UseMocks {
		cfg.UseMocks = true
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.MetricsAddr != "" {
		cfg.MetricsAddr = jc.MetricsAddr
	}
}
