package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-a", "https://api.example.com", "-t", "/tmp/token", "-d", "/tmp/allerlog.db", "-i", "10"},
			expectPanic: false,
			expected: &Config{
				BaseURL:             "https://api.example.com",
				TokenFile:           "/tmp/token",
				DatabaseFile:        "/tmp/allerlog.db",
				OnlineCheckInterval: 10 * time.Second,
			}},
		{name: "Test2 mock and metrics",
			args:        []string{"cmd", "-mock", "-m", "127.0.0.1:9100", "-i", "5"},
			expectPanic: false,
			expected: &Config{
				UseMocks:            true,
				MetricsAddr:         "127.0.0.1:9100",
				OnlineCheckInterval: 5 * time.Second,
			}},
		{name: "Test3 incorrect check interval",
			args:        []string{"cmd", "-a", "https://api.example.com", "-i", "abc"},
			expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
