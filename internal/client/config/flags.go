package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkowalczyk/allerlog/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     base URL of the backend API (default from Config)
//	-t string     token file path (default from Config)
//	-d string     snapshot database path (default from Config)
//	-i int        online check interval in seconds (default from Config)
//	-m string     metrics listen address (default from Config)
//	-mock         use the mock backend URL
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i", "-m", "-mock"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.TokenFile, "t", cfg.TokenFile, "path to the persisted access-token file")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "path to the local snapshot database")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address (empty disables metrics)")
	fs.BoolVar(&cfg.UseMocks, "mock", cfg.UseMocks, "route requests to the mock backend")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
