package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/allerlog/internal/buildinfo"
	"github.com/mkowalczyk/allerlog/internal/client/cli"
	"github.com/mkowalczyk/allerlog/internal/client/config"
	"github.com/mkowalczyk/allerlog/internal/logging"
)

var (
	verbose bool
)

// rootCmd represents the base command; without a subcommand it starts the
// interactive REPL.
var rootCmd = &cobra.Command{
	Use:   "allerlog",
	Short: "An allergy journal that keeps working when the network does not",
	Long: `allerlog tracks allergy symptoms and exposures against a backend API.
Journal edits apply locally first and settle with the server in the
background; reads fall back to the last synced snapshot when offline.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
	Run: runRepl,
	// The config package parses its own flags from os.Args.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

// replCmd is an explicit alias for the default behavior.
var replCmd = &cobra.Command{
	Use:                "repl",
	Short:              "Start the interactive journal session",
	Args:               cobra.NoArgs,
	Run:                runRepl,
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

func runRepl(cmd *cobra.Command, args []string) {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg, logging.NewSlogLogger(slog.Default()))
	if err != nil {
		fatal("failed to start", err)
	}

	app.Run(ctx)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.AddCommand(replCmd)
}
