package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/allerlog/internal/client/config"
	"github.com/mkowalczyk/allerlog/internal/client/repositories"
	"github.com/mkowalczyk/allerlog/internal/stats"
)

var statsTopN int

// statsCmd computes the aggregated views over the last synced snapshot
// without contacting the server. Useful for scripting and for a quick look
// while offline.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print journal statistics from the local snapshot",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := config.LoadConfig()

		repos, err := repositories.InitDatabase(ctx, cfg.DatabaseFile)
		if err != nil {
			fatal("failed to open local database", err)
		}
		defer repos.Close()

		entries, err := repos.Journal.GetAll(ctx)
		if err != nil {
			fatal("failed to read snapshot", err)
		}
		if len(entries) == 0 {
			fmt.Println("No entries in the local snapshot. Run the REPL and log in first.")
			return
		}

		if syncedAt, ok, err := repos.State.LastSyncedAt(ctx); err == nil && ok {
			fmt.Printf("Snapshot synced at %s\n\n", syncedAt.Format("2006-01-02 15:04"))
		}

		opts := stats.Options{TopN: statsTopN}

		fmt.Println("Top exposures (days seen):")
		for _, row := range stats.TopExposures(entries, opts) {
			fmt.Printf("  %-20s %d\n", row.Name, row.Days)
		}

		fmt.Println("Symptom share:")
		for _, d := range stats.SymptomsShare(entries) {
			fmt.Printf("  %-20s %d\n", d.Label, d.Value)
		}

		hm := stats.ExposureSymptoms(entries, opts)
		if len(hm.YLabels) > 0 {
			fmt.Println("Symptom distribution per exposure (%):")
			fmt.Println("  " + strings.Join(hm.XLabels, " / "))
			for i, name := range hm.YLabels {
				cells := make([]string, len(hm.Matrix[i]))
				for j, v := range hm.Matrix[i] {
					cells[j] = fmt.Sprintf("%d", v)
				}
				fmt.Printf("  %-20s %s\n", name, strings.Join(cells, " / "))
			}
		}
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsTopN, "top", stats.DefaultTopN, "How many exposures to include")
}
