package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/stats"
)

// Stats prints the aggregated views over the journal: most frequent
// exposures, the share of each symptom group, and the per-exposure symptom
// distribution.
func (a *App) Stats(ctx context.Context) error {
	entries, offline, err := a.entries.List(ctx)
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}
	if offline {
		printlnFn("(offline: statistics over last synced snapshot)")
	}
	if len(entries) == 0 {
		printlnFn("No entries yet.")
		return nil
	}

	opts := stats.Options{}

	printlnFn("Top exposures (days seen):")
	for _, row := range stats.TopExposures(entries, opts) {
		printlnFn(fmt.Sprintf("  %-20s %d", row.Name, row.Days))
	}

	printlnFn("Symptom share:")
	for _, d := range stats.SymptomsShare(entries) {
		printlnFn(fmt.Sprintf("  %-20s %d", d.Label, d.Value))
	}

	hm := stats.ExposureSymptoms(entries, opts)
	if len(hm.YLabels) > 0 {
		printlnFn("Symptom distribution per exposure (%):")
		printlnFn("  " + strings.Join(hm.XLabels, " / "))
		for i, name := range hm.YLabels {
			cells := make([]string, len(hm.Matrix[i]))
			for j, v := range hm.Matrix[i] {
				cells[j] = fmt.Sprintf("%d", v)
			}
			printlnFn(fmt.Sprintf("  %-20s %s", name, strings.Join(cells, " / ")))
		}
	}
	return nil
}
