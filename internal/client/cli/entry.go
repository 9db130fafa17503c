package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/models"
)

const maxSeverity = 5

// List prints the journal, newest first as the server orders it. When the
// server is unreachable the last synced snapshot is shown instead.
func (a *App) List(ctx context.Context) error {
	entries, offline, err := a.entries.List(ctx)
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}

	if offline {
		printlnFn("(offline: showing last synced snapshot)")
	}
	if len(entries) == 0 {
		printlnFn("No entries yet.")
		return nil
	}

	for _, e := range entries {
		printlnFn(formatEntry(e))
	}
	return nil
}

func formatEntry(e models.Entry) string {
	id := e.ID
	if strings.HasPrefix(id, cache.TempIDPrefix) {
		id = "(saving...)"
	}
	line := fmt.Sprintf("%s  %s  total=%d [ur=%d lr=%d skin=%d eyes=%d]",
		id, e.OccurredOn.Format("2006-01-02"), e.Total,
		e.UpperRespiratory, e.LowerRespiratory, e.Skin, e.Eyes)
	if len(e.Exposures) > 0 {
		line += "  " + strings.Join(e.Exposures, ", ")
	}
	if e.Note != "" {
		line += "  — " + e.Note
	}
	return line
}

// promptEntry collects the entry form: date, the four severity scores,
// exposures, and a note.
func (a *App) promptEntry(ctx context.Context) (models.NewEntry, error) {
	date, err := GetDate(a.reader, "Date", os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}

	upper, err := GetSeverity(a.reader, "Upper respiratory", maxSeverity, os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}
	lower, err := GetSeverity(a.reader, "Lower respiratory", maxSeverity, os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}
	skin, err := GetSeverity(a.reader, "Skin", maxSeverity, os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}
	eyes, err := GetSeverity(a.reader, "Eyes", maxSeverity, os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}

	exposures, err := GetCommaList(a.reader, "Exposures", os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}
	if len(exposures) > 0 {
		if known, err := a.exposures.NameToID(ctx); err == nil {
			for _, name := range exposures {
				if _, ok := known[name]; !ok {
					printlnFn("Note: unknown exposure type:", name)
				}
			}
		}
	}

	note, err := getSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return models.NewEntry{}, err
	}

	return models.BuildNewEntry(models.BuildNewEntryParams{
		Date:             date,
		UpperRespiratory: upper,
		LowerRespiratory: lower,
		Skin:             skin,
		Eyes:             eyes,
		Exposures:        exposures,
		Note:             note,
	}), nil
}

// Add creates a journal entry. The entry appears in the list immediately;
// settlement with the server happens in the background.
func (a *App) Add(ctx context.Context) error {
	entry, err := a.promptEntry(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	created, err := a.entries.Create(ctx, entry)
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}
	printlnFn("Saved entry " + created.ID)
	return nil
}

// Edit replaces the form fields of an existing entry.
func (a *App) Edit(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to edit", os.Stdout)
	if err != nil {
		return err
	}

	changes, err := a.promptEntry(ctx)
	if err != nil {
		printlnFn("Error:", err.Error())
		return err
	}

	updated, err := a.entries.Update(ctx, id, changes)
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}
	printlnFn("Updated entry " + updated.ID)
	return nil
}

// Delete removes an entry from the journal.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter entry id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.entries.Delete(ctx, id); err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}
	printlnFn("Deleted entry " + id)
	return nil
}
