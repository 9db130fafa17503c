package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/models"
)

// Exposures lists the exposure-type catalog.
func (a *App) Exposures(ctx context.Context) error {
	types, err := a.exposures.List(ctx)
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}

	if len(types) == 0 {
		printlnFn("No exposure types yet.")
		return nil
	}
	for _, t := range types {
		line := fmt.Sprintf("%s  %s", t.ID, t.Name)
		if t.Description != "" {
			line += "  — " + t.Description
		}
		printlnFn(line)
	}
	return nil
}

// AddExposure creates a new exposure type in the catalog.
func (a *App) AddExposure(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Exposure type name", os.Stdout)
	if err != nil {
		return err
	}
	if name == "" {
		printlnFn("Name must not be empty.")
		return nil
	}

	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.exposures.Create(ctx, models.NewExposureType{Name: name, Description: description})
	if err != nil {
		printlnFn(cache.ErrorMessage(err))
		return err
	}
	printlnFn("Created exposure type " + created.ID)
	return nil
}
