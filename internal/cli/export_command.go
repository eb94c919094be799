package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/export"
	"chronii/internal/services"
)

// ExportCommand writes entries in an export format
type ExportCommand struct {
	app          *App
	errorHandler *ErrorHandler

	Format string
	Since  string
	Output string
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the export flags
func (c *ExportCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Format, "format", "f", string(export.FormatCSV), "Export format: csv, json, yaml or ics")
	flags.StringVar(&c.Since, "since", "", "Only export entries started within this period (30m, 2h, 1d, 2w, 3mo, 1y)")
	flags.StringVarP(&c.Output, "output", "o", "", "Write to a file instead of standard output")
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidInputError("command", "export", "usage: chronii export [--format csv|json|yaml|ics] [--since 1w] [--output file]")
	}
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var entries []domain.TimeEntry
	if c.Since != "" {
		entries, err = entriesSince(ctx, c.app, c.Since)
	} else {
		entries, err = c.app.services.EntryService.List(ctx, services.ListOptions{Filter: domain.AllProjects()})
	}
	if err != nil {
		return c.errorHandler.Handle("load entries", err)
	}

	// Oldest first reads naturally in a spreadsheet or calendar
	slices.SortStableFunc(entries, func(a, b domain.TimeEntry) int {
		if n := a.StartTime.Compare(b.StartTime); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return c.write(format, entries)
}

func (c *ExportCommand) write(format export.Format, entries []domain.TimeEntry) error {
	var w io.Writer = c.app.out
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, entries, c.app.now()); err != nil {
		return fmt.Errorf("failed to export entries: %w", err)
	}
	if c.Output != "" {
		c.app.printf("Exported %s to %s\n", entryCount(len(entries)), c.Output)
	}
	return nil
}
