package cli

import (
	"context"

	"github.com/spf13/pflag"

	"chronii/internal/aggregation"
	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/services"
)

// ListCommand prints the grouped history
type ListCommand struct {
	app          *App
	errorHandler *ErrorHandler

	Project   string
	NoProject bool
	Limit     int
	All       bool
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the list flags
func (c *ListCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Project, "project", "p", "", "Only show entries of this project")
	flags.BoolVar(&c.NoProject, "no-project", false, "Only show entries without a project")
	flags.IntVarP(&c.Limit, "limit", "n", 0, "Number of recent entries to load (default from history.page_size)")
	flags.BoolVarP(&c.All, "all", "a", false, "Load the whole history")
}

// Execute runs the list command. An optional period ("2d", "1w") limits the
// listing to entries that started within it.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "list", "usage: chronii list [period] [--project name]")
	}

	filter, err := c.filter()
	if err != nil {
		return err
	}

	var entries []domain.TimeEntry
	if len(args) == 1 {
		entries, err = entriesSince(ctx, c.app, args[0])
	} else {
		entries, err = c.app.services.EntryService.List(ctx, services.ListOptions{Limit: c.limit(), Filter: filter})
	}
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}

	engine := aggregation.NewEngine(c.app.now())
	engine.SetEntries(entries)
	engine.SetFilter(filter)
	c.app.printf("%s", c.app.renderer.History(engine.View(), HistoryOptions{}))
	return nil
}

func (c *ListCommand) limit() int {
	switch {
	case c.All:
		return 0
	case c.Limit > 0:
		return c.Limit
	default:
		return c.app.config.History.PageSize
	}
}

func (c *ListCommand) filter() (domain.ProjectFilter, error) {
	return projectFilter(c.Project, c.NoProject, c.app.config.History.Project)
}

// projectFilter resolves the --project/--no-project pair, falling back to
// the configured default project
func projectFilter(project string, noProject bool, fallback string) (domain.ProjectFilter, error) {
	switch {
	case project != "" && noProject:
		return domain.ProjectFilter{}, errors.NewInvalidInputError("project", project, "--project and --no-project cannot be combined")
	case noProject:
		return domain.NoProject(), nil
	case project != "":
		return domain.NamedProject(project), nil
	case fallback != "":
		return domain.NamedProject(fallback), nil
	default:
		return domain.AllProjects(), nil
	}
}

// entriesSince loads the entries that started within a shorthand period
func entriesSince(ctx context.Context, app *App, period string) ([]domain.TimeEntry, error) {
	tr, err := app.services.ReportingService.ParseTimeRange(period)
	if err != nil {
		return nil, err
	}
	report, err := app.services.ReportingService.Range(ctx, tr.Start, tr.End)
	if err != nil {
		return nil, err
	}
	return report.View.Entries(), nil
}
