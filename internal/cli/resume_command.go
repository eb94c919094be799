package cli

import (
	"context"

	"chronii/internal/domain"
	"chronii/internal/errors"
	"chronii/internal/services"
)

// ResumeCommand handles the resume command
type ResumeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewResumeCommand creates a new resume command handler
func NewResumeCommand(app *App) *ResumeCommand {
	return &ResumeCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute resumes the given entry, or prompts for a recent task
func (c *ResumeCommand) Execute(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		return c.resumeInteractive(ctx)
	case 1:
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return c.resume(ctx, id)
	default:
		return errors.NewInvalidInputError("command", "resume", "usage: chronii resume [id]")
	}
}

func (c *ResumeCommand) resumeInteractive(ctx context.Context) error {
	entries, err := c.app.services.EntryService.List(ctx, services.ListOptions{Limit: pickLimit * 5, Filter: domain.AllProjects()})
	if err != nil {
		return c.errorHandler.Handle("list entries", err)
	}

	recent := distinctTasks(entries, pickLimit)
	if len(recent) == 0 {
		c.app.println("No entries found to resume.")
		return nil
	}

	c.app.println("Select a task to resume:")
	entry, ok, err := pickEntry(c.app, recent, "resume")
	if err != nil || !ok {
		return err
	}
	return c.resume(ctx, entry.ID)
}

func (c *ResumeCommand) resume(ctx context.Context, id int64) error {
	result, err := c.app.services.EntryService.Resume(ctx, id)
	if err != nil {
		return c.errorHandler.Handle("resume entry", err)
	}
	for _, stopped := range result.Stopped {
		c.app.printf("Stopped: %s\n", c.app.renderer.EntrySummary(stopped, c.app.now()))
	}
	c.app.printf("Resumed: %s%s\n", result.Entry.TaskName, c.app.renderer.ProjectSuffix(result.Entry.Project))
	return nil
}

// distinctTasks keeps the most recent entry per task and project pair.
// entries must be newest first.
func distinctTasks(entries []domain.TimeEntry, limit int) []domain.TimeEntry {
	type key struct {
		task       string
		project    string
		hasProject bool
	}
	seen := make(map[key]bool)
	var out []domain.TimeEntry
	for _, e := range entries {
		k := key{task: e.TaskName, project: e.ProjectName(), hasProject: e.HasProject()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}
