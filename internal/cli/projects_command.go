package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"chronii/internal/domain"
	"chronii/internal/errors"
)

const projectsUsage = "usage: chronii projects [list | add <name> | rename <old> <new> | delete <name> | delete --none]"

// ProjectsCommand manages the project directory
type ProjectsCommand struct {
	app          *App
	errorHandler *ErrorHandler

	None bool
}

// NewProjectsCommand creates a new projects command handler
func NewProjectsCommand(app *App) *ProjectsCommand {
	return &ProjectsCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// BindFlags registers the projects flags
func (c *ProjectsCommand) BindFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.None, "none", false, "With delete: remove every entry that has no project")
}

// Execute runs the projects command
func (c *ProjectsCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.list(ctx)
	}

	switch args[0] {
	case "list", "ls":
		return c.list(ctx)
	case "add":
		if len(args) != 2 {
			return errors.NewInvalidInputError("command", "projects add", projectsUsage)
		}
		return c.add(ctx, args[1])
	case "rename", "mv":
		if len(args) != 3 {
			return errors.NewInvalidInputError("command", "projects rename", projectsUsage)
		}
		return c.rename(ctx, args[1], args[2])
	case "delete", "rm":
		switch {
		case len(args) == 1 && c.None:
			return c.delete(ctx, nil)
		case len(args) == 2 && !c.None:
			return c.delete(ctx, &args[1])
		}
		return errors.NewInvalidInputError("command", "projects delete", projectsUsage)
	default:
		return errors.NewInvalidInputError("command", args[0], projectsUsage)
	}
}

func (c *ProjectsCommand) list(ctx context.Context) error {
	projects, err := c.app.services.ProjectService.List(ctx)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	unassigned, err := c.app.services.ProjectService.Count(ctx, nil)
	if err != nil {
		return c.errorHandler.Handle("count entries", err)
	}

	if len(projects) == 0 && unassigned == 0 {
		c.app.println("No projects found")
		return nil
	}
	for _, p := range projects {
		c.app.printf("%-20s %s\n", p.Name, entryCount(p.EntryCount))
	}
	if unassigned > 0 {
		c.app.printf("%-20s %s\n", "("+domain.ProjectLabel(nil)+")", entryCount(unassigned))
	}
	return nil
}

func (c *ProjectsCommand) add(ctx context.Context, name string) error {
	created, err := c.app.services.ProjectService.Create(ctx, name)
	if err != nil {
		return c.errorHandler.Handle("add project", err)
	}
	c.app.printf("Added project: %s\n", created)
	return nil
}

func (c *ProjectsCommand) rename(ctx context.Context, oldName, newName string) error {
	moved, err := c.app.services.ProjectService.Rename(ctx, oldName, newName)
	if err != nil {
		return c.errorHandler.Handle("rename project", err)
	}
	c.app.printf("Renamed %s to %s (%s)\n", oldName, newName, entryCount(int(moved)))
	return nil
}

func (c *ProjectsCommand) delete(ctx context.Context, name *string) error {
	removed, err := c.app.services.ProjectService.Delete(ctx, name)
	if err != nil {
		return c.errorHandler.Handle("delete project", err)
	}
	c.app.printf("Deleted %s (%s removed)\n", projectDescription(name), entryCount(int(removed)))
	return nil
}

func projectDescription(name *string) string {
	if name == nil {
		return "entries without a project"
	}
	return fmt.Sprintf("project %s", *name)
}
