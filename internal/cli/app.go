package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tj/go-naturaldate"

	"chronii/internal/config"
	"chronii/internal/errors"
	"chronii/internal/repository/sqlite"
	"chronii/internal/services"
	"chronii/internal/validation"
)

// App holds what the command handlers share. It is created empty and opened
// once configuration and flags have been resolved.
type App struct {
	clock clockwork.Clock
	in    io.Reader
	out   io.Writer

	config   *config.Config
	repo     sqlite.Repository
	services *services.ServiceContainer
	renderer *Renderer
	registry *CommandRegistry
}

// NewApp creates a new CLI application instance
func NewApp(clock clockwork.Clock, in io.Reader, out io.Writer) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	app := &App{
		clock: clock,
		in:    in,
		out:   out,
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// Open wires the services over an opened repository
func (a *App) Open(cfg *config.Config, repo sqlite.Repository) {
	validator := validation.NewEntryValidatorWith(validation.NewValidatorWithConfig(cfg))
	a.config = cfg
	a.repo = repo
	a.services = services.NewServiceContainer(repo, a.clock, validator)
	a.renderer = NewRenderer(cfg.Display)
}

// Close releases the repository
func (a *App) Close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

func (a *App) now() time.Time {
	return a.clock.Now()
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// parseID parses an entry id argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError("id", arg, "entry id must be a positive number")
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// clockLayouts are tried before natural language parsing
var clockLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseWhen parses a point in time relative to now. It accepts RFC 3339,
// "2006-01-02 15:04", a bare "15:04" (today) and natural phrases such as
// "yesterday 9am" or "20 minutes ago".
func parseWhen(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.NewInvalidInputError("time", value, "time cannot be empty")
	}
	if value == "now" {
		return now, nil
	}

	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, value, now.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("15:04", value, now.Location()); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}

	t, err := naturaldate.Parse(value, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil || t.Equal(now) {
		return time.Time{}, errors.NewInvalidInputError("time", value, "unrecognised time, try \"15:04\", \"2006-01-02 15:04\" or \"yesterday 9am\"")
	}
	return t, nil
}
