package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"chronii/internal/config"
	"chronii/internal/logging"
	"chronii/internal/repository/sqlite"
)

// Dependencies are the process-level collaborators of the CLI
type Dependencies struct {
	Clock          clockwork.Clock
	In             io.Reader
	Out            io.Writer
	Err            io.Writer
	LoadConfig     func(overrides *config.ConfigOverrides) (*config.Config, error)
	OpenRepository func(cfg *config.Config) (sqlite.Repository, error)
}

// DefaultDependencies wires the real clock, standard streams, the config
// cascade and the on-disk repository
func DefaultDependencies() Dependencies {
	return Dependencies{
		Clock: clockwork.NewRealClock(),
		In:    os.Stdin,
		Out:   os.Stdout,
		Err:   os.Stderr,
		LoadConfig: func(overrides *config.ConfigOverrides) (*config.Config, error) {
			return config.NewLoader().LoadWithOverrides(overrides)
		},
		OpenRepository: config.CreateRepository,
	}
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	app    *App
	deps   Dependencies
	config *config.Config
}

// subcommand describes how a registered command appears in cobra
type subcommand struct {
	name        string
	use         string
	aliases     []string
	short       string
	long        string
	args        cobra.PositionalArgs
	interactive bool
}

var subcommands = []subcommand{
	{
		name:  "start",
		use:   "start <task name>",
		short: "Start a new entry",
		long: `Start tracking time for a task. Any running entry is stopped first.

Examples:
  chronii start "Write report"
  chronii start "Standup" --project acme`,
		args: cobra.MinimumNArgs(1),
	},
	{
		name:  "stop",
		use:   "stop [id]",
		short: "Stop the running entry",
		long:  "Stop the entry with the given id, or every running entry when no id is given.",
		args:  cobra.MaximumNArgs(1),
	},
	{
		name:  "edit",
		use:   "edit <id>",
		short: "Edit an entry",
		long: `Change an entry's task, project, start, end or logged flag. Only the
flags you pass are changed, and the edit is rejected as a whole when the
result would be invalid (for example an end before the start).

Times accept "15:04", "2006-01-02 15:04", RFC 3339 or phrases such as
"yesterday 9am" and "20 minutes ago".

Examples:
  chronii edit 12 --start 09:00 --end 10:30
  chronii edit 12 --project acme
  chronii edit 12 --reopen`,
		args: cobra.ExactArgs(1),
	},
	{
		name:        "delete",
		use:         "delete [id...]",
		aliases:     []string{"rm"},
		short:       "Delete entries",
		long:        "Delete the given entries. Without ids, choose one of the recent entries interactively.",
		interactive: true,
	},
	{
		name:  "log",
		use:   "log <id...>",
		short: "Mark entries as logged",
		long:  "Mark entries as copied to an external timesheet. Use --undo to clear the flag.",
		args:  cobra.MinimumNArgs(1),
	},
	{
		name:        "resume",
		use:         "resume [id]",
		short:       "Start a new entry from an earlier one",
		long:        "Start a new entry with the task and project of an earlier entry. Without an id, choose a recent task interactively.",
		args:        cobra.MaximumNArgs(1),
		interactive: true,
	},
	{
		name:    "list",
		use:     "list [period]",
		aliases: []string{"history", "ls"},
		short:   "Show the history grouped by week and day",
		long: `Show entries grouped by week and day with totals. Weeks start on Sunday.

Period shorthand: 30m, 2h, 1d, 2w, 3mo, 1y

Examples:
  chronii list
  chronii list 2w --project acme
  chronii list --all`,
		args: cobra.MaximumNArgs(1),
	},
	{
		name:    "status",
		use:     "status",
		aliases: []string{"current"},
		short:   "Show the running entry and today, week and month totals",
		args:    cobra.NoArgs,
	},
	{
		name:  "summary",
		use:   "summary [period]",
		short: "Show totals per project over a period (default 1w)",
		args:  cobra.MaximumNArgs(1),
	},
	{
		name:  "projects",
		use:   "projects [list | add <name> | rename <old> <new> | delete <name>]",
		short: "Manage projects",
	},
	{
		name:  "export",
		use:   "export",
		short: "Export entries as CSV, JSON, YAML or iCalendar",
		long: `Export entries oldest first.

Examples:
  chronii export > entries.csv
  chronii export --format ics --since 1mo -o work.ics`,
		args: cobra.NoArgs,
	},
	{
		name:        "watch",
		use:         "watch",
		short:       "Live view of the history with running timers",
		args:        cobra.NoArgs,
		interactive: true,
	},
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(deps Dependencies) *RootCommand {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	if deps.In == nil {
		deps.In = os.Stdin
	}

	root := &RootCommand{
		app:  NewApp(deps.Clock, deps.In, deps.Out),
		deps: deps,
	}

	root.cmd = &cobra.Command{
		Use:   "chronii",
		Short: "A command-line time tracker",
		Long: `chronii tracks time spent on tasks and shows it grouped by week and day,
with totals that keep counting while an entry runs.

EXAMPLES:
  chronii start "Write report" -p acme     # Start tracking (stops anything running)
  chronii stop                             # Stop the running entry
  chronii list                             # History grouped by week and day
  chronii watch                            # Live view with running timers
  chronii edit 12 --end 17:30              # Fix an entry
  chronii summary 1mo                      # Totals per project
  chronii export --format ics > work.ics   # Export to a calendar

CONFIGURATION:
  Priority: command-line flags > CHRONII_* environment variables > config file > defaults
  The config file is $CHRONII_CONFIG, or config.toml in the database directory.

    CHRONII_DB_DIR                         Database directory (default: ~/.chronii)
    CHRONII_DB_FILENAME                    Database filename (default: chronii.db)
    CHRONII_CLOCK_TICK                     Live clock interval (default: 1s)
    CHRONII_HISTORY_PAGE_SIZE              Entries loaded by list and watch (default: 50)
    CHRONII_DISPLAY_TIME_FORMAT            Time of day layout (default: 15:04)
    CHRONII_APP_VERBOSE                    Enable verbose output (default: false)
    CHRONII_DEBUG                          Enable debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}
	root.cmd.SetIn(deps.In)
	root.cmd.SetOut(deps.Out)
	root.cmd.SetErr(deps.Err)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.cmd.Execute()
}

// ExecuteContext runs the root command with a parent context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, mainly for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// Database configuration
	flags.String("db-dir", "", "Database directory (overrides CHRONII_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides CHRONII_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides CHRONII_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides CHRONII_DB_WRITE_TIMEOUT)")

	// Clock and history
	flags.Duration("tick-interval", 0, "Live clock interval (overrides CHRONII_CLOCK_TICK)")
	flags.Int("page-size", 0, "Entries loaded by list and watch (overrides CHRONII_HISTORY_PAGE_SIZE)")
	flags.String("default-project", "", "Project filter used when none is given (overrides CHRONII_HISTORY_PROJECT)")

	// Validation configuration
	flags.Int("task-name-min-length", 0, "Minimum task name length (overrides CHRONII_VALIDATION_TASK_NAME_MIN)")
	flags.Int("task-name-max-length", 0, "Maximum task name length (overrides CHRONII_VALIDATION_TASK_NAME_MAX)")
	flags.Bool("substitute-untitled", false, "Store empty task names as \"(untitled)\" instead of rejecting them")

	// Display configuration
	flags.String("time-format", "", "Time of day layout (overrides CHRONII_DISPLAY_TIME_FORMAT)")
	flags.String("running-status", "", "Running status text (overrides CHRONII_DISPLAY_RUNNING_STATUS)")
	flags.Bool("no-color", false, "Disable colour output (overrides CHRONII_DISPLAY_COLOR)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Application timeout (overrides CHRONII_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides CHRONII_APP_VERBOSE)")
}

// addSubcommands adds every registered command to the root command
func (r *RootCommand) addSubcommands() {
	for _, sc := range subcommands {
		handler, ok := r.app.registry.Lookup(sc.name)
		if !ok {
			panic(fmt.Sprintf("cli: no handler registered for %q", sc.name))
		}

		cmd := &cobra.Command{
			Use:     sc.use,
			Aliases: sc.aliases,
			Short:   sc.short,
			Long:    sc.long,
			Args:    sc.args,
			RunE:    r.run(sc.name, sc.interactive),
		}
		if binder, ok := handler.(FlagBinder); ok {
			binder.BindFlags(cmd.Flags())
		}
		r.cmd.AddCommand(cmd)
	}
}

// run opens storage, executes the named command and closes storage again.
// Interactive commands are not bound by the application timeout.
func (r *RootCommand) run(name string, interactive bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo, err := r.deps.OpenRepository(r.config)
		if err != nil {
			return NewErrorHandler().Handle("open storage", err)
		}
		r.app.Open(r.config, repo)
		defer func() {
			if err := r.app.Close(); err != nil {
				logging.Logger().Warn("closing storage failed", "error", err)
			}
		}()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if !interactive {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
			defer cancel()
		}
		return r.app.registry.Execute(ctx, name, args)
	}
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig resolves the configuration cascade and sets up logging
func (r *RootCommand) loadConfig() error {
	cfg, err := r.deps.LoadConfig(r.getConfigOverrides())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	r.config = cfg
	logging.Setup(r.deps.Err, cfg.Application.Verbose)
	return nil
}

// getConfigOverrides collects the global flags that were set explicitly
func (r *RootCommand) getConfigOverrides() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("db-dir") {
		v, _ := flags.GetString("db-dir")
		overrides.DBDir = &v
	}
	if flags.Changed("db-filename") {
		v, _ := flags.GetString("db-filename")
		overrides.DBFilename = &v
	}
	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		overrides.DBWriteTimeout = &v
	}

	if flags.Changed("tick-interval") {
		v, _ := flags.GetDuration("tick-interval")
		overrides.TickInterval = &v
	}
	if flags.Changed("page-size") {
		v, _ := flags.GetInt("page-size")
		overrides.PageSize = &v
	}
	if flags.Changed("default-project") {
		v, _ := flags.GetString("default-project")
		overrides.Project = &v
	}

	if flags.Changed("task-name-min-length") {
		v, _ := flags.GetInt("task-name-min-length")
		overrides.TaskNameMinLength = &v
	}
	if flags.Changed("task-name-max-length") {
		v, _ := flags.GetInt("task-name-max-length")
		overrides.TaskNameMaxLength = &v
	}
	if flags.Changed("substitute-untitled") {
		v, _ := flags.GetBool("substitute-untitled")
		overrides.SubstituteUntitled = &v
	}

	if flags.Changed("time-format") {
		v, _ := flags.GetString("time-format")
		overrides.TimeFormat = &v
	}
	if flags.Changed("running-status") {
		v, _ := flags.GetString("running-status")
		overrides.RunningStatus = &v
	}
	if flags.Changed("no-color") {
		v, _ := flags.GetBool("no-color")
		color := !v
		overrides.Color = &color
	}

	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	return overrides
}
