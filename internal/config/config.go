package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration options for the chronii application
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Clock       ClockConfig       `toml:"clock"`
	History     HistoryConfig     `toml:"history"`
	Validation  ValidationConfig  `toml:"validation"`
	Display     DisplayConfig     `toml:"display"`
	Application ApplicationConfig `toml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Dir            string        `toml:"dir" env:"CHRONII_DB_DIR"`
	Filename       string        `toml:"filename" env:"CHRONII_DB_FILENAME"`
	QueryTimeout   time.Duration `toml:"query_timeout" env:"CHRONII_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `toml:"write_timeout" env:"CHRONII_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `toml:"dir_permissions" env:"CHRONII_DB_DIR_PERMISSIONS"`
}

// ClockConfig holds the live clock cadence
type ClockConfig struct {
	TickInterval time.Duration `toml:"tick_interval" env:"CHRONII_CLOCK_TICK"`
}

// HistoryConfig holds history listing defaults
type HistoryConfig struct {
	PageSize int    `toml:"page_size" env:"CHRONII_HISTORY_PAGE_SIZE"`
	Project  string `toml:"project" env:"CHRONII_HISTORY_PROJECT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TaskNameMinLength    int  `toml:"task_name_min_length" env:"CHRONII_VALIDATION_TASK_NAME_MIN"`
	TaskNameMaxLength    int  `toml:"task_name_max_length" env:"CHRONII_VALIDATION_TASK_NAME_MAX"`
	ProjectNameMaxLength int  `toml:"project_name_max_length" env:"CHRONII_VALIDATION_PROJECT_NAME_MAX"`
	SubstituteUntitled   bool `toml:"substitute_untitled" env:"CHRONII_VALIDATION_SUBSTITUTE_UNTITLED"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat    string `toml:"time_format" env:"CHRONII_DISPLAY_TIME_FORMAT"`
	RunningStatus string `toml:"running_status" env:"CHRONII_DISPLAY_RUNNING_STATUS"`
	Color         bool   `toml:"color" env:"CHRONII_DISPLAY_COLOR"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `toml:"timeout" env:"CHRONII_APP_TIMEOUT"`
	Verbose bool          `toml:"verbose" env:"CHRONII_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".chronii")

	return &Config{
		Database: DatabaseConfig{
			Dir:            defaultDBDir,
			Filename:       "chronii.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Clock: ClockConfig{
			TickInterval: time.Second,
		},
		History: HistoryConfig{
			PageSize: 50,
		},
		Validation: ValidationConfig{
			TaskNameMinLength:    1,
			TaskNameMaxLength:    255,
			ProjectNameMaxLength: 100,
			SubstituteUntitled:   false,
		},
		Display: DisplayConfig{
			TimeFormat:    "15:04",
			RunningStatus: "running",
			Color:         true,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromFile merges a TOML file over the current values. A missing file is not an error.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return file.applyTo(c)
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("CHRONII_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("CHRONII_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("CHRONII_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("CHRONII_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("CHRONII_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Clock configuration
	if tick := os.Getenv("CHRONII_CLOCK_TICK"); tick != "" {
		c.Clock.TickInterval = ParseDurationWithFallback(tick, c.Clock.TickInterval)
	}

	// History configuration
	if size := os.Getenv("CHRONII_HISTORY_PAGE_SIZE"); size != "" {
		c.History.PageSize = ParseIntWithFallback(size, c.History.PageSize)
	}
	if project := os.Getenv("CHRONII_HISTORY_PROJECT"); project != "" {
		c.History.Project = project
	}

	// Validation configuration
	if minLen := os.Getenv("CHRONII_VALIDATION_TASK_NAME_MIN"); minLen != "" {
		c.Validation.TaskNameMinLength = ParseIntWithFallback(minLen, c.Validation.TaskNameMinLength)
	}
	if maxLen := os.Getenv("CHRONII_VALIDATION_TASK_NAME_MAX"); maxLen != "" {
		c.Validation.TaskNameMaxLength = ParseIntWithFallback(maxLen, c.Validation.TaskNameMaxLength)
	}
	if maxLen := os.Getenv("CHRONII_VALIDATION_PROJECT_NAME_MAX"); maxLen != "" {
		c.Validation.ProjectNameMaxLength = ParseIntWithFallback(maxLen, c.Validation.ProjectNameMaxLength)
	}
	if sub := os.Getenv("CHRONII_VALIDATION_SUBSTITUTE_UNTITLED"); sub != "" {
		c.Validation.SubstituteUntitled = ParseBoolWithFallback(sub, c.Validation.SubstituteUntitled)
	}

	// Display configuration
	if format := os.Getenv("CHRONII_DISPLAY_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if status := os.Getenv("CHRONII_DISPLAY_RUNNING_STATUS"); status != "" {
		c.Display.RunningStatus = status
	}
	if color := os.Getenv("CHRONII_DISPLAY_COLOR"); color != "" {
		c.Display.Color = ParseBoolWithFallback(color, c.Display.Color)
	}

	// Application configuration
	if timeout := os.Getenv("CHRONII_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("CHRONII_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
	}
	if c.Database.Filename == "" {
		return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Clock.TickInterval < 100*time.Millisecond {
		return &ConfigError{Field: "clock.tick_interval", Message: "tick interval must be at least 100ms"}
	}

	if c.History.PageSize < 1 {
		return &ConfigError{Field: "history.page_size", Message: "page size must be at least 1"}
	}

	if c.Validation.TaskNameMinLength < 1 {
		return &ConfigError{Field: "validation.task_name_min_length", Message: "task name minimum length must be at least 1"}
	}
	if c.Validation.TaskNameMaxLength < c.Validation.TaskNameMinLength {
		return &ConfigError{Field: "validation.task_name_max_length", Message: "task name maximum length must be greater than minimum length"}
	}
	if c.Validation.ProjectNameMaxLength < 1 {
		return &ConfigError{Field: "validation.project_name_max_length", Message: "project name maximum length must be at least 1"}
	}

	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.RunningStatus == "" {
		return &ConfigError{Field: "display.running_status", Message: "running status text cannot be empty"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
