package config

import (
	"os"
	"path/filepath"
	"time"
)

// ConfigEnv names the environment variable that points at the config file.
const ConfigEnv = "CHRONII_CONFIG"

// fileConfig mirrors Config for TOML decoding. Every field is optional so a
// partial file only overrides what it mentions; durations are written as
// strings ("10s", "500ms").
type fileConfig struct {
	Database struct {
		Dir            *string `toml:"dir"`
		Filename       *string `toml:"filename"`
		QueryTimeout   *string `toml:"query_timeout"`
		WriteTimeout   *string `toml:"write_timeout"`
		DirPermissions *uint32 `toml:"dir_permissions"`
	} `toml:"database"`
	Clock struct {
		TickInterval *string `toml:"tick_interval"`
	} `toml:"clock"`
	History struct {
		PageSize *int    `toml:"page_size"`
		Project  *string `toml:"project"`
	} `toml:"history"`
	Validation struct {
		TaskNameMinLength    *int  `toml:"task_name_min_length"`
		TaskNameMaxLength    *int  `toml:"task_name_max_length"`
		ProjectNameMaxLength *int  `toml:"project_name_max_length"`
		SubstituteUntitled   *bool `toml:"substitute_untitled"`
	} `toml:"validation"`
	Display struct {
		TimeFormat    *string `toml:"time_format"`
		RunningStatus *string `toml:"running_status"`
		Color         *bool   `toml:"color"`
	} `toml:"display"`
	Application struct {
		Timeout *string `toml:"timeout"`
		Verbose *bool   `toml:"verbose"`
	} `toml:"application"`
}

func (f *fileConfig) applyTo(c *Config) error {
	if f.Database.Dir != nil {
		c.Database.Dir = expandHome(*f.Database.Dir)
	}
	if f.Database.Filename != nil {
		c.Database.Filename = *f.Database.Filename
	}
	if err := setDuration(&c.Database.QueryTimeout, f.Database.QueryTimeout, "database.query_timeout"); err != nil {
		return err
	}
	if err := setDuration(&c.Database.WriteTimeout, f.Database.WriteTimeout, "database.write_timeout"); err != nil {
		return err
	}
	if f.Database.DirPermissions != nil {
		c.Database.DirPermissions = *f.Database.DirPermissions
	}

	if err := setDuration(&c.Clock.TickInterval, f.Clock.TickInterval, "clock.tick_interval"); err != nil {
		return err
	}

	if f.History.PageSize != nil {
		c.History.PageSize = *f.History.PageSize
	}
	if f.History.Project != nil {
		c.History.Project = *f.History.Project
	}

	if f.Validation.TaskNameMinLength != nil {
		c.Validation.TaskNameMinLength = *f.Validation.TaskNameMinLength
	}
	if f.Validation.TaskNameMaxLength != nil {
		c.Validation.TaskNameMaxLength = *f.Validation.TaskNameMaxLength
	}
	if f.Validation.ProjectNameMaxLength != nil {
		c.Validation.ProjectNameMaxLength = *f.Validation.ProjectNameMaxLength
	}
	if f.Validation.SubstituteUntitled != nil {
		c.Validation.SubstituteUntitled = *f.Validation.SubstituteUntitled
	}

	if f.Display.TimeFormat != nil {
		c.Display.TimeFormat = *f.Display.TimeFormat
	}
	if f.Display.RunningStatus != nil {
		c.Display.RunningStatus = *f.Display.RunningStatus
	}
	if f.Display.Color != nil {
		c.Display.Color = *f.Display.Color
	}

	if err := setDuration(&c.Application.Timeout, f.Application.Timeout, "application.timeout"); err != nil {
		return err
	}
	if f.Application.Verbose != nil {
		c.Application.Verbose = *f.Application.Verbose
	}
	return nil
}

func setDuration(dst *time.Duration, raw *string, field string) error {
	if raw == nil {
		return nil
	}
	d, err := time.ParseDuration(*raw)
	if err != nil {
		return &ConfigError{Field: field, Message: "invalid duration " + *raw}
	}
	*dst = d
	return nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// FilePath returns the config file location: $CHRONII_CONFIG when set,
// otherwise config.toml next to the database.
func (c *Config) FilePath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	return filepath.Join(c.Database.Dir, "config.toml")
}
