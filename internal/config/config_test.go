package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHRONII_DB_DIR", dir)
	t.Setenv(ConfigEnv, "")
	return dir
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "chronii.db", cfg.Database.Filename)
	assert.Equal(t, time.Second, cfg.Clock.TickInterval)
	assert.Equal(t, 50, cfg.History.PageSize)
	assert.False(t, cfg.Validation.SubstituteUntitled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CHRONII_CLOCK_TICK", "500ms")
	t.Setenv("CHRONII_HISTORY_PAGE_SIZE", "20")
	t.Setenv("CHRONII_VALIDATION_SUBSTITUTE_UNTITLED", "true")
	t.Setenv("CHRONII_DB_QUERY_TIMEOUT", "not-a-duration")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Database.Dir)
	assert.Equal(t, filepath.Join(dir, "chronii.db"), cfg.GetDatabasePath())
	assert.Equal(t, 500*time.Millisecond, cfg.Clock.TickInterval)
	assert.Equal(t, 20, cfg.History.PageSize)
	assert.True(t, cfg.Validation.SubstituteUntitled)
	assert.Equal(t, 10*time.Second, cfg.GetQueryTimeout(), "unparseable value keeps the default")
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	content := `
[clock]
tick_interval = "2s"

[history]
page_size = 10
project = "acme"

[display]
time_format = "3:04PM"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
	t.Setenv("CHRONII_HISTORY_PAGE_SIZE", "15")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Clock.TickInterval)
	assert.Equal(t, "acme", cfg.History.Project)
	assert.Equal(t, "3:04PM", cfg.Display.TimeFormat)
	assert.Equal(t, 15, cfg.History.PageSize, "environment wins over the file")
	assert.Equal(t, "running", cfg.Display.RunningStatus, "unset keys keep defaults")
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[validation]\nsubstitute_untitled = true\n"), 0644))
	t.Setenv(ConfigEnv, path)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.True(t, cfg.Validation.SubstituteUntitled)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		content string
	}{
		{"malformed toml", "[clock\ntick_interval = 1"},
		{"bad duration", "[clock]\ntick_interval = \"soon\"\n"},
		{"fails validation", "[clock]\ntick_interval = \"1ms\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(tt.content), 0644))

			_, err := NewLoader().Load()

			assert.Error(t, err)
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	isolate(t)
	tick := 3 * time.Second
	project := "globex"
	verbose := true

	cfg, err := NewLoader().LoadWithOverrides(&ConfigOverrides{
		TickInterval: &tick,
		Project:      &project,
		Verbose:      &verbose,
	})
	require.NoError(t, err)

	assert.Equal(t, tick, cfg.Clock.TickInterval)
	assert.Equal(t, "globex", cfg.History.Project)
	assert.True(t, cfg.Application.Verbose)
}

func TestLoadWithOverrides_Invalid(t *testing.T) {
	isolate(t)
	size := 0

	_, err := NewLoader().LoadWithOverrides(&ConfigOverrides{PageSize: &size})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "history.page_size", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty dir", func(c *Config) { c.Database.Dir = "" }, "database.dir"},
		{"empty filename", func(c *Config) { c.Database.Filename = "" }, "database.filename"},
		{"zero query timeout", func(c *Config) { c.Database.QueryTimeout = 0 }, "database.query_timeout"},
		{"fast tick", func(c *Config) { c.Clock.TickInterval = time.Millisecond }, "clock.tick_interval"},
		{"inverted name lengths", func(c *Config) { c.Validation.TaskNameMaxLength = 0 }, "validation.task_name_max_length"},
		{"empty running label", func(c *Config) { c.Display.RunningStatus = "" }, "display.running_status"},
		{"zero app timeout", func(c *Config) { c.Application.Timeout = 0 }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParseWithFallback(t *testing.T) {
	assert.Equal(t, time.Minute, ParseDurationWithFallback("1m", time.Second))
	assert.Equal(t, time.Second, ParseDurationWithFallback("x", time.Second))
	assert.Equal(t, 7, ParseIntWithFallback("7", 1))
	assert.Equal(t, 1, ParseIntWithFallback("seven", 1))
	assert.True(t, ParseBoolWithFallback("true", false))
	assert.False(t, ParseBoolWithFallback("maybe", false))
	assert.Equal(t, uint32(0700), ParseUint32WithFallback("700", 8, 0755))
	assert.Equal(t, uint32(0755), ParseUint32WithFallback("9", 8, 0755))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), expandHome("~/data"))
	assert.Equal(t, "/var/data", expandHome("/var/data"))
}
