package doctor

import (
	"context"
	stderrors "errors"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

// ConfigFileCheck verifies that a config file exists. Running on defaults is
// a warning; --fix writes the defaults to the standard location.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return failFrom(c.Name(), err, "Check the --config path")
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using built-in defaults",
			Suggestion: "Run 'pulse init' to create " + config.DefaultConfigPath(),
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// Fix writes the default config when none exists. An explicit --config path
// is never created.
func (c *ConfigFileCheck) Fix() error {
	if c.ConfigPath != "" {
		return nil
	}
	path, err := config.Find("")
	if err != nil || path != "" {
		return err
	}
	return config.Write(config.DefaultConfigPath(), config.DefaultConfig())
}

// ConfigSchemaCheck verifies the config file parses and validates.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return failFrom(c.Name(), err, "Check the TOML syntax in your config file")
	}

	if err := config.Validate(cfg); err != nil {
		return failFrom(c.Name(), err, "Fix the values in your config.toml")
	}

	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Defaults valid",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Schema valid",
	}
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
}

// failFrom turns a structured error into a failing result, keeping its own
// suggestion when it has one.
func failFrom(name string, err error, fallback string) CheckResult {
	res := CheckResult{
		Name:       name,
		Status:     StatusFail,
		Message:    errors.Summary(err),
		Suggestion: fallback,
	}
	var e *errors.Error
	if stderrors.As(err, &e) && e.Suggestion != "" {
		res.Suggestion = e.Suggestion
	}
	return res
}
