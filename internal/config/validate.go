package config

import (
	"fmt"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

var validProtocols = map[string]bool{
	ProtocolAuto:       true,
	ProtocolHalfblocks: true,
	ProtocolSixel:      true,
	ProtocolKitty:      true,
	ProtocolITerm2:     true,
}

var validThemes = map[string]bool{
	ThemeDefault:   true,
	ThemeSynthwave: true,
	ThemeMono:      true,
}

// Validate checks the config for errors and returns structured error messages.
// An out-of-range refresh is not an error; it is clamped on load.
func Validate(cfg *Config) error {
	if cfg.General.Refresh < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Refresh interval can't be negative (got %s)", cfg.General.Refresh),
			"Use a duration like \"1s\" or \"500ms\"")
	}

	if !validProtocols[cfg.Image.Protocol] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown image protocol '%s'", cfg.Image.Protocol),
			"Use one of: auto, halfblocks, sixel, kitty, iterm2")
	}

	if !validThemes[cfg.Theme.Name] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown theme '%s'", cfg.Theme.Name),
			"Use one of: default, synthwave, mono")
	}

	return validateThresholds(cfg.Theme.Warning, cfg.Theme.Critical)
}

func validateThresholds(warning, critical int) error {
	if warning < 0 || warning > 100 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("theme.warning should be 0-100, got %d", warning),
			"Percentages go from 0 to 100")
	}
	if critical < 0 || critical > 100 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("theme.critical should be 0-100, got %d", critical),
			"Percentages go from 0 to 100")
	}
	if warning >= critical {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("theme.warning (%d) needs to be lower than theme.critical (%d)", warning, critical),
			"Warning should trigger before critical")
	}
	return nil
}
