package doctor

import (
	"context"
	"fmt"

	"github.com/muesli/termenv"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
)

// TerminalCheck verifies pulse is attached to a terminal and reports its
// color support.
type TerminalCheck struct {
	IsTerminal bool
	Profile    termenv.Profile
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run(context.Context) CheckResult {
	if !c.IsTerminal {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "stdout is not a terminal",
			Suggestion: "Run pulse directly in a terminal, not through a pipe",
		}
	}

	colors := profileName(c.Profile)
	if c.Profile == termenv.Ascii {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Terminal reports no color support; the mono theme will be used",
			Suggestion: "Check TERM and NO_COLOR",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Terminal colors: " + colors,
	}
}

func (c *TerminalCheck) Fix() error {
	return nil
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "truecolor"
	case termenv.ANSI256:
		return "256"
	case termenv.ANSI:
		return "16"
	default:
		return "none"
	}
}

// ImageProtocolCheck reports which image protocol negotiation picks and why.
type ImageProtocolCheck struct {
	Probe   imaging.Probe
	Enabled bool
}

func (c *ImageProtocolCheck) Name() string     { return "image_protocol" }
func (c *ImageProtocolCheck) Category() string { return CategoryTerminal }

func (c *ImageProtocolCheck) Run(context.Context) CheckResult {
	if _, _, err := imaging.ParseProtocol(c.Probe.Override); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid image.protocol: %v", err),
			Suggestion: "Use one of: auto, halfblocks, sixel, kitty, iterm2",
		}
	}

	proto, source := imaging.Negotiate(c.Probe)
	msg := fmt.Sprintf("Image protocol: %s (from %s)", proto, source)
	if !c.Enabled {
		msg += ", image panel disabled"
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

func (c *ImageProtocolCheck) Fix() error {
	return nil
}
