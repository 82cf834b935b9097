package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
)

// Theme is the color palette plus the metric severity thresholds.
type Theme struct {
	Name string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	Muted         lipgloss.Color

	Accent    lipgloss.Color
	AccentDim lipgloss.Color
	Graph     lipgloss.Color
	RX        lipgloss.Color
	TX        lipgloss.Color

	WarnAt float64
	CritAt float64
}

// Default palette: electric synthwave on a deep void background.
var defaultTheme = Theme{
	Name:          config.ThemeDefault,
	Background:    lipgloss.Color("#0A0A0F"),
	Surface:       lipgloss.Color("#12121A"),
	Border:        lipgloss.Color("#2A2A4A"),
	Healthy:       lipgloss.Color("#39FF14"),
	Warning:       lipgloss.Color("#FFAA00"),
	Critical:      lipgloss.Color("#FF0055"),
	Text:          lipgloss.Color("#FFFFFF"),
	TextSecondary: lipgloss.Color("#B4B4D0"),
	Muted:         lipgloss.Color("#6B6B8D"),
	Accent:        lipgloss.Color("#00FFFF"),
	AccentDim:     lipgloss.Color("#BF40FF"),
	Graph:         lipgloss.Color("#00FFFF"),
	RX:            lipgloss.Color("#39FF14"),
	TX:            lipgloss.Color("#FF2E97"),
}

// Synthwave leans on pink and purple instead of cyan.
var synthwaveTheme = Theme{
	Name:          config.ThemeSynthwave,
	Background:    lipgloss.Color("#1A0B2E"),
	Surface:       lipgloss.Color("#241341"),
	Border:        lipgloss.Color("#5A2A82"),
	Healthy:       lipgloss.Color("#72F1B8"),
	Warning:       lipgloss.Color("#FEDE5D"),
	Critical:      lipgloss.Color("#FE4450"),
	Text:          lipgloss.Color("#F8F8F2"),
	TextSecondary: lipgloss.Color("#C8B6E2"),
	Muted:         lipgloss.Color("#7E6A9E"),
	Accent:        lipgloss.Color("#FF2E97"),
	AccentDim:     lipgloss.Color("#BF40FF"),
	Graph:         lipgloss.Color("#FF7EDB"),
	RX:            lipgloss.Color("#36F9F6"),
	TX:            lipgloss.Color("#FF7EDB"),
}

// Mono uses ANSI grays only, for dumb terminals and NO_COLOR.
var monoTheme = Theme{
	Name:          config.ThemeMono,
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	Border:        lipgloss.Color("8"),
	Healthy:       lipgloss.Color("7"),
	Warning:       lipgloss.Color("15"),
	Critical:      lipgloss.Color("15"),
	Text:          lipgloss.Color("15"),
	TextSecondary: lipgloss.Color("7"),
	Muted:         lipgloss.Color("8"),
	Accent:        lipgloss.Color("15"),
	AccentDim:     lipgloss.Color("7"),
	Graph:         lipgloss.Color("7"),
	RX:            lipgloss.Color("7"),
	TX:            lipgloss.Color("15"),
}

// ResolveTheme picks the palette for name. A terminal without color support
// always gets the mono palette.
func ResolveTheme(cfg config.ThemeConfig, profile termenv.Profile) Theme {
	var t Theme
	switch cfg.Name {
	case config.ThemeSynthwave:
		t = synthwaveTheme
	case config.ThemeMono:
		t = monoTheme
	default:
		t = defaultTheme
	}
	if profile == termenv.Ascii {
		t = monoTheme
	}

	t.WarnAt, t.CritAt = 70, 90
	if cfg.Warning > 0 && cfg.Critical > cfg.Warning {
		t.WarnAt, t.CritAt = float64(cfg.Warning), float64(cfg.Critical)
	}
	return t
}

// MetricColor returns the severity color for a percentage.
func (t Theme) MetricColor(pct float64) lipgloss.Color {
	switch {
	case pct >= t.CritAt:
		return t.Critical
	case pct >= t.WarnAt:
		return t.Warning
	default:
		return t.Healthy
	}
}

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	title     lipgloss.Style
	border    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	good      lipgloss.Style
	warn      lipgloss.Style
	bad       lipgloss.Style
	selected  lipgloss.Style
	tabActive lipgloss.Style
	tab       lipgloss.Style
	status    lipgloss.Style
	header    lipgloss.Style

	helpBox   lipgloss.Style
	helpTitle lipgloss.Style
	helpKey   lipgloss.Style
	helpDesc  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:     lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		border:    lipgloss.NewStyle().Foreground(t.Border),
		label:     lipgloss.NewStyle().Foreground(t.TextSecondary),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		muted:     lipgloss.NewStyle().Foreground(t.Muted),
		accent:    lipgloss.NewStyle().Foreground(t.Accent),
		good:      lipgloss.NewStyle().Foreground(t.Healthy),
		warn:      lipgloss.NewStyle().Foreground(t.Warning),
		bad:       lipgloss.NewStyle().Foreground(t.Critical),
		selected:  lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true),
		tabActive: lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true).Padding(0, 1),
		tab:       lipgloss.NewStyle().Foreground(t.TextSecondary).Padding(0, 1),
		status:    lipgloss.NewStyle().Foreground(t.TextSecondary).Background(t.Surface),
		header:    lipgloss.NewStyle().Foreground(t.Muted).Bold(true),

		helpBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Background(t.Surface).
			Padding(1, 2),
		helpTitle: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		helpKey:   lipgloss.NewStyle().Foreground(t.Text).Bold(true).Width(14),
		helpDesc:  lipgloss.NewStyle().Foreground(t.TextSecondary),
	}
}

// Glyphs for health markers.
const (
	glyphOnline  = "●"
	glyphOffline = "○"
	glyphWarn    = "⚠"
	glyphFrozen  = "❄"
	glyphLoading = "◐"
)

// loadingFrames spin while an image is being fetched.
var loadingFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}
