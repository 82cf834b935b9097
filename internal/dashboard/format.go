package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func formatBytes(n uint64) string {
	return humanize.IBytes(n)
}

func formatRate(bytesPerSec float64) string {
	if bytesPerSec < 0 {
		bytesPerSec = 0
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

func formatUSD(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

func formatTokens(n int64) string {
	if n < 10_000 {
		return humanize.Comma(n)
	}
	v, unit := humanize.ComputeSI(float64(n))
	return fmt.Sprintf("%.1f%s", v, strings.ToUpper(unit))
}

// formatAgo is "just now", "42 seconds ago", "3 minutes ago" and so on.
func formatAgo(then, now time.Time) string {
	if then.IsZero() {
		return "never"
	}
	if now.Sub(then) < time.Second {
		return "just now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}

// formatUptime renders a duration as "3d 4h 12m".
func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// formatDuration renders a countdown like "1h 05m" or "42s".
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// fit pads or truncates s to exactly width visible cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w > width {
		s = lipgloss.NewStyle().MaxWidth(width).Render(s)
		w = lipgloss.Width(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// truncate shortens plain text to width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// kv renders one "label value" row padded to width.
func kv(st styles, label, value string, width int) string {
	return fit(st.label.Render(label)+" "+st.value.Render(value), width)
}
