package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells hold a 2x4 dot matrix; bit layout per Unicode U+2800.
const brailleBase = '⠀'

var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// scaleMax returns the upper bound for plotting data: 100 for percentages,
// otherwise the largest sample (at least 1).
func scaleMax(data []float64, percent bool) float64 {
	if percent {
		return 100
	}
	m := 1.0
	for _, v := range data {
		if v > m {
			m = v
		}
	}
	return m
}

func level(v, maxVal float64, levels int) int {
	if maxVal <= 0 || v <= 0 {
		return 0
	}
	l := int(v / maxVal * float64(levels))
	if l > levels {
		return levels
	}
	return l
}

// sparkline renders the newest width samples as block characters,
// right-aligned. Older samples are dropped rather than resampled so one cell
// is always one tick.
func sparkline(data []float64, width int, percent bool, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}
	maxVal := scaleMax(data, percent)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(data)))
	for _, v := range data {
		idx := level(v, maxVal, len(sparkBlocks)-1)
		b.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Render(b.String())
}

// brailleGraph renders a height-row graph with two samples per cell,
// right-aligned, colored by the theme's severity for percentages.
func brailleGraph(data []float64, width, height int, percent bool, color lipgloss.Color, t Theme) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	points := width * 2
	if len(data) > points {
		data = data[len(data)-points:]
	}
	maxVal := scaleMax(data, percent)
	totalDots := height * 4
	offset := points - len(data)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}
	colMax := make([]float64, width)

	for i, v := range data {
		col := (i + offset) / 2
		sub := (i + offset) % 2
		if v > colMax[col] {
			colMax[col] = v
		}
		dots := level(v, maxVal, totalDots)
		for d := 0; d < dots; d++ {
			row := height - 1 - d/4
			grid[row][col] |= rune(1) << brailleDots[3-d%4][sub]
		}
	}

	lines := make([]string, height)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			fg := color
			if percent {
				fg = t.MetricColor(colMax[c])
			}
			b.WriteString(lipgloss.NewStyle().Foreground(fg).Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return lines
}

// gradientBar renders a horizontal bar whose filled cells take the severity
// color of their position.
func gradientBar(width int, pct float64, t Theme) string {
	if width < 1 {
		return ""
	}
	pct = min(max(pct, 0), 100)
	filled := int(pct / 100 * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i+1) / float64(width) * 100
			b.WriteString(lipgloss.NewStyle().Foreground(t.MetricColor(pos)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(t.Muted).Render("░"))
		}
	}
	return b.String()
}
