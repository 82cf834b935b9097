package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/layout"
)

// block is rendered content pinned to a rect. Raw blocks carry terminal
// graphics escapes and are not measured or truncated.
type block struct {
	rect  layout.Rect
	lines []string
	raw   bool
}

func (m Model) render() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	plan := m.plan()
	var blocks []block
	if !plan.TabBar.Empty() {
		blocks = append(blocks, block{rect: plan.TabBar, lines: []string{m.renderTabBar(plan.TabBar.W)}})
	}
	for _, pl := range plan.Panels {
		lines, raw := m.renderPanel(pl.Panel, pl.Rect)
		blocks = append(blocks, block{rect: pl.Rect, lines: lines, raw: raw})
	}
	blocks = append(blocks, block{rect: plan.Status, lines: []string{m.renderStatusBar(plan.Status.W)}})

	return compose(m.width, m.height, blocks)
}

// compose paints non-overlapping blocks onto a width x height screen.
func compose(width, height int, blocks []block) string {
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].rect.X < blocks[j].rect.X })

	rows := make([]string, height)
	var b strings.Builder
	for y := 0; y < height; y++ {
		b.Reset()
		x := 0
		for _, bl := range blocks {
			r := bl.rect
			if y < r.Y || y >= r.Y+r.H {
				continue
			}
			if r.X > x {
				b.WriteString(strings.Repeat(" ", r.X-x))
			}
			var line string
			if i := y - r.Y; i < len(bl.lines) {
				line = bl.lines[i]
			}
			if bl.raw {
				b.WriteString(line)
			} else {
				b.WriteString(fit(line, r.W))
			}
			x = r.X + r.W
		}
		if x < width {
			b.WriteString(strings.Repeat(" ", width-x))
		}
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

func tabLabel(i int, t layout.Tab) string {
	return fmt.Sprintf("%d %s", i+1, t)
}

func (m Model) renderTabBar(width int) string {
	var b strings.Builder
	for i, t := range layout.Tabs {
		label := tabLabel(i, t)
		if t == m.tab {
			b.WriteString(m.st.tabActive.Render(label))
		} else {
			b.WriteString(m.st.tab.Render(label))
		}
	}
	title := m.st.title.Render("prompt-pulse")
	if met := m.sys.Data; met != nil && met.Host.Hostname != "" {
		title = m.st.muted.Render(met.Host.Hostname+" · ") + title
	}
	bar := b.String()
	if gap := width - lipgloss.Width(bar) - lipgloss.Width(title) - 1; gap > 0 {
		bar += strings.Repeat(" ", gap) + title
	}
	return bar
}

// tabAt maps a column of the tab bar to a tab. Labels are padded by one
// cell on each side.
func (m Model) tabAt(x int) (layout.Tab, bool) {
	x0 := 0
	for i, t := range layout.Tabs {
		w := lipgloss.Width(tabLabel(i, t)) + 2
		if x >= x0 && x < x0+w {
			return t, true
		}
		x0 += w
	}
	return m.tab, false
}

// renderHelpOverlay renders a centered help box for the selected section.
func (m Model) renderHelpOverlay() string {
	st := m.st
	sections := m.keys.helpSections()
	sec := sections[m.helpSection%len(sections)]

	var tabs []string
	for i, s := range sections {
		label := fmt.Sprintf("%d %s", i+1, s.title)
		if i == m.helpSection {
			tabs = append(tabs, st.tabActive.Render(label))
		} else {
			tabs = append(tabs, st.tab.Render(label))
		}
	}

	lines := []string{st.helpTitle.Render("Keyboard Shortcuts"), "", strings.Join(tabs, ""), ""}
	if len(sec.bindings) == 0 {
		for _, l := range mouseHelp {
			lines = append(lines, st.helpKey.Render(l[0])+st.helpDesc.Render(l[1]))
		}
	}
	for _, kb := range sec.bindings {
		h := kb.Help()
		lines = append(lines, st.helpKey.Render(h.Key)+st.helpDesc.Render(h.Desc))
	}
	lines = append(lines, "", st.label.Render("←/→ switch section · any other key closes"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		st.helpBox.Render(strings.Join(lines, "\n")),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(m.theme.Background),
	)
}

var mouseHelp = [][2]string{
	{"Click", "Select tab or process"},
	{"Wheel", "Scroll processes (System tab)"},
}
