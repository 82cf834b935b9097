package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelError
)

// statusLine is a transient message shown in the bottom row.
type statusLine struct {
	text  string
	level statusLevel
	seq   int
}

func (s statusLine) active() bool { return s.text != "" }

type statusExpiredMsg struct {
	seq int
}

// setStatus shows text until StatusTimeout passes, a newer message replaces
// it, or Esc dismisses it.
func (m *Model) setStatus(level statusLevel, text string) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.status = statusLine{text: text, level: level, seq: seq}
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// StatusText returns the transient message, if any.
func (m Model) StatusText() string { return m.status.text }

func (m Model) renderStatusBar(width int) string {
	st := m.st
	now := m.now()
	var left []string

	if m.frozen {
		left = append(left, st.warn.Render(glyphFrozen+" FROZEN"))
	} else {
		left = append(left, st.good.Render("● live"))
	}
	left = append(left, st.label.Render(fmt.Sprintf("%dms", m.refresh.Milliseconds())))

	if m.filtering {
		left = append(left, m.filter.View())
	} else if m.procOpts.Filter != "" {
		left = append(left, st.accent.Render("filter: "+m.procOpts.Filter))
	}
	if m.chord.Pending(now) {
		left = append(left, st.warn.Render("d… press d again to terminate"))
	}
	if m.fetching() {
		left = append(left, st.accent.Render(m.loading.View()+" fetching image"))
	}

	if m.status.active() {
		style := st.value
		if m.status.level == levelError {
			style = st.bad
		}
		left = append(left, style.Render(m.status.text))
	}

	right := st.muted.Render("? help  q quit")
	line := strings.Join(left, st.muted.Render(" │ "))
	gap := width - lipgloss.Width(line) - lipgloss.Width(right)
	if gap >= 1 {
		line += strings.Repeat(" ", gap) + right
	}
	return fit(line, width)
}
