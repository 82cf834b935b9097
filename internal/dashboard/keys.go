package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/layout"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/process"
)

// handleKey dispatches one key press. Order matters: filter input swallows
// everything, then the help overlay, then expanded mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keys

	if m.filtering {
		return m.handleFilterKey(msg)
	}

	if m.showHelp {
		m.handleHelpKey(msg)
		return nil
	}
	if key.Matches(msg, k.Help) {
		m.showHelp = true
		m.helpSection = 0
		return nil
	}

	if !key.Matches(msg, k.Terminate) {
		m.chord.Reset()
	}

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, k.Back):
		m.back()
		return nil
	}

	if m.expanded {
		cmd, _ := m.handleImageKey(msg)
		return cmd
	}
	if m.tab == layout.Dashboard && m.images != nil {
		if cmd, ok := m.handleImageKey(msg); ok {
			return cmd
		}
	}

	switch {
	case key.Matches(msg, k.Freeze):
		return m.toggleFreeze()
	case key.Matches(msg, k.Faster):
		m.setRefresh(m.refresh - RefreshStep)
	case key.Matches(msg, k.Slower):
		m.setRefresh(m.refresh + RefreshStep)

	case key.Matches(msg, k.NextTab):
		m.setTab(m.tab.Next())
	case key.Matches(msg, k.PrevTab):
		m.setTab(m.tab.Prev())
	case key.Matches(msg, k.Tab1):
		m.setTab(layout.Dashboard)
	case key.Matches(msg, k.Tab2):
		m.setTab(layout.System)
	case key.Matches(msg, k.Tab3):
		m.setTab(layout.Network)
	case key.Matches(msg, k.Tab4):
		m.setTab(layout.Billing)

	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
	case key.Matches(msg, k.Down):
		m.moveSelection(1)
	case key.Matches(msg, k.PageUp):
		m.moveSelection(-pageRows)
	case key.Matches(msg, k.PageDown):
		m.moveSelection(pageRows)
	case key.Matches(msg, k.Top):
		m.sel.Top()
		m.syncSelection()
	case key.Matches(msg, k.Bottom):
		m.sel.Bottom(m.tree.Len())
		m.syncSelection()

	case key.Matches(msg, k.Filter):
		m.filtering = true
		m.filter.SetValue("")
		m.filter.Focus()
		m.setFilter("")
	case key.Matches(msg, k.SortCPU):
		m.setSort(process.SortCPU)
	case key.Matches(msg, k.SortMemory):
		m.setSort(process.SortMemory)
	case key.Matches(msg, k.SortPID):
		m.setSort(process.SortPID)
	case key.Matches(msg, k.SortName):
		m.setSort(process.SortName)
	case key.Matches(msg, k.Reverse):
		m.procOpts.Reverse = !m.procOpts.Reverse
		m.rebuildProcesses()
	case key.Matches(msg, k.Command):
		m.showCmd = !m.showCmd
	case key.Matches(msg, k.Tree):
		m.procOpts.Tree = !m.procOpts.Tree
		m.rebuildProcesses()
	case key.Matches(msg, k.Collapse):
		m.toggleCollapse()

	case key.Matches(msg, k.Terminate):
		if m.chord.Press(m.now()) {
			return m.signalSelected(process.Terminate)
		}
	case key.Matches(msg, k.Kill):
		return m.signalSelected(process.Kill)
	}
	return nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.FilterAccept):
		m.filtering = false
		m.filter.Blur()
		return nil
	case key.Matches(msg, m.keys.Back):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.setFilter("")
		return nil
	case msg.String() == "ctrl+c":
		m.quitting = true
		return tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.setFilter(m.filter.Value())
	return cmd
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) {
	n := len(m.keys.helpSections())
	switch msg.String() {
	case "right", "tab":
		m.helpSection = (m.helpSection + 1) % n
	case "left", "shift+tab":
		m.helpSection = (m.helpSection + n - 1) % n
	case "1", "2", "3", "4":
		m.helpSection = int(msg.String()[0]-'1') % n
	default:
		m.showHelp = false
	}
}

// handleImageKey handles gallery keys. ok is false when msg is not one.
func (m *Model) handleImageKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.images == nil {
		return nil, false
	}
	k := m.keys
	g := m.images.Gallery()
	switch {
	case key.Matches(msg, k.ImageNext):
		g.Next()
		if m.images.WantsPrefetch() {
			return m.fetchImage(), true
		}
	case key.Matches(msg, k.ImagePrev):
		g.Previous()
	case key.Matches(msg, k.ImageRandom):
		g.Random()
	case key.Matches(msg, k.ImageInfo):
		m.showInfo = !m.showInfo
	case key.Matches(msg, k.ImageFetch):
		return m.fetchImage(), true
	default:
		return nil, false
	}
	return nil, true
}

// back handles Esc: dismiss the status message first, then leave expanded
// mode, then hide the image info, then clear a kept filter.
func (m *Model) back() {
	switch {
	case m.status.active():
		m.status = statusLine{}
	case m.expanded:
		m.expanded = false
	case m.showInfo:
		m.showInfo = false
	case m.procOpts.Filter != "":
		m.setFilter("")
	}
}

func (m *Model) moveSelection(delta int) {
	m.sel.Move(delta, m.tree.Len())
	m.syncSelection()
}

func (m *Model) setSort(k process.SortKey) {
	m.procOpts.Sort = k
	m.rebuildProcesses()
}

func (m *Model) setFilter(f string) {
	m.procOpts.Filter = f
	m.sel.Top()
	m.tree = process.Build(m.records, m.procOpts)
	m.syncSelection()
}

func (m *Model) toggleCollapse() {
	if !m.procOpts.Tree {
		return
	}
	row, ok := m.tree.Row(m.sel.Index)
	if !ok || !row.HasChildren {
		return
	}
	if m.procOpts.Collapsed[row.PID] {
		delete(m.procOpts.Collapsed, row.PID)
	} else {
		m.procOpts.Collapsed[row.PID] = true
	}
	m.rebuildProcesses()
}

// signalSelected sends sig to the process under the cursor. With nothing
// selected, or no process panel on screen, it does nothing. Failures become a
// status message.
func (m *Model) signalSelected(sig process.Signal) tea.Cmd {
	if !m.plan().Has(layout.PanelProcesses) {
		return nil
	}
	row, ok := m.tree.Row(m.sel.Index)
	if !ok || m.signaler == nil {
		return nil
	}
	if err := m.signaler.Signal(row.PID, sig); err != nil {
		m.log.Warn("signal %s to %d: %v", sig, row.PID, err)
		return m.setStatus(levelError, errors.Summary(err))
	}
	m.log.Info("sent %s to %s (%d)", sig, row.Name, row.PID)
	return m.setStatus(levelInfo, fmt.Sprintf("Sent %s to %s (%d)", sig, row.Name, row.PID))
}

// fetchImage starts a background fetch. The result comes back as an
// imageMsg; a newer fetch supersedes it.
func (m *Model) fetchImage() tea.Cmd {
	work := m.images.Begin()
	if work == nil {
		return m.setStatus(levelError, "No image endpoint configured (collectors.waifu.endpoint)")
	}
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*imaging.FetchTimeout)
		defer cancel()
		return imageMsg(work(ctx))
	}
	return tea.Batch(fetch, m.loading.Tick)
}

// fetching reports whether an image fetch is in flight.
func (m Model) fetching() bool {
	if m.images == nil {
		return false
	}
	s, _ := m.images.Status()
	return s == imaging.Pending
}

func (m *Model) completeImage(r imaging.Result) tea.Cmd {
	if m.images == nil || !m.images.Complete(r, m.now()) {
		return nil
	}
	if r.Err != nil {
		return m.setStatus(levelError, errors.Summary(r.Err))
	}
	return nil
}

// handleMouse selects tabs from the tab bar, scrolls the process table with
// the wheel and selects a process on click.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.showHelp || m.expanded {
		return nil
	}
	plan := m.plan()

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.tab == layout.System {
			m.moveSelection(-wheelRows)
		}
		return nil
	case tea.MouseButtonWheelDown:
		if m.tab == layout.System {
			m.moveSelection(wheelRows)
		}
		return nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
	default:
		return nil
	}

	if plan.TabBar.Contains(msg.X, msg.Y) {
		if t, ok := m.tabAt(msg.X); ok {
			m.setTab(t)
		}
		return nil
	}

	if r, ok := plan.Rect(layout.PanelProcesses); ok && r.Contains(msg.X, msg.Y) {
		// Border and header rows sit above the first process row.
		row := msg.Y - r.Y - 2
		if row >= 0 {
			start, _ := m.sel.Visible(processRows(r), m.tree.Len())
			m.sel.Index = start + row
			m.syncSelection()
		}
	}
	return nil
}
