package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/collector"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/history"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/layout"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/logger"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/process"
)

// Runtime tunables.
const (
	// RefreshStep is how much one +/- press changes the tick interval.
	RefreshStep = 250 * time.Millisecond
	// StatusTimeout is how long a transient status message stays up.
	StatusTimeout = 5 * time.Second
	// ProcessLimit caps the rows shown in the process table.
	ProcessLimit = 200
	// pageRows is the PgUp/PgDn step; wheelRows the mouse wheel step.
	pageRows  = 10
	wheelRows = 3
	// pollTimeout bounds the synchronous collectors of one tick.
	pollTimeout = 2 * time.Second
)

// Options wires collaborators into a Model. Every field except Config is
// optional; nil collectors are simply not polled.
type Options struct {
	Config *config.Config

	// System is polled every tick.
	System collector.Collector
	// Caches are polled when their cadence (collector.CacheInterval) is due.
	Caches   []collector.Collector
	Signaler process.Signaler
	// Images drives the image panel; nil hides it.
	Images *imaging.Pipeline

	Tab      layout.Tab
	Expanded bool
	Profile  termenv.Profile

	Now    func() time.Time
	Logger logger.Logger
}

type cacheSlot struct {
	c       collector.Collector
	cadence collector.Cadence
}

// Model is the bubbletea model. It owns all dashboard state; View only reads.
type Model struct {
	now  func() time.Time
	log  logger.Logger
	keys keyMap

	theme   Theme
	st      styles
	profile termenv.Profile

	width, height int
	tab           layout.Tab
	expanded      bool
	showHelp      bool
	helpSection   int
	showInfo      bool
	quitting      bool

	frozen  bool
	refresh time.Duration
	// gen invalidates tick chains scheduled before the last resume.
	gen   int
	ticks int

	system collector.Collector
	caches []*cacheSlot

	sys     collector.Snapshot[collector.SystemMetrics]
	mesh    collector.Snapshot[collector.MeshStatus]
	cluster collector.Snapshot[collector.ClusterStatus]
	billing collector.Snapshot[collector.BillingReport]
	usage   collector.Snapshot[collector.UsageReport]
	quota   collector.Snapshot[collector.QuotaReport]
	history *history.History

	records  []process.Record
	procErr  error
	tree     *process.Tree
	procOpts process.Options
	showCmd  bool
	sel      process.Selection
	selPID   int32
	chord    *process.Chord
	signaler process.Signaler

	filtering bool
	filter    textinput.Model

	images *imaging.Pipeline
	// loading animates while an image fetch is pending.
	loading spinner.Model

	status    statusLine
	statusSeq int
}

type tickMsg struct {
	gen int
}

type imageMsg imaging.Result

// ThemeMsg asks a running dashboard to switch palettes.
type ThemeMsg struct {
	Theme config.ThemeConfig
}

// NewModel builds the dashboard from opts.
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}

	theme := ResolveTheme(cfg.Theme, opts.Profile)

	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "name, pid or command"
	fi.CharLimit = 64

	m := Model{
		now:      opts.Now,
		log:      opts.Logger,
		keys:     defaultKeyMap(),
		theme:    theme,
		st:       newStyles(theme),
		profile:  opts.Profile,
		tab:      opts.Tab,
		expanded: opts.Expanded && opts.Images != nil,
		refresh:  config.ClampRefresh(cfg.General.Refresh),
		system:   opts.System,
		history:  history.New(history.DefaultCapacity),
		procOpts: process.Options{Sort: process.SortCPU, Limit: ProcessLimit, Collapsed: map[int32]bool{}},
		chord:    process.NewChord(),
		signaler: opts.Signaler,
		filter:   fi,
		images:   opts.Images,
		loading:  spinner.New(spinner.WithSpinner(loadingFrames)),
	}
	for _, c := range opts.Caches {
		if c == nil {
			continue
		}
		m.caches = append(m.caches, &cacheSlot{c: c, cadence: collector.Cadence{Interval: collector.CacheInterval}})
	}
	m.tree = process.Build(nil, m.procOpts)
	return m
}

// Init triggers the first collection immediately.
func (m Model) Init() tea.Cmd {
	gen := m.gen
	return func() tea.Msg { return tickMsg{gen: gen} }
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncSelection()

	case tickMsg:
		if msg.gen != m.gen || m.frozen {
			return m, nil
		}
		m.collect(m.now())
		return m, m.tickCmd()

	case imageMsg:
		return m, m.completeImage(imaging.Result(msg))

	case spinner.TickMsg:
		if !m.fetching() {
			return m, nil
		}
		var cmd tea.Cmd
		m.loading, cmd = m.loading.Update(msg)
		return m, cmd

	case statusExpiredMsg:
		if msg.seq == m.status.seq {
			m.status = statusLine{}
		}

	case ThemeMsg:
		m.theme = ResolveTheme(msg.Theme, m.profile)
		m.st = newStyles(m.theme)
		m.log.Info("theme switched to %s", m.theme.Name)
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// collect runs one tick: the system collector unconditionally, each cache
// collector when due, then history and the process tree.
func (m *Model) collect(now time.Time) {
	m.ticks++
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	if m.system != nil {
		d, err := m.system.Poll(ctx)
		if err != nil {
			m.sys.Fail(err, now)
			m.log.Warn("collector %s: %v", m.system.Kind(), err)
		} else if sd, ok := d.(collector.SystemDelta); ok {
			m.applySystem(sd, now)
		}
	}

	for _, slot := range m.caches {
		if !slot.cadence.Due(now) {
			continue
		}
		slot.cadence.Mark(now)
		d, err := slot.c.Poll(ctx)
		if err != nil {
			m.log.Warn("collector %s: %v", slot.c.Kind(), err)
		}
		m.applyCache(slot.c.Kind(), d, err, now)
	}

	m.rebuildProcesses()
}

func (m *Model) applySystem(d collector.SystemDelta, now time.Time) {
	met := d.Metrics
	if met == nil {
		return
	}
	m.sys.Apply(met, time.Time{}, false, now)

	h := m.history
	h.Push(history.CPU, met.CPU)
	h.PushLanes(history.CPUCores, met.Cores)
	h.Push(history.Memory, met.MemPercent)
	h.Push(history.Swap, met.SwapPercent)
	h.Push(history.Load1, met.Load1)
	if len(met.Temps) > 0 {
		h.Push(history.Temp, met.MaxTemp)
	}
	lanes := make([]float64, 2)
	lanes[history.LaneRX] = met.RxRate
	lanes[history.LaneTX] = met.TxRate
	h.PushLanes(history.Net, lanes)

	if d.ProcessErr != nil {
		m.procErr = d.ProcessErr
		m.log.Warn("process list: %v", d.ProcessErr)
		return
	}
	m.procErr = nil
	m.records = d.Processes
}

func (m *Model) applyCache(kind collector.Kind, d collector.Delta, err error, now time.Time) {
	switch kind {
	case collector.Mesh:
		applyDelta(&m.mesh, d, err, now)
	case collector.Cluster:
		applyDelta(&m.cluster, d, err, now)
	case collector.Billing:
		applyDelta(&m.billing, d, err, now)
	case collector.Usage:
		applyDelta(&m.usage, d, err, now)
	case collector.Quota:
		applyDelta(&m.quota, d, err, now)
	}
}

func applyDelta[T any](s *collector.Snapshot[T], d collector.Delta, err error, now time.Time) {
	if err != nil {
		s.Fail(err, now)
		return
	}
	if cd, ok := d.(collector.CacheDelta[T]); ok {
		s.Apply(cd.Data, cd.ModTime, cd.Stale, now)
	}
}

// rebuildProcesses rebuilds the tree from the latest records and keeps the
// cursor on the same process when it is still listed.
func (m *Model) rebuildProcesses() {
	m.tree = process.Build(m.records, m.procOpts)
	m.sel.Follow(m.tree, m.selPID)
	m.syncSelection()
}

// syncSelection clamps the cursor, remembers its PID and scrolls the table
// window so the cursor stays visible.
func (m *Model) syncSelection() {
	n := m.tree.Len()
	m.sel.Clamp(n)
	if row, ok := m.tree.Row(m.sel.Index); ok {
		m.selPID = row.PID
	} else {
		m.selPID = 0
	}
	if r, ok := m.plan().Rect(layout.PanelProcesses); ok {
		m.sel.Visible(processRows(r), n)
	}
}

func (m *Model) setRefresh(d time.Duration) {
	m.refresh = config.ClampRefresh(d)
}

// toggleFreeze flips between running and frozen. Resuming starts a new tick
// chain; the old one dies when its tick arrives with a stale generation.
func (m *Model) toggleFreeze() tea.Cmd {
	m.frozen = !m.frozen
	if m.frozen {
		return nil
	}
	m.gen++
	return m.tickCmd()
}

func (m *Model) setTab(t layout.Tab) {
	m.tab = t
	m.chord.Reset()
	m.syncSelection()
}

func (m Model) plan() layout.Plan {
	shape := layout.Shape{
		Image:    m.images != nil,
		Expanded: m.expanded,
	}
	if met := m.sys.Data; met != nil {
		shape.Cores = len(met.Cores)
		shape.Interfaces = len(met.Interfaces)
	}
	if ms := m.mesh.Data; ms != nil {
		shape.Peers = len(ms.Peers)
	}
	if cs := m.cluster.Data; cs != nil {
		shape.Clusters = len(cs.Clusters)
	}
	return layout.Compute(m.tab, m.width, m.height, shape)
}

// Frozen reports whether polling is suspended.
func (m Model) Frozen() bool { return m.frozen }

// Refresh returns the current tick interval.
func (m Model) Refresh() time.Duration { return m.refresh }

// Tab returns the active tab.
func (m Model) Tab() layout.Tab { return m.tab }
