package dashboard

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/collector"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/history"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/imaging"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/layout"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/process"
)

// renderPanel draws one panel into r. raw is set when the lines carry
// terminal graphics and are already exactly r.W cells wide.
func (m Model) renderPanel(p layout.Panel, r layout.Rect) (lines []string, raw bool) {
	switch p {
	case layout.PanelHost:
		return m.hostPanel(r), false
	case layout.PanelSparks:
		return m.sparksPanel(r), false
	case layout.PanelCPU:
		return m.cpuPanel(r), false
	case layout.PanelCores:
		return m.coresPanel(r), false
	case layout.PanelMemory:
		return m.memoryPanel(r), false
	case layout.PanelDisks:
		return m.disksPanel(r), false
	case layout.PanelTemps:
		return m.tempsPanel(r), false
	case layout.PanelNetSparks:
		return m.netSparksPanel(r), false
	case layout.PanelNetwork:
		return m.networkPanel(r), false
	case layout.PanelProcesses:
		return m.processPanel(r), false
	case layout.PanelMesh:
		return m.meshPanel(r), false
	case layout.PanelCluster:
		return m.clusterPanel(r), false
	case layout.PanelUsage:
		return m.usagePanel(r), false
	case layout.PanelBilling:
		return m.billingPanel(r), false
	case layout.PanelQuota:
		return m.quotaPanel(r), false
	case layout.PanelImage:
		return m.imagePanel(r)
	}
	return nil, false
}

// Box drawing

func (m Model) boxTop(r layout.Rect, title, badge string) string {
	st := m.st
	head := st.border.Render("╭─ ") + st.title.Render(title) + " "
	if badge != "" {
		head += badge + " "
	}
	fill := r.W - 1 - lipgloss.Width(head)
	if fill < 0 {
		return fit(head, r.W)
	}
	return head + st.border.Render(strings.Repeat("─", fill)+"╮")
}

func (m Model) boxBottom(r layout.Rect) string {
	if r.W < 2 {
		return fit("", r.W)
	}
	return m.st.border.Render("╰" + strings.Repeat("─", r.W-2) + "╯")
}

func (m Model) boxLine(content string) string {
	side := m.st.border.Render("│")
	return side + content + side
}

// box frames body inside r, clipping or padding it to the inner area.
func (m Model) box(r layout.Rect, title, badge string, body []string) []string {
	if r.H < 2 || r.W < 2 {
		return nil
	}
	w := r.W - 2
	lines := make([]string, 0, r.H)
	lines = append(lines, m.boxTop(r, title, badge))
	for i := 0; i < r.H-2; i++ {
		var s string
		if i < len(body) {
			s = body[i]
		}
		lines = append(lines, m.boxLine(fit(s, w)))
	}
	return append(lines, m.boxBottom(r))
}

func inner(r layout.Rect) (w, h int) {
	return max(r.W-2, 0), max(r.H-2, 0)
}

// snapshotBadge marks a panel whose data is failing or old.
func snapshotBadge[T any](st styles, s *collector.Snapshot[T], now time.Time) string {
	switch {
	case s.Err != nil && s.HasData():
		return st.bad.Render(glyphWarn + " error · ok " + formatAgo(s.UpdatedAt, now))
	case s.Err != nil:
		return st.bad.Render(glyphWarn + " no data")
	case s.Stale:
		return st.warn.Render("stale · " + formatAgo(s.SourceTime, now))
	}
	return ""
}

// noData explains why a panel is empty.
func noData(st styles, err error) []string {
	if err == nil {
		return []string{st.muted.Render(glyphLoading + " waiting for data…")}
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		out := []string{st.bad.Render(glyphWarn + " " + e.Message)}
		if e.Suggestion != "" {
			out = append(out, st.muted.Render(e.Suggestion))
		}
		return out
	}
	return []string{st.bad.Render(glyphWarn + " " + err.Error())}
}

func pct(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}

// System panels

func (m Model) hostPanel(r layout.Rect) []string {
	st := m.st
	badge := snapshotBadge(st, &m.sys, m.now())
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Host", badge, noData(st, m.sys.Err))
	}
	w, _ := inner(r)
	h := met.Host
	osLine := h.Platform
	if osLine == "" {
		osLine = h.OS
	}
	body := []string{
		kv(st, "host   ", h.Hostname, w),
		kv(st, "os     ", osLine+" "+h.Arch, w),
		kv(st, "kernel ", h.Kernel, w),
		kv(st, "cpu    ", fmt.Sprintf("%s (%d)", h.CPUModel, h.Cores), w),
		kv(st, "uptime ", formatUptime(met.Uptime), w),
		kv(st, "load   ", fmt.Sprintf("%.2f %.2f %.2f", met.Load1, met.Load5, met.Load15), w),
		kv(st, "procs  ", fmt.Sprintf("%d", met.ProcessCount), w),
	}
	return m.box(r, "Host", badge, body)
}

func (m Model) sparksPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	title := "CPU"
	if met != nil {
		title = fmt.Sprintf("CPU %.1f%% · MEM %.1f%%", met.CPU, met.MemPercent)
	}
	if met == nil {
		return m.box(r, title, snapshotBadge(st, &m.sys, m.now()), noData(st, m.sys.Err))
	}
	w, h := inner(r)
	graphRows := max(h-1, 1)
	body := brailleGraph(m.history.Snapshot(history.CPU), w, graphRows, true, m.theme.Graph, m.theme)
	if h > 1 {
		label := st.label.Render("mem ")
		body = append(body, label+sparkline(m.history.Snapshot(history.Memory), w-4, true, m.theme.MetricColor(met.MemPercent)))
	}
	return m.box(r, title, "", body)
}

func (m Model) cpuPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Cores", "", noData(st, m.sys.Err))
	}
	w, h := inner(r)
	cols := 1
	if len(met.Cores) > h && w >= 40 {
		cols = 2
	}
	colW := w / cols
	barW := max(colW-12, 1)

	cells := make([]string, len(met.Cores))
	for i, v := range met.Cores {
		cells[i] = fit(st.label.Render(fmt.Sprintf("%3d ", i))+gradientBar(barW, v, m.theme)+" "+
			lipgloss.NewStyle().Foreground(m.theme.MetricColor(v)).Render(pct(v)), colW)
	}
	rowsNeeded := (len(cells) + cols - 1) / cols
	body := make([]string, 0, rowsNeeded)
	for row := 0; row < rowsNeeded; row++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			if i := c*rowsNeeded + row; i < len(cells) {
				b.WriteString(cells[i])
			}
		}
		body = append(body, b.String())
	}
	return m.box(r, fmt.Sprintf("Cores (%d)", len(met.Cores)), "", body)
}

func (m Model) coresPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Per-core", "", noData(st, m.sys.Err))
	}
	w, h := inner(r)
	lanes := m.history.Lanes(history.CPUCores)
	cols := 1
	if len(lanes) > h && w >= 40 {
		cols = 2
	}
	colW := w / cols
	rowsNeeded := (len(lanes) + cols - 1) / cols

	body := make([]string, 0, rowsNeeded)
	for row := 0; row < rowsNeeded; row++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			i := c*rowsNeeded + row
			if i >= len(lanes) {
				continue
			}
			cur := 0.0
			if i < len(met.Cores) {
				cur = met.Cores[i]
			}
			cell := st.label.Render(fmt.Sprintf("%3d ", i)) +
				sparkline(lanes[i], max(colW-12, 1), true, m.theme.MetricColor(cur)) +
				" " + st.value.Render(pct(cur))
			b.WriteString(fit(cell, colW))
		}
		body = append(body, b.String())
	}
	return m.box(r, "Per-core", "", body)
}

func (m Model) memoryPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Memory", "", noData(st, m.sys.Err))
	}
	w, _ := inner(r)
	barW := max(w-12, 1)
	body := []string{
		st.label.Render("ram  ") + gradientBar(barW, met.MemPercent, m.theme) + " " + st.value.Render(pct(met.MemPercent)),
		kv(st, "used ", formatBytes(met.MemUsed)+" / "+formatBytes(met.MemTotal), w),
		kv(st, "free ", formatBytes(met.MemAvailable), w),
	}
	if met.SwapTotal > 0 {
		body = append(body,
			st.label.Render("swap ")+gradientBar(barW, met.SwapPercent, m.theme)+" "+st.value.Render(pct(met.SwapPercent)),
			kv(st, "     ", formatBytes(met.SwapUsed)+" / "+formatBytes(met.SwapTotal), w),
		)
	} else {
		body = append(body, st.muted.Render("swap disabled"))
	}
	return m.box(r, "Memory", "", body)
}

func (m Model) disksPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Disks", "", noData(st, m.sys.Err))
	}
	if len(met.Disks) == 0 {
		return m.box(r, "Disks", "", []string{st.muted.Render("no filesystems")})
	}
	w, _ := inner(r)
	mountW := min(max(w/4, 6), 16)
	barW := max(w-mountW-24, 1)
	var body []string
	for _, d := range met.Disks {
		body = append(body, fit(st.label.Render(fit(truncate(d.Mount, mountW), mountW))+" "+
			gradientBar(barW, d.Percent, m.theme)+" "+
			st.value.Render(pct(d.Percent))+" "+
			st.muted.Render(formatBytes(d.Used)+"/"+formatBytes(d.Total)), w))
	}
	return m.box(r, "Disks", "", body)
}

func (m Model) tempsPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Temperatures", "", noData(st, m.sys.Err))
	}
	if len(met.Temps) == 0 {
		return m.box(r, "Temperatures", "", []string{st.muted.Render("no sensors")})
	}
	w, _ := inner(r)
	var body []string
	for _, t := range met.Temps {
		c := lipgloss.NewStyle().Foreground(m.theme.MetricColor(t.Celsius))
		body = append(body, fit(st.label.Render(fit(truncate(t.Sensor, w-9), w-9))+c.Render(fmt.Sprintf("%6.1f°C", t.Celsius)), w))
	}
	return m.box(r, fmt.Sprintf("Temperatures · max %.0f°C", met.MaxTemp), "", body)
}

func (m Model) netSparksPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Network", "", noData(st, m.sys.Err))
	}
	w, h := inner(r)
	graphW := max(w-16, 1)
	rx := st.label.Render("rx ") + sparkline(m.history.Lane(history.Net, history.LaneRX), graphW, false, m.theme.RX) +
		" " + st.value.Render(formatRate(met.RxRate))
	tx := st.label.Render("tx ") + sparkline(m.history.Lane(history.Net, history.LaneTX), graphW, false, m.theme.TX) +
		" " + st.value.Render(formatRate(met.TxRate))
	body := []string{rx, tx}
	if h == 1 {
		body = []string{st.label.Render("↓ ") + st.value.Render(formatRate(met.RxRate)) + st.label.Render("  ↑ ") + st.value.Render(formatRate(met.TxRate))}
	}
	return m.box(r, "Traffic", "", body)
}

func (m Model) networkPanel(r layout.Rect) []string {
	st := m.st
	met := m.sys.Data
	if met == nil {
		return m.box(r, "Interfaces", "", noData(st, m.sys.Err))
	}
	w, _ := inner(r)
	body := []string{st.header.Render(fit(fmt.Sprintf("%-12s %11s %11s %10s %10s", "IFACE", "RX/s", "TX/s", "RX", "TX"), w))}
	for _, in := range met.Interfaces {
		body = append(body, fmt.Sprintf("%-12s %s %s %s %s",
			truncate(in.Name, 12),
			lipgloss.NewStyle().Foreground(m.theme.RX).Render(fmt.Sprintf("%11s", formatRate(in.RxRate))),
			lipgloss.NewStyle().Foreground(m.theme.TX).Render(fmt.Sprintf("%11s", formatRate(in.TxRate))),
			st.muted.Render(fmt.Sprintf("%10s", formatBytes(in.RxTotal))),
			st.muted.Render(fmt.Sprintf("%10s", formatBytes(in.TxTotal))),
		))
	}
	if len(met.Interfaces) == 0 {
		body = append(body, st.muted.Render("no active interfaces"))
	}
	return m.box(r, "Interfaces", "", body)
}

// processRows is the number of table rows that fit in the processes panel:
// its height minus the two borders and the header.
func processRows(r layout.Rect) int {
	return max(r.H-3, 0)
}

func (m Model) processPanel(r layout.Rect) []string {
	st := m.st
	dir := "↓"
	if m.procOpts.Reverse {
		dir = "↑"
	}
	mode := ""
	if m.procOpts.Tree {
		mode = " · tree"
	}
	title := fmt.Sprintf("Processes %d/%d · %s %s%s", m.tree.Len(), m.tree.Total(), m.procOpts.Sort, dir, mode)

	var badge string
	if m.procErr != nil {
		badge = st.bad.Render(glyphWarn + " " + errors.Summary(m.procErr))
	}
	if m.tree.Len() == 0 {
		msg := st.muted.Render(glyphLoading + " waiting for processes…")
		if m.procOpts.Filter != "" {
			msg = st.muted.Render("no process matches \"" + m.procOpts.Filter + "\"")
		} else if m.procErr != nil {
			msg = st.bad.Render(errors.Summary(m.procErr))
		}
		return m.box(r, title, badge, []string{msg})
	}

	w, _ := inner(r)
	body := []string{st.header.Render(fit(fmt.Sprintf("%7s %-9s %5s %8s %2s %s", "PID", "USER", "CPU%", "MEM", "ST", "COMMAND"), w))}

	sel := m.sel
	start, end := sel.Visible(processRows(r), m.tree.Len())
	rows := m.tree.Rows()
	for i := start; i < end; i++ {
		body = append(body, m.processRow(rows[i], i == sel.Index, w))
	}
	return m.box(r, title, badge, body)
}

func (m Model) processRow(row process.Row, selected bool, w int) string {
	name := row.Name
	if m.showCmd && row.Command != "" {
		name = row.Command
	}
	if row.Collapsed {
		name = "▸ " + name
	}
	line := fmt.Sprintf("%7d %-9s %5.1f %8s %2s %s",
		row.PID, truncate(row.User, 9), row.CPU, formatBytes(row.Memory), string(row.State), row.Prefix+name)
	line = truncate(line, w)

	switch {
	case selected:
		return m.st.selected.Render(fit(line, w))
	case !row.Matched && m.procOpts.Filter != "":
		return m.st.muted.Render(line)
	case row.CPU >= m.theme.CritAt:
		return m.st.bad.Render(line)
	case row.CPU >= m.theme.WarnAt:
		return m.st.warn.Render(line)
	}
	return m.st.value.Render(line)
}

// Cache panels

func (m Model) meshPanel(r layout.Rect) []string {
	st := m.st
	s := &m.mesh
	badge := snapshotBadge(st, s, m.now())
	ms := s.Data
	if ms == nil {
		return m.box(r, "Tailscale", badge, noData(st, s.Err))
	}
	w, _ := inner(r)
	title := fmt.Sprintf("Tailscale %d/%d", ms.Online(), ms.Total())
	var body []string
	if ms.TailnetName != "" {
		body = append(body, kv(st, "tailnet", ms.TailnetName, w))
	}
	if self := ms.LocalNode(); self != nil {
		ip := ""
		if len(self.TailscaleIPs) > 0 {
			ip = self.TailscaleIPs[0]
		}
		body = append(body, kv(st, "self   ", self.DisplayName()+" "+ip, w))
	}
	for _, p := range ms.Peers {
		glyph := st.good.Render(glyphOnline)
		if !p.Online {
			glyph = st.muted.Render(glyphOffline)
		}
		ip := ""
		if len(p.TailscaleIPs) > 0 {
			ip = p.TailscaleIPs[0]
		}
		extra := p.OS
		if p.ExitNode {
			extra += " exit"
		}
		body = append(body, fit(glyph+" "+st.value.Render(fit(truncate(p.DisplayName(), 20), 20))+" "+
			st.muted.Render(fmt.Sprintf("%-15s %s", ip, extra)), w))
	}
	if len(ms.Peers) == 0 {
		body = append(body, st.muted.Render("no peers"))
	}
	return m.box(r, title, badge, body)
}

func (m Model) clusterPanel(r layout.Rect) []string {
	st := m.st
	s := &m.cluster
	badge := snapshotBadge(st, s, m.now())
	cs := s.Data
	if cs == nil {
		return m.box(r, "Kubernetes", badge, noData(st, s.Err))
	}
	w, _ := inner(r)
	var body []string
	for i := range cs.Clusters {
		c := &cs.Clusters[i]
		if !c.Connected {
			reason := c.Error
			if reason == "" {
				reason = "disconnected"
			}
			body = append(body, fit(st.muted.Render(glyphOffline+" ")+st.value.Render(c.Context)+" "+st.bad.Render(reason), w))
			continue
		}
		body = append(body,
			fit(st.good.Render(glyphOnline+" ")+st.value.Render(c.Context), w),
			kv(st, "  nodes", fmt.Sprintf("%d/%d ready", c.ReadyNodes(), len(c.Nodes)), w),
		)
		pods := st.label.Render("  pods ") +
			st.good.Render(fmt.Sprintf("%d running", c.RunningPods)) + st.muted.Render(" · ") +
			st.warn.Render(fmt.Sprintf("%d pending", c.PendingPods)) + st.muted.Render(" · ") +
			st.bad.Render(fmt.Sprintf("%d failed", c.FailedPods))
		body = append(body, pods)
	}
	if len(cs.Clusters) == 0 {
		body = append(body, st.muted.Render("no contexts"))
	}
	return m.box(r, fmt.Sprintf("Kubernetes (%d)", len(cs.Clusters)), badge, body)
}

func (m Model) usagePanel(r layout.Rect) []string {
	st := m.st
	s := &m.usage
	badge := snapshotBadge(st, s, m.now())
	u := s.Data
	if u == nil {
		return m.box(r, "Claude API", badge, noData(st, s.Err))
	}
	w, _ := inner(r)
	var body []string
	for _, a := range u.Accounts {
		if !a.Connected {
			reason := a.Error
			if reason == "" {
				reason = "not connected"
			}
			body = append(body, fit(st.muted.Render(glyphOffline+" ")+st.value.Render(a.Name)+" "+st.bad.Render(reason), w))
			continue
		}
		cm := a.CurrentMonth
		body = append(body,
			fit(st.good.Render(glyphOnline+" ")+st.value.Render(a.Name)+" "+st.accent.Render(formatUSD(cm.CostUSD)), w),
			kv(st, "  tokens", formatTokens(cm.InputTokens)+" in · "+formatTokens(cm.OutputTokens)+" out", w),
			kv(st, "  burn  ", formatUSD(a.DailyBurnRate)+"/day → "+formatUSD(a.ProjectedMonthly)+fmt.Sprintf(" (%dd left)", a.DaysRemaining), w),
		)
	}
	if len(u.Accounts) == 0 {
		body = append(body, st.muted.Render("no accounts"))
	}
	return m.box(r, "Claude API · "+formatUSD(u.TotalCostUSD), badge, body)
}

func (m Model) billingPanel(r layout.Rect) []string {
	st := m.st
	s := &m.billing
	badge := snapshotBadge(st, s, m.now())
	b := s.Data
	if b == nil {
		return m.box(r, "Billing", badge, noData(st, s.Err))
	}
	w, _ := inner(r)
	var body []string
	if b.BudgetUSD > 0 {
		barW := max(w-24, 1)
		body = append(body, st.label.Render("budget ")+gradientBar(barW, b.BudgetPercent, m.theme)+" "+
			st.value.Render(fmt.Sprintf("%.0f%% of %s", b.BudgetPercent, formatUSD(b.BudgetUSD))))
	}
	for _, p := range b.Providers {
		if !p.Connected {
			reason := p.Error
			if reason == "" {
				reason = "not connected"
			}
			body = append(body, fit(st.muted.Render(glyphOffline+" ")+st.value.Render(p.Name)+" "+st.bad.Render(reason), w))
			continue
		}
		line := st.good.Render(glyphOnline+" ") + st.value.Render(fit(p.Name, 14)) + st.accent.Render(fmt.Sprintf("%12s", formatUSD(p.MonthToDate)))
		if p.Balance != 0 {
			line += st.muted.Render("  balance " + formatUSD(p.Balance))
		}
		body = append(body, fit(line, w))
	}
	if len(b.Providers) == 0 {
		body = append(body, st.muted.Render("no providers"))
	}
	return m.box(r, "Billing · "+formatUSD(b.TotalMonthly)+"/mo", badge, body)
}

func (m Model) quotaPanel(r layout.Rect) []string {
	st := m.st
	s := &m.quota
	badge := snapshotBadge(st, s, m.now())
	q := s.Data
	if q == nil {
		return m.box(r, "Claude quota", badge, noData(st, s.Err))
	}
	w, _ := inner(r)
	used := 0.0
	if q.Limit > 0 {
		used = float64(q.InWindow) / float64(q.Limit) * 100
	}
	barW := max(w-20, 1)
	body := []string{
		st.label.Render("used ") + gradientBar(barW, used, m.theme) + " " + st.value.Render(fmt.Sprintf("%d/%d", q.InWindow, q.Limit)),
		kv(st, "left ", fmt.Sprintf("%d messages in %dh window", q.Remaining(), q.WindowHours), w),
	}
	if q.NextSlot > 0 {
		body = append(body, kv(st, "next ", "slot frees in "+formatDuration(q.NextSlot), w))
	}
	return m.box(r, "Claude quota", badge, body)
}

// Image panel

func (m Model) imagePanel(r layout.Rect) ([]string, bool) {
	st := m.st
	p := m.images
	if p == nil || r.H < 3 || r.W < 3 {
		return nil, false
	}
	g := p.Gallery()
	title := "Gallery"
	if g.Len() > 0 {
		title = fmt.Sprintf("Gallery %d/%d", g.Cursor()+1, g.Len())
	}
	status, err := p.Status()
	var badge string
	switch status {
	case imaging.Pending:
		badge = st.accent.Render(m.loading.View() + " fetching")
	case imaging.Failed:
		badge = st.bad.Render(glyphWarn + " fetch failed")
	}

	w, h := inner(r)
	var info []string
	if m.showInfo {
		info = m.imageInfo(w, err)
	}
	imgRows := max(h-len(info), 0)

	lines, rerr := p.Render(w, imgRows)
	if rerr != nil {
		return m.box(r, title, badge, append(noData(st, rerr), info...)), false
	}
	if p.Protocol() == imaging.Halfblocks || len(lines) == 0 {
		return m.box(r, title, badge, append(lines, info...)), false
	}

	// Graphics protocols: keep the escape line intact and size every other
	// line exactly.
	out := []string{fit(m.boxTop(r, title, badge), r.W)}
	for i := 0; i < h; i++ {
		switch {
		case i < len(lines) && i == 0:
			out = append(out, m.boxLine(lines[0]))
		case i < imgRows:
			out = append(out, m.boxLine(strings.Repeat(" ", w)))
		case i-imgRows < len(info):
			out = append(out, m.boxLine(fit(info[i-imgRows], w)))
		default:
			out = append(out, m.boxLine(strings.Repeat(" ", w)))
		}
	}
	return append(out, fit(m.boxBottom(r), r.W)), true
}

func (m Model) imageInfo(w int, fetchErr error) []string {
	st := m.st
	e, ok := m.images.Gallery().Current()
	if !ok {
		return []string{st.muted.Render("no image")}
	}
	info := []string{
		kv(st, "title ", e.Title, w),
		kv(st, "source", fmt.Sprintf("%s · %s · %dx%d · %s", e.Origin, e.Format, e.Width, e.Height, m.images.Protocol()), w),
	}
	if len(e.Tags) > 0 {
		info = append(info, kv(st, "tags  ", strings.Join(e.Tags, ", "), w))
	}
	if fetchErr != nil {
		info = append(info, st.bad.Render(fit(errors.Summary(fetchErr), w)))
	}
	return info
}
