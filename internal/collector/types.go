package collector

import (
	"sort"
	"strings"
	"time"
)

// MeshStatus is the tailscale.json document.
type MeshStatus struct {
	Self           *Peer      `json:"self"`
	SelfNode       *Peer      `json:"self_node"`
	Peers          []Peer     `json:"peers"`
	MagicDNSSuffix string     `json:"magic_dns_suffix"`
	TailnetName    string     `json:"tailnet_name"`
	OnlineCount    int        `json:"online_peers"`
	TotalCount     int        `json:"total_peers"`
	Timestamp      *time.Time `json:"timestamp"`
}

// Peer is one node on the tailnet.
type Peer struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	HostName       string     `json:"hostname"`
	DNSName        string     `json:"dns_name"`
	OS             string     `json:"os"`
	TailscaleIPs   []string   `json:"tailscale_ips"`
	Online         bool       `json:"online"`
	LastSeen       *time.Time `json:"last_seen"`
	ExitNode       bool       `json:"exit_node"`
	ExitNodeOption bool       `json:"exit_node_option"`
	Tags           []string   `json:"tags"`
	RxBytes        int64      `json:"rx_bytes"`
	TxBytes        int64      `json:"tx_bytes"`
}

// DisplayName returns the best available name for the peer.
func (p *Peer) DisplayName() string {
	switch {
	case p.HostName != "":
		return p.HostName
	case p.Name != "":
		return p.Name
	default:
		return strings.TrimSuffix(p.DNSName, ".")
	}
}

// LocalNode returns the node the daemon runs on, if reported.
func (m *MeshStatus) LocalNode() *Peer {
	if m.Self != nil {
		return m.Self
	}
	return m.SelfNode
}

// OnlinePeers returns online peers sorted by display name.
func (m *MeshStatus) OnlinePeers() []Peer {
	var out []Peer
	for _, p := range m.Peers {
		if p.Online {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayName() < out[j].DisplayName()
	})
	return out
}

// Online returns the number of online peers, counting the peer list when
// the daemon did not fill in the summary field.
func (m *MeshStatus) Online() int {
	if m.OnlineCount > 0 {
		return m.OnlineCount
	}
	n := 0
	for _, p := range m.Peers {
		if p.Online {
			n++
		}
	}
	return n
}

// Total returns the number of known peers.
func (m *MeshStatus) Total() int {
	if m.TotalCount > 0 {
		return m.TotalCount
	}
	return len(m.Peers)
}

// ClusterStatus is the k8s.json document.
type ClusterStatus struct {
	Clusters  []ClusterInfo `json:"clusters"`
	Timestamp *time.Time    `json:"timestamp"`
}

// ClusterInfo summarises one kube context.
type ClusterInfo struct {
	Context     string          `json:"context"`
	Connected   bool            `json:"connected"`
	Error       string          `json:"error"`
	Nodes       []NodeInfo      `json:"nodes"`
	Namespaces  []NamespaceInfo `json:"namespaces"`
	TotalPods   int             `json:"total_pods"`
	RunningPods int             `json:"running_pods"`
	PendingPods int             `json:"pending_pods"`
	FailedPods  int             `json:"failed_pods"`
}

// ReadyNodes counts nodes reporting Ready.
func (c *ClusterInfo) ReadyNodes() int {
	n := 0
	for _, node := range c.Nodes {
		if node.Ready {
			n++
		}
	}
	return n
}

// NodeInfo is one cluster node.
type NodeInfo struct {
	Name        string   `json:"name"`
	Ready       bool     `json:"ready"`
	Roles       []string `json:"roles"`
	CPUCapacity string   `json:"cpu_capacity"`
	MemCapacity string   `json:"mem_capacity"`
	PodCount    int      `json:"pod_count"`
}

// NamespaceInfo is the pod count of one namespace.
type NamespaceInfo struct {
	Name     string `json:"name"`
	PodCount int    `json:"pod_count"`
}

// BillingReport is the billing.json document.
type BillingReport struct {
	Providers     []ProviderBilling `json:"providers"`
	TotalMonthly  float64           `json:"total_monthly_usd"`
	BudgetUSD     float64           `json:"budget_usd"`
	BudgetPercent float64           `json:"budget_percent"`
	Timestamp     *time.Time        `json:"timestamp"`
}

// ProviderBilling is the spend for one cloud provider.
type ProviderBilling struct {
	Name        string         `json:"name"`
	Connected   bool           `json:"connected"`
	Error       string         `json:"error"`
	MonthToDate float64        `json:"month_to_date"`
	Balance     float64        `json:"balance"`
	Resources   []ResourceCost `json:"resources"`
}

// ResourceCost is one billed resource.
type ResourceCost struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	MonthlyCost float64 `json:"monthly_cost"`
	HourlyCost  float64 `json:"hourly_cost"`
}

// UsageReport is the claude.json document.
type UsageReport struct {
	Accounts     []AccountUsage `json:"accounts"`
	TotalCostUSD float64        `json:"total_cost_usd"`
	Timestamp    *time.Time     `json:"timestamp"`
}

// AccountUsage is API usage for one organization.
type AccountUsage struct {
	Name             string           `json:"name"`
	OrganizationID   string           `json:"organization_id"`
	Connected        bool             `json:"connected"`
	Error            string           `json:"error"`
	CurrentMonth     MonthUsage       `json:"current_month"`
	PreviousMonth    MonthUsage       `json:"previous_month"`
	Models           []ModelUsage     `json:"models"`
	Workspaces       []WorkspaceUsage `json:"workspaces"`
	DailyBurnRate    float64          `json:"daily_burn_rate"`
	ProjectedMonthly float64          `json:"projected_monthly"`
	DaysRemaining    int              `json:"days_remaining"`
}

// MonthUsage aggregates tokens and cost for a month.
type MonthUsage struct {
	InputTokens         int64   `json:"input_tokens"`
	OutputTokens        int64   `json:"output_tokens"`
	CacheCreationTokens int64   `json:"cache_creation_tokens"`
	CacheReadTokens     int64   `json:"cache_read_tokens"`
	CostUSD             float64 `json:"cost_usd"`
}

// ModelUsage is usage per model.
type ModelUsage struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// WorkspaceUsage is usage per workspace.
type WorkspaceUsage struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Quota window defaults applied when the file omits them.
const (
	DefaultWindowHours  = 5
	DefaultMessageLimit = 45
)

// QuotaState is the claude-personal.json document: raw message timestamps.
type QuotaState struct {
	Messages     []QuotaMessage `json:"messages"`
	WindowHours  int            `json:"window_hours"`
	MessageLimit int            `json:"message_limit"`
	LastScan     string         `json:"last_scan"`
}

// QuotaMessage is one sent message.
type QuotaMessage struct {
	TS     string `json:"ts"`
	Model  string `json:"model"`
	Source string `json:"source"`
}

// QuotaReport is the rolling-window view computed from QuotaState.
type QuotaReport struct {
	InWindow    int
	Limit       int
	WindowHours int
	// NextSlot is the time until the oldest message in the window expires.
	// Zero when under the limit.
	NextSlot time.Duration
}

// Remaining returns how many messages can still be sent in the window.
func (q *QuotaReport) Remaining() int {
	return max(q.Limit-q.InWindow, 0)
}

// ComputeQuota counts messages inside the rolling window ending at now.
// Unparseable timestamps are ignored.
func ComputeQuota(state *QuotaState, now time.Time) *QuotaReport {
	hours := state.WindowHours
	if hours <= 0 {
		hours = DefaultWindowHours
	}
	limit := state.MessageLimit
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	window := time.Duration(hours) * time.Hour
	cutoff := now.Add(-window)

	var inWindow []time.Time
	for _, m := range state.Messages {
		ts, err := time.Parse(time.RFC3339, m.TS)
		if err != nil {
			continue
		}
		if ts.After(cutoff) {
			inWindow = append(inWindow, ts)
		}
	}
	sort.Slice(inWindow, func(i, j int) bool { return inWindow[i].Before(inWindow[j]) })

	report := &QuotaReport{
		InWindow:    len(inWindow),
		Limit:       limit,
		WindowHours: hours,
	}
	if len(inWindow) >= limit && len(inWindow) > 0 {
		report.NextSlot = max(inWindow[0].Add(window).Sub(now), 0).Truncate(time.Second)
	}
	return report
}
