// Package layout computes panel geometry for each dashboard tab.
//
// Compute is a pure function of its arguments: the same tab, terminal size
// and data shape always produce the same Plan.
package layout

import "strings"

// WideBreakpoint is the narrowest terminal that gets the wide arrangement.
const WideBreakpoint = 120

// Minimum viable panel size. Panels that cannot get this much are omitted.
const (
	MinPanelWidth  = 12
	MinPanelHeight = 3
)

// Tab is one dashboard page.
type Tab int

const (
	Dashboard Tab = iota
	System
	Network
	Billing
)

// Tabs lists every tab in display order.
var Tabs = []Tab{Dashboard, System, Network, Billing}

func (t Tab) String() string {
	switch t {
	case Dashboard:
		return "Dashboard"
	case System:
		return "System"
	case Network:
		return "Network"
	case Billing:
		return "Billing"
	default:
		return "Unknown"
	}
}

// ParseTab resolves a tab by case-insensitive name.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if strings.EqualFold(t.String(), s) {
			return t, true
		}
	}
	return Dashboard, false
}

// Next returns the tab after t, wrapping.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Prev returns the tab before t, wrapping.
func (t Tab) Prev() Tab {
	return Tabs[(int(t)+len(Tabs)-1)%len(Tabs)]
}

// Arrangement is the overall panel arrangement.
type Arrangement int

const (
	Narrow Arrangement = iota
	Wide
	Expanded
)

func (a Arrangement) String() string {
	switch a {
	case Wide:
		return "wide"
	case Expanded:
		return "expanded"
	default:
		return "narrow"
	}
}

// Panel names a widget slot.
type Panel string

const (
	PanelHost      Panel = "host"
	PanelSparks    Panel = "sparks"
	PanelCPU       Panel = "cpu"
	PanelCores     Panel = "cores"
	PanelMemory    Panel = "memory"
	PanelDisks     Panel = "disks"
	PanelTemps     Panel = "temps"
	PanelNetSparks Panel = "net-sparks"
	PanelNetwork   Panel = "network"
	PanelProcesses Panel = "processes"
	PanelMesh      Panel = "mesh"
	PanelCluster   Panel = "cluster"
	PanelUsage     Panel = "usage"
	PanelBilling   Panel = "billing"
	PanelQuota     Panel = "quota"
	PanelImage     Panel = "image"
)

// Rect is a region in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Placement assigns a panel to a region.
type Placement struct {
	Panel Panel
	Rect  Rect
}

// Plan is the geometry for one frame.
type Plan struct {
	Tab         Tab
	Arrangement Arrangement
	Width       int
	Height      int
	// TabBar is empty in expanded mode.
	TabBar Rect
	Status Rect
	Panels []Placement
}

// Rect returns the region for panel, if it was placed.
func (p Plan) Rect(panel Panel) (Rect, bool) {
	for _, pl := range p.Panels {
		if pl.Panel == panel {
			return pl.Rect, true
		}
	}
	return Rect{}, false
}

// Has reports whether panel was placed.
func (p Plan) Has(panel Panel) bool {
	_, ok := p.Rect(panel)
	return ok
}

// PanelAt returns the panel under the cell (x, y).
func (p Plan) PanelAt(x, y int) (Panel, bool) {
	for _, pl := range p.Panels {
		if pl.Rect.Contains(x, y) {
			return pl.Panel, true
		}
	}
	return "", false
}

// Shape describes the data that influences panel sizes.
type Shape struct {
	// Image shows the image panel on the Dashboard tab.
	Image bool
	// Expanded gives the image panel the whole screen.
	Expanded bool

	Cores      int
	Interfaces int
	Peers      int
	Clusters   int
}

// Compute lays out tab for a width x height terminal. Row 0 holds the tab bar
// and the last row the status line; panels share the rows in between.
func Compute(tab Tab, width, height int, shape Shape) Plan {
	plan := Plan{Tab: tab, Width: width, Height: height}
	if width <= 0 || height <= 0 {
		return plan
	}

	plan.Status = Rect{X: 0, Y: height - 1, W: width, H: 1}

	if shape.Expanded {
		plan.Arrangement = Expanded
		body := Rect{X: 0, Y: 0, W: width, H: height - 1}
		if body.W >= MinPanelWidth && body.H >= MinPanelHeight {
			plan.Panels = []Placement{{Panel: PanelImage, Rect: body}}
		}
		return plan
	}

	if width >= WideBreakpoint {
		plan.Arrangement = Wide
	}
	if height < 2 {
		return plan
	}
	plan.TabBar = Rect{X: 0, Y: 0, W: width, H: 1}

	body := Rect{X: 0, Y: 1, W: width, H: height - 2}
	if body.H < MinPanelHeight || body.W < MinPanelWidth {
		return plan
	}

	for _, col := range columnsFor(tab, plan.Arrangement, shape, body) {
		plan.Panels = append(plan.Panels, stack(col.rect, col.slots)...)
	}
	return plan
}
