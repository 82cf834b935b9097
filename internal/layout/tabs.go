package layout

// slot is one vertical band of a column. A band listing several panels
// splits its width evenly between them.
type slot struct {
	panels   []Panel
	min      int
	pref     int
	priority int // lower is more important
	flex     bool
}

func one(p Panel, min, pref, priority int) slot {
	return slot{panels: []Panel{p}, min: min, pref: pref, priority: priority}
}

func flex(s slot) slot {
	s.flex = true
	return s
}

func side(min, pref, priority int, panels ...Panel) slot {
	return slot{panels: panels, min: min, pref: pref, priority: priority}
}

type column struct {
	rect  Rect
	slots []slot
}

// splitCols divides body into two columns, the left taking pct percent.
func splitCols(body Rect, pct int) (Rect, Rect) {
	lw := body.W * pct / 100
	left := Rect{X: body.X, Y: body.Y, W: lw, H: body.H}
	right := Rect{X: body.X + lw, Y: body.Y, W: body.W - lw, H: body.H}
	return left, right
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Preferred heights that follow the data.
func coreBarsHeight(cores int) int   { return clamp((cores+1)/2+2, 3, 10) }
func coreSparksHeight(cores int) int { return clamp((cores+1)/2+2, 4, 14) }
func meshHeight(peers int) int       { return clamp(peers+3, 4, 12) }
func networkHeight(ifaces int) int   { return clamp(ifaces+3, 4, 10) }
func clusterHeight(clusters int) int { return clamp(clusters*3+2, 4, 10) }

func columnsFor(tab Tab, arr Arrangement, s Shape, body Rect) []column {
	wide := arr == Wide
	switch tab {
	case System:
		if wide {
			left, right := splitCols(body, 50)
			return []column{
				{left, []slot{
					one(PanelSparks, 3, 5, 1),
					one(PanelCores, 4, coreSparksHeight(s.Cores), 2),
					one(PanelMemory, 4, 6, 3),
					flex(side(3, 6, 4, PanelDisks, PanelTemps)),
				}},
				{right, []slot{
					one(PanelNetSparks, 3, 5, 3),
					flex(one(PanelProcesses, 6, body.H*55/100, 1)),
					one(PanelNetwork, 4, networkHeight(s.Interfaces), 2),
				}},
			}
		}
		return []column{{body, []slot{
			one(PanelSparks, 3, 4, 2),
			one(PanelCPU, 3, coreBarsHeight(s.Cores), 4),
			one(PanelMemory, 4, 6, 5),
			one(PanelNetSparks, 3, 4, 6),
			flex(one(PanelProcesses, 5, 10, 1)),
			one(PanelDisks, 3, 6, 7),
			one(PanelTemps, 3, 6, 8),
			one(PanelNetwork, 3, networkHeight(s.Interfaces), 3),
		}}}

	case Network:
		slots := []slot{
			one(PanelNetSparks, 3, 5, 2),
			one(PanelNetwork, 4, networkHeight(s.Interfaces), 1),
		}
		if wide {
			slots = append(slots, flex(side(4, meshHeight(s.Peers), 3, PanelMesh, PanelCluster)))
		} else {
			slots = append(slots,
				flex(one(PanelMesh, 4, meshHeight(s.Peers), 3)),
				flex(one(PanelCluster, 4, clusterHeight(s.Clusters), 4)),
			)
		}
		return []column{{body, slots}}

	case Billing:
		if wide {
			return []column{{body, []slot{
				one(PanelQuota, 3, 5, 1),
				flex(side(5, 12, 2, PanelUsage, PanelBilling)),
			}}}
		}
		return []column{{body, []slot{
			one(PanelQuota, 3, 5, 1),
			flex(one(PanelUsage, 5, 10, 2)),
			flex(one(PanelBilling, 5, 10, 3)),
		}}}

	default:
		if wide {
			left, right := splitCols(body, 55)
			leftSlots := []slot{
				one(PanelHost, 5, 9, 1),
				one(PanelSparks, 3, 5, 2),
				one(PanelCPU, 3, coreBarsHeight(s.Cores), 4),
				one(PanelMemory, 4, 6, 3),
				flex(one(PanelDisks, 3, 6, 5)),
			}
			var rightSlots []slot
			if s.Image {
				rightSlots = []slot{
					flex(one(PanelImage, 6, body.H/2, 2)),
					one(PanelMesh, 4, meshHeight(s.Peers), 1),
					flex(side(4, 6, 3, PanelUsage, PanelBilling)),
				}
			} else {
				rightSlots = []slot{
					one(PanelMesh, 4, meshHeight(s.Peers), 1),
					one(PanelCluster, 4, clusterHeight(s.Clusters), 2),
					flex(side(4, 6, 3, PanelUsage, PanelBilling)),
				}
			}
			return []column{{left, leftSlots}, {right, rightSlots}}
		}
		slots := []slot{
			one(PanelHost, 5, 8, 1),
			one(PanelSparks, 3, 4, 2),
			one(PanelMemory, 3, 4, 4),
			one(PanelDisks, 3, 4, 6),
		}
		if s.Image {
			slots = append(slots, one(PanelImage, 6, 10, 3))
		}
		slots = append(slots,
			one(PanelMesh, 4, 6, 5),
			flex(side(3, 5, 7, PanelUsage, PanelBilling)),
		)
		return []column{{body, slots}}
	}
}
