package layout

// stack allocates the column's height to its slots top-down.
//
// Slots are dropped, least important first, until every remaining minimum
// fits. Spare rows then raise slots toward their preferred height in priority
// order, and whatever is left is shared by the flex slots (or by the last
// slot when none flexes).
func stack(col Rect, slots []slot) []Placement {
	if col.W < MinPanelWidth || col.H < MinPanelHeight {
		return nil
	}

	kept := make([]slot, len(slots))
	copy(kept, slots)
	for len(kept) > 0 && sumMin(kept) > col.H {
		kept = dropLeastImportant(kept)
	}
	if len(kept) == 0 {
		return nil
	}

	heights := make([]int, len(kept))
	for i, s := range kept {
		heights[i] = s.min
	}
	spare := col.H - sumMin(kept)

	for _, i := range byPriority(kept) {
		if spare == 0 {
			break
		}
		grow := min(max(kept[i].pref-heights[i], 0), spare)
		heights[i] += grow
		spare -= grow
	}

	if spare > 0 {
		var flexIdx []int
		for i, s := range kept {
			if s.flex {
				flexIdx = append(flexIdx, i)
			}
		}
		if len(flexIdx) == 0 {
			flexIdx = []int{len(kept) - 1}
		}
		share, rem := spare/len(flexIdx), spare%len(flexIdx)
		for j, i := range flexIdx {
			heights[i] += share
			if j < rem {
				heights[i]++
			}
		}
	}

	var out []Placement
	y := col.Y
	for i, s := range kept {
		band := Rect{X: col.X, Y: y, W: col.W, H: heights[i]}
		out = append(out, splitBand(band, s.panels)...)
		y += heights[i]
	}
	return out
}

func sumMin(slots []slot) int {
	n := 0
	for _, s := range slots {
		n += s.min
	}
	return n
}

// dropLeastImportant removes the slot with the highest priority number,
// preferring the lower one on ties.
func dropLeastImportant(slots []slot) []slot {
	worst := 0
	for i, s := range slots {
		if s.priority >= slots[worst].priority {
			worst = i
		}
	}
	return append(slots[:worst:worst], slots[worst+1:]...)
}

// byPriority returns slot indices ordered most important first, ties top-down.
func byPriority(slots []slot) []int {
	idx := make([]int, len(slots))
	for i := range idx {
		idx[i] = i
	}
	// Insertion sort keeps ties in column order.
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && slots[idx[j]].priority < slots[idx[j-1]].priority; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return idx
}

// splitBand divides band evenly between panels left to right. Panels that
// would be narrower than MinPanelWidth are dropped from the right.
func splitBand(band Rect, panels []Panel) []Placement {
	n := len(panels)
	for n > 1 && band.W/n < MinPanelWidth {
		n--
	}
	if n == 0 || band.W < MinPanelWidth || band.H < 1 {
		return nil
	}

	out := make([]Placement, 0, n)
	x := band.X
	w, rem := band.W/n, band.W%n
	for i := 0; i < n; i++ {
		pw := w
		if i == n-1 {
			pw += rem
		}
		out = append(out, Placement{Panel: panels[i], Rect: Rect{X: x, Y: band.Y, W: pw, H: band.H}})
		x += pw
	}
	return out
}
