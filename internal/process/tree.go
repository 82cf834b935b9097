package process

import "sort"

// Options control how a snapshot is arranged into rows.
type Options struct {
	Sort    SortKey
	Reverse bool
	// Filter keeps matching processes. In tree mode their ancestors are kept
	// too, marked as not matching.
	Filter string
	// Tree arranges rows as a parent/child hierarchy instead of a flat list.
	Tree bool
	// Collapsed hides the descendants of these PIDs in tree mode.
	Collapsed map[int32]bool
	// Limit caps the number of rows; zero means no cap.
	Limit int
}

// Node is one process in the arena. Parent is -1 for roots.
type Node struct {
	Record
	Parent   int
	Children []int
	Matched  bool
}

// Row is a single line of the flattened, visible process list.
type Row struct {
	Record
	Depth       int
	Prefix      string // tree glyphs drawn before the name
	HasChildren bool
	Collapsed   bool
	Matched     bool
}

// Tree is a process forest built from one snapshot.
type Tree struct {
	nodes []Node
	roots []int
	total int
	rows  []Row
}

// Build arranges records into a tree according to opts. Duplicate PIDs keep
// their first occurrence. A record is a root when its parent PID is zero,
// equal to its own PID, or absent from the snapshot. Parent links that form a
// cycle are broken by promoting the first record of the cycle (in input order)
// to a root.
func Build(records []Record, opts Options) *Tree {
	t := &Tree{}

	index := make(map[int32]int, len(records))
	for _, r := range records {
		if _, dup := index[r.PID]; dup {
			continue
		}
		index[r.PID] = len(t.nodes)
		t.nodes = append(t.nodes, Node{Record: r, Parent: -1})
	}
	t.total = len(t.nodes)

	for i := range t.nodes {
		n := &t.nodes[i]
		if n.PPID == 0 || n.PPID == n.PID {
			continue
		}
		if p, ok := index[n.PPID]; ok {
			n.Parent = p
		}
	}
	t.breakCycles()
	t.linkChildren()

	order := t.preorder()
	keep := make([]bool, len(t.nodes))
	for _, i := range order {
		t.nodes[i].Matched = Matches(&t.nodes[i].Record, opts.Filter)
		keep[i] = t.nodes[i].Matched
	}
	if opts.Tree {
		// Children follow their parent in preorder, so walking backwards
		// settles every subtree before its root.
		for j := len(order) - 1; j >= 0; j-- {
			i := order[j]
			if keep[i] && t.nodes[i].Parent >= 0 {
				keep[t.nodes[i].Parent] = true
			}
		}
		t.prune(keep)
	} else {
		// Flat mode: every matching record is a root.
		t.roots = t.roots[:0]
		for _, i := range order {
			if keep[i] {
				t.roots = append(t.roots, i)
			}
		}
		sort.Ints(t.roots)
		for i := range t.nodes {
			t.nodes[i].Children = nil
		}
	}

	t.sortAll(opts.Sort, opts.Reverse)
	t.rows = t.flatten(opts)
	return t
}

// breakCycles promotes nodes unreachable from any root.
func (t *Tree) breakCycles() {
	reached := make([]bool, len(t.nodes))
	children := make(map[int][]int)
	for i, n := range t.nodes {
		if n.Parent >= 0 {
			children[n.Parent] = append(children[n.Parent], i)
		}
	}
	mark := func(root int) {
		stack := []int{root}
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reached[i] {
				continue
			}
			reached[i] = true
			stack = append(stack, children[i]...)
		}
	}
	for i, n := range t.nodes {
		if n.Parent < 0 {
			mark(i)
		}
	}
	for i := range t.nodes {
		if reached[i] {
			continue
		}
		t.nodes[i].Parent = -1
		mark(i)
	}
}

func (t *Tree) linkChildren() {
	t.roots = t.roots[:0]
	for i := range t.nodes {
		p := t.nodes[i].Parent
		if p < 0 {
			t.roots = append(t.roots, i)
			continue
		}
		t.nodes[p].Children = append(t.nodes[p].Children, i)
	}
}

// preorder returns node indices in depth-first order from the roots.
func (t *Tree) preorder() []int {
	order := make([]int, 0, len(t.nodes))
	stack := make([]int, 0, len(t.roots))
	for j := len(t.roots) - 1; j >= 0; j-- {
		stack = append(stack, t.roots[j])
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, i)
		kids := t.nodes[i].Children
		for j := len(kids) - 1; j >= 0; j-- {
			stack = append(stack, kids[j])
		}
	}
	return order
}

// prune drops every node whose keep flag is false.
func (t *Tree) prune(keep []bool) {
	filter := func(ids []int) []int {
		out := ids[:0]
		for _, i := range ids {
			if keep[i] {
				out = append(out, i)
			}
		}
		return out
	}
	t.roots = filter(t.roots)
	for i := range t.nodes {
		if keep[i] {
			t.nodes[i].Children = filter(t.nodes[i].Children)
		} else {
			t.nodes[i].Children = nil
		}
	}
}

func (t *Tree) sortAll(key SortKey, reverse bool) {
	sortIDs := func(ids []int) {
		sort.SliceStable(ids, func(a, b int) bool {
			ra, rb := &t.nodes[ids[a]].Record, &t.nodes[ids[b]].Record
			if reverse {
				return key.less(rb, ra)
			}
			return key.less(ra, rb)
		})
	}
	sortIDs(t.roots)
	for i := range t.nodes {
		if len(t.nodes[i].Children) > 1 {
			sortIDs(t.nodes[i].Children)
		}
	}
}

func (t *Tree) flatten(opts Options) []Row {
	type frame struct {
		idx    int
		depth  int
		prefix string
		last   bool
	}

	rows := make([]Row, 0, len(t.nodes))
	stack := make([]frame, 0, len(t.roots))
	for j := len(t.roots) - 1; j >= 0; j-- {
		stack = append(stack, frame{idx: t.roots[j], last: j == len(t.roots)-1})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[f.idx]

		row := Row{
			Record:      n.Record,
			Depth:       f.depth,
			HasChildren: len(n.Children) > 0,
			Matched:     n.Matched,
		}
		childPrefix := ""
		if f.depth > 0 {
			if f.last {
				row.Prefix = f.prefix + "└─ "
				childPrefix = f.prefix + "   "
			} else {
				row.Prefix = f.prefix + "├─ "
				childPrefix = f.prefix + "│  "
			}
		}
		if opts.Tree && row.HasChildren && opts.Collapsed[n.PID] {
			row.Collapsed = true
		}
		rows = append(rows, row)

		if row.Collapsed {
			continue
		}
		kids := n.Children
		for j := len(kids) - 1; j >= 0; j-- {
			stack = append(stack, frame{
				idx:    kids[j],
				depth:  f.depth + 1,
				prefix: childPrefix,
				last:   j == len(kids)-1,
			})
		}
	}

	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	return rows
}

// Rows returns the visible rows in display order.
func (t *Tree) Rows() []Row {
	return t.rows
}

// Len returns the number of visible rows.
func (t *Tree) Len() int {
	return len(t.rows)
}

// Total returns the number of distinct processes in the snapshot, before
// filtering.
func (t *Tree) Total() int {
	return t.total
}

// Row returns the visible row at i.
func (t *Tree) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// IndexOf returns the visible row index of pid, or -1.
func (t *Tree) IndexOf(pid int32) int {
	for i, r := range t.rows {
		if r.PID == pid {
			return i
		}
	}
	return -1
}

// Nodes exposes the arena for read-only inspection.
func (t *Tree) Nodes() []Node {
	return t.nodes
}
