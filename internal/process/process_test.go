package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func pids(rows []Row) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.PID
	}
	return out
}

// sample is a small forest:
//
//	1 init
//	├─ 10 sshd
//	│  └─ 11 bash
//	│     └─ 12 vim
//	└─ 20 dockerd
//	   └─ 21 containerd
//	30 orphan (parent 999 missing)
func sample() []Record {
	return []Record{
		{PID: 1, PPID: 0, Name: "init", CPU: 0.1, Memory: 100},
		{PID: 10, PPID: 1, Name: "sshd", CPU: 1, Memory: 300},
		{PID: 11, PPID: 10, Name: "bash", CPU: 2, Memory: 200},
		{PID: 12, PPID: 11, Name: "vim", CPU: 40, Memory: 900, Command: "vim notes.md"},
		{PID: 20, PPID: 1, Name: "dockerd", CPU: 5, Memory: 800},
		{PID: 21, PPID: 20, Name: "containerd", CPU: 3, Memory: 700},
		{PID: 30, PPID: 999, Name: "orphan", CPU: 0, Memory: 50},
	}
}

func TestSortKeys(t *testing.T) {
	recs := []Record{
		{PID: 1, Name: "A", CPU: 10},
		{PID: 2, Name: "B", CPU: 50},
		{PID: 3, Name: "C", CPU: 30},
	}

	tree := Build(recs, Options{Sort: SortCPU})
	assert.Equal(t, []string{"B", "C", "A"}, names(tree.Rows()))

	tree = Build(recs, Options{Sort: SortCPU, Reverse: true})
	assert.Equal(t, []string{"A", "C", "B"}, names(tree.Rows()))
}

func TestSortOtherKeys(t *testing.T) {
	recs := []Record{
		{PID: 5, Name: "zsh", Memory: 10},
		{PID: 2, Name: "Bash", Memory: 30},
		{PID: 9, Name: "awk", Memory: 20},
	}
	tests := []struct {
		key  SortKey
		want []int32
	}{
		{SortMemory, []int32{2, 9, 5}},
		{SortPID, []int32{2, 5, 9}},
		{SortName, []int32{9, 2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, pids(Build(recs, Options{Sort: tt.key}).Rows()))
		})
	}
}

func TestSortIsStable(t *testing.T) {
	recs := []Record{
		{PID: 3, Name: "c", CPU: 1},
		{PID: 1, Name: "a", CPU: 1},
		{PID: 2, Name: "b", CPU: 1},
	}
	assert.Equal(t, []int32{3, 1, 2}, pids(Build(recs, Options{Sort: SortCPU}).Rows()))
	assert.Equal(t, []int32{3, 1, 2}, pids(Build(recs, Options{Sort: SortCPU, Reverse: true}).Rows()))
}

func TestBuildTreeStructure(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortPID, Tree: true})
	rows := tree.Rows()

	assert.Equal(t, []int32{1, 10, 11, 12, 20, 21, 30}, pids(rows))
	depths := make([]int, len(rows))
	for i, r := range rows {
		depths[i] = r.Depth
	}
	assert.Equal(t, []int{0, 1, 2, 3, 1, 2, 0}, depths)

	assert.Equal(t, "", rows[0].Prefix)
	assert.Equal(t, "├─ ", rows[1].Prefix)
	assert.Equal(t, "│  └─ ", rows[2].Prefix)
	assert.Equal(t, "└─ ", rows[4].Prefix)
	assert.True(t, rows[0].HasChildren)
	assert.False(t, rows[3].HasChildren)
}

func TestBuildChildrenSortedByKey(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortCPU, Tree: true})
	// dockerd (5%) sorts above sshd (1%) under init.
	assert.Equal(t, []int32{1, 20, 21, 10, 11, 12, 30}, pids(tree.Rows()))
}

func TestEveryRecordAppearsOnce(t *testing.T) {
	sets := map[string][]Record{
		"forest": sample(),
		"self parent": {
			{PID: 5, PPID: 5, Name: "self"},
			{PID: 6, PPID: 5, Name: "child"},
		},
		"two cycle": {
			{PID: 1, PPID: 2, Name: "a"},
			{PID: 2, PPID: 1, Name: "b"},
			{PID: 3, PPID: 0, Name: "c"},
		},
		"three cycle with tail": {
			{PID: 7, PPID: 9, Name: "x"},
			{PID: 8, PPID: 7, Name: "y"},
			{PID: 9, PPID: 8, Name: "z"},
			{PID: 10, PPID: 9, Name: "tail"},
		},
		"duplicate pid": {
			{PID: 1, Name: "first"},
			{PID: 1, Name: "second"},
			{PID: 2, PPID: 1, Name: "kid"},
		},
	}

	for name, recs := range sets {
		t.Run(name, func(t *testing.T) {
			tree := Build(recs, Options{Tree: true})
			seen := map[int32]int{}
			for _, r := range tree.Rows() {
				seen[r.PID]++
			}
			for _, r := range recs {
				assert.Equal(t, 1, seen[r.PID], "pid %d", r.PID)
			}
			assert.Equal(t, len(seen), tree.Total())
		})
	}
}

func TestCycleBrokenAtFirstRecord(t *testing.T) {
	recs := []Record{
		{PID: 1, PPID: 2, Name: "a"},
		{PID: 2, PPID: 1, Name: "b"},
	}
	rows := Build(recs, Options{Tree: true}).Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int32(1), rows[0].PID)
	assert.Equal(t, 0, rows[0].Depth)
	assert.Equal(t, 1, rows[1].Depth)
}

func TestDuplicateKeepsFirst(t *testing.T) {
	rows := Build([]Record{{PID: 1, Name: "first"}, {PID: 1, Name: "second"}}, Options{}).Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "first", rows[0].Name)
}

func TestFilterPrunesBranches(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortPID, Tree: true, Filter: "VIM"})
	rows := tree.Rows()

	assert.Equal(t, []int32{1, 10, 11, 12}, pids(rows))
	assert.False(t, rows[0].Matched, "ancestor kept only for its descendant")
	assert.True(t, rows[3].Matched)
	assert.Equal(t, 7, tree.Total())
}

func TestFilterByPIDAndCommand(t *testing.T) {
	tree := Build(sample(), Options{Filter: "21"})
	assert.Equal(t, []int32{21}, pids(tree.Rows()))

	tree = Build(sample(), Options{Filter: "notes.md"})
	assert.Equal(t, []int32{12}, pids(tree.Rows()))
}

func TestFilterFlatModeDropsAncestors(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortPID, Filter: "er"})
	for _, r := range tree.Rows() {
		assert.True(t, r.Matched)
		assert.Equal(t, 0, r.Depth)
	}
	assert.Equal(t, []int32{20, 21}, pids(tree.Rows()))
}

func TestRemovingFilterNeverExceedsUnfiltered(t *testing.T) {
	unfiltered := Build(sample(), Options{Tree: true}).Len()
	for _, f := range []string{"", "a", "sh", "1", "zzz", "containerd"} {
		for _, treeMode := range []bool{true, false} {
			n := Build(sample(), Options{Tree: treeMode, Filter: f}).Len()
			assert.LessOrEqual(t, n, unfiltered, "filter %q tree=%v", f, treeMode)
		}
	}
}

func TestNoMatches(t *testing.T) {
	tree := Build(sample(), Options{Tree: true, Filter: "nothing-matches"})
	assert.Equal(t, 0, tree.Len())
	_, ok := tree.Row(0)
	assert.False(t, ok)
}

func TestCollapse(t *testing.T) {
	tree := Build(sample(), Options{
		Sort:      SortPID,
		Tree:      true,
		Collapsed: map[int32]bool{10: true, 12: true},
	})
	rows := tree.Rows()
	assert.Equal(t, []int32{1, 10, 20, 21, 30}, pids(rows))
	assert.True(t, rows[1].Collapsed)
	assert.False(t, rows[2].Collapsed)
}

func TestLimit(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortPID, Limit: 3})
	assert.Equal(t, []int32{1, 10, 11}, pids(tree.Rows()))
	assert.Equal(t, 7, tree.Total())
}

func TestIndexOf(t *testing.T) {
	tree := Build(sample(), Options{Sort: SortPID})
	assert.Equal(t, 2, tree.IndexOf(11))
	assert.Equal(t, -1, tree.IndexOf(4242))
}

func TestSelectionClamp(t *testing.T) {
	s := Selection{Index: 10}
	s.Clamp(4)
	assert.Equal(t, 3, s.Index)

	s.Clamp(0)
	assert.Equal(t, 0, s.Index)

	s.Index = -3
	s.Clamp(5)
	assert.Equal(t, 0, s.Index)
}

func TestSelectionClampAfterFilter(t *testing.T) {
	full := Build(sample(), Options{Sort: SortPID})
	s := Selection{}
	s.Bottom(full.Len())
	assert.Equal(t, 6, s.Index)

	filtered := Build(sample(), Options{Sort: SortPID, Filter: "sh"})
	s.Clamp(filtered.Len())
	assert.Equal(t, filtered.Len()-1, s.Index)
}

func TestSelectionMoveAndEdges(t *testing.T) {
	s := Selection{}
	s.Move(3, 5)
	assert.Equal(t, 3, s.Index)
	s.Move(10, 5)
	assert.Equal(t, 4, s.Index)
	s.Move(-10, 5)
	assert.Equal(t, 0, s.Index)
	s.Bottom(5)
	assert.Equal(t, 4, s.Index)
	s.Top()
	assert.Equal(t, 0, s.Index)
}

func TestSelectionFollow(t *testing.T) {
	s := Selection{}
	byPID := Build(sample(), Options{Sort: SortPID})
	s.Index = byPID.IndexOf(12)

	byCPU := Build(sample(), Options{Sort: SortCPU})
	s.Follow(byCPU, 12)
	row, ok := byCPU.Row(s.Index)
	require.True(t, ok)
	assert.Equal(t, int32(12), row.PID)

	gone := Build(sample()[:2], Options{})
	s.Index = 5
	s.Follow(gone, 12)
	assert.Equal(t, 1, s.Index)
}

func TestSelectionVisible(t *testing.T) {
	s := Selection{}
	start, end := s.Visible(3, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)

	s.Index = 7
	start, end = s.Visible(3, 10)
	assert.Equal(t, 5, start)
	assert.Equal(t, 8, end)

	s.Index = 2
	start, _ = s.Visible(3, 10)
	assert.Equal(t, 2, start)

	start, end = s.Visible(0, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestChord(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("second press inside window fires", func(t *testing.T) {
		c := NewChord()
		assert.False(t, c.Press(base))
		assert.True(t, c.Pending(base.Add(100*time.Millisecond)))
		assert.True(t, c.Press(base.Add(ChordWindow)))
		assert.False(t, c.Pending(base.Add(ChordWindow)))
	})

	t.Run("second press after window re-arms", func(t *testing.T) {
		c := NewChord()
		assert.False(t, c.Press(base))
		late := base.Add(ChordWindow + time.Millisecond)
		assert.False(t, c.Press(late))
		assert.True(t, c.Press(late.Add(10*time.Millisecond)))
	})

	t.Run("reset disarms", func(t *testing.T) {
		c := NewChord()
		c.Press(base)
		c.Reset()
		assert.False(t, c.Press(base.Add(time.Millisecond)))
	})
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "SIGTERM", Terminate.String())
	assert.Equal(t, "SIGKILL", Kill.String())
}
