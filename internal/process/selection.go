package process

import "time"

// ChordWindow is the longest gap between the two presses of the terminate
// chord.
const ChordWindow = 500 * time.Millisecond

// Selection is a cursor into the visible rows plus a scroll offset.
type Selection struct {
	Index  int
	Offset int
}

// Clamp keeps the cursor inside [0, n). With no rows the cursor sits at 0.
func (s *Selection) Clamp(n int) {
	if n <= 0 {
		s.Index, s.Offset = 0, 0
		return
	}
	if s.Index >= n {
		s.Index = n - 1
	}
	if s.Index < 0 {
		s.Index = 0
	}
	if s.Offset > s.Index {
		s.Offset = s.Index
	}
}

// Move shifts the cursor by delta rows, clamped to the list.
func (s *Selection) Move(delta, n int) {
	s.Index += delta
	s.Clamp(n)
}

// Top moves the cursor to the first row.
func (s *Selection) Top() {
	s.Index, s.Offset = 0, 0
}

// Bottom moves the cursor to the last row.
func (s *Selection) Bottom(n int) {
	s.Index = n - 1
	s.Clamp(n)
}

// Follow places the cursor on pid if it is still visible, otherwise clamps
// the current index. Used after a rebuild so the cursor stays on the same
// process while rows reorder.
func (s *Selection) Follow(t *Tree, pid int32) {
	if pid != 0 {
		if i := t.IndexOf(pid); i >= 0 {
			s.Index = i
		}
	}
	s.Clamp(t.Len())
}

// Visible adjusts Offset so the cursor lies inside a window of height rows
// and returns the [start, end) range of rows to draw.
func (s *Selection) Visible(height, n int) (start, end int) {
	if height <= 0 || n == 0 {
		return 0, 0
	}
	if s.Index < s.Offset {
		s.Offset = s.Index
	}
	if s.Index >= s.Offset+height {
		s.Offset = s.Index - height + 1
	}
	if s.Offset > n-height {
		s.Offset = max(n-height, 0)
	}
	end = min(s.Offset+height, n)
	return s.Offset, end
}

// Chord recognises a key pressed twice within Window.
type Chord struct {
	Window  time.Duration
	armedAt time.Time
	armed   bool
}

// NewChord returns a chord using ChordWindow.
func NewChord() *Chord {
	return &Chord{Window: ChordWindow}
}

// Press records a press at now. It returns true when this press completes the
// chord; the chord is then disarmed. A press after the window expired arms it
// again.
func (c *Chord) Press(now time.Time) bool {
	if c.Pending(now) {
		c.armed = false
		return true
	}
	c.armed = true
	c.armedAt = now
	return false
}

// Pending reports whether the first press happened and the window is open.
func (c *Chord) Pending(now time.Time) bool {
	return c.armed && now.Sub(c.armedAt) <= c.Window
}

// Reset disarms the chord.
func (c *Chord) Reset() {
	c.armed = false
}
