// Package history keeps bounded rolling samples per metric series for the
// dashboard's sparklines and graphs.
//
// A series has one or more lanes (per-core CPU, RX and TX on one timeline).
// Lanes of a series are pushed together, so index i in every lane refers to
// the same tick. History is owned by the event loop and is not safe for
// concurrent use.
package history

// DefaultCapacity is the default number of samples retained per lane.
const DefaultCapacity = 60

// Series identifiers used by the dashboard.
const (
	CPU      = "cpu"
	CPUCores = "cpu.cores"
	Memory   = "mem"
	Swap     = "swap"
	Load1    = "load1"
	Temp     = "temp"
	Net      = "net"
)

// Lane indices for the Net series.
const (
	LaneRX = 0
	LaneTX = 1
)

// History manages ring buffers keyed by series id.
type History struct {
	capacity int
	series   map[string]*series
}

type series struct {
	lanes []*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// New creates a history whose series hold capacity samples per lane.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		series:   make(map[string]*series),
	}
}

// Capacity returns the per-lane capacity.
func (h *History) Capacity() int {
	return h.capacity
}

// Push appends a scalar sample to a single-lane series, creating it if needed.
func (h *History) Push(id string, v float64) {
	h.PushLanes(id, []float64{v})
}

// PushLanes appends one sample per lane. If the number of lanes grows (a CPU
// comes online), new lanes are back-filled with zeros so every lane keeps the
// same length. Missing trailing values are recorded as zero.
func (h *History) PushLanes(id string, values []float64) {
	if len(values) == 0 {
		return
	}
	s := h.getOrCreate(id)

	for len(s.lanes) < len(values) {
		lane := newRingBuffer(h.capacity)
		if len(s.lanes) > 0 {
			for i := 0; i < s.lanes[0].count; i++ {
				lane.push(0)
			}
		}
		s.lanes = append(s.lanes, lane)
	}

	for i, lane := range s.lanes {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		lane.push(v)
	}
}

// Snapshot returns the first lane of a series, oldest to newest.
// Unknown series yield an empty slice.
func (h *History) Snapshot(id string) []float64 {
	return h.Last(id, h.capacity)
}

// Last returns up to n most recent samples of the first lane, oldest first.
func (h *History) Last(id string, n int) []float64 {
	s, ok := h.series[id]
	if !ok || len(s.lanes) == 0 {
		return []float64{}
	}
	return s.lanes[0].getLast(n)
}

// Lanes returns every lane of a series, each oldest to newest.
func (h *History) Lanes(id string) [][]float64 {
	s, ok := h.series[id]
	if !ok {
		return nil
	}
	out := make([][]float64, len(s.lanes))
	for i, lane := range s.lanes {
		out[i] = lane.getLast(h.capacity)
	}
	return out
}

// Lane returns a single lane of a series, or an empty slice if it does not exist.
func (h *History) Lane(id string, lane int) []float64 {
	s, ok := h.series[id]
	if !ok || lane < 0 || lane >= len(s.lanes) {
		return []float64{}
	}
	return s.lanes[lane].getLast(h.capacity)
}

// Len returns the number of samples currently held by a series.
func (h *History) Len(id string) int {
	s, ok := h.series[id]
	if !ok || len(s.lanes) == 0 {
		return 0
	}
	return s.lanes[0].count
}

// Total returns the sum of Len over every series. Used to assert that
// nothing advanced.
func (h *History) Total() int {
	n := 0
	for id := range h.series {
		n += h.Len(id)
	}
	return n
}

// getOrCreate returns the series for id, creating it if needed.
func (h *History) getOrCreate(id string) *series {
	s, ok := h.series[id]
	if !ok {
		s = &series{}
		h.series[id] = s
	}
	return s
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, overwriting the oldest once the buffer is full.
func (r *ringBuffer) push(v float64) {
	r.data[r.head] = v
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last n values in chronological order (oldest first).
func (r *ringBuffer) getLast(n int) []float64 {
	if n <= 0 || r.count == 0 {
		return []float64{}
	}
	if n > r.count {
		n = r.count
	}

	result := make([]float64, n)
	start := (r.head - n + r.size) % r.size
	for i := 0; i < n; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
