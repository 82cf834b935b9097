// Package collector contains one adapter per data source shown by the
// dashboard: the real-time system collector and the readers for the JSON
// cache files the prompt-pulse daemon maintains.
//
// Collectors are independent. A failed poll never touches another collector's
// state; the caller records it on that collector's Snapshot.
package collector

import (
	"context"
	"time"
)

// Kind identifies a collector. The set is closed.
type Kind int

const (
	System Kind = iota
	Mesh
	Cluster
	Billing
	Usage
	Quota
)

// CacheKinds lists the cache-backed collectors in display order.
var CacheKinds = []Kind{Mesh, Cluster, Billing, Usage, Quota}

func (k Kind) String() string {
	switch k {
	case System:
		return "system"
	case Mesh:
		return "tailscale"
	case Cluster:
		return "k8s"
	case Billing:
		return "billing"
	case Usage:
		return "claude"
	case Quota:
		return "claude-personal"
	default:
		return "unknown"
	}
}

// CacheInterval is how often cache-backed collectors re-read their file,
// independent of the dashboard tick.
const CacheInterval = 5 * time.Second

// MaxCacheAge is the file age after which cached data is flagged stale.
const MaxCacheAge = 5 * time.Minute

// Collector polls one source.
type Collector interface {
	Kind() Kind
	Poll(ctx context.Context) (Delta, error)
}

// Delta is the result of a successful poll. Implementations are SystemDelta
// and CacheDelta.
type Delta interface {
	delta()
}

// Cadence tracks when a collector is next due.
type Cadence struct {
	Interval time.Duration
	last     time.Time
	polled   bool
}

// Due reports whether the interval has elapsed since the last attempt.
// A cadence that has never been marked is always due.
func (c *Cadence) Due(now time.Time) bool {
	if !c.polled {
		return true
	}
	return now.Sub(c.last) >= c.Interval
}

// Mark records an attempt at now, successful or not.
func (c *Cadence) Mark(now time.Time) {
	c.last = now
	c.polled = true
}

// Snapshot is the last known state of one collector. A failure keeps the
// previous Data.
type Snapshot[T any] struct {
	Data *T

	// UpdatedAt is when Data was last replaced.
	UpdatedAt time.Time
	// SourceTime is the modification time of the backing file, if any.
	SourceTime time.Time
	// Stale is set when the backing file is older than MaxCacheAge.
	Stale bool

	Err   error
	ErrAt time.Time
}

// Apply stores fresh data and clears the last error.
func (s *Snapshot[T]) Apply(data *T, sourceTime time.Time, stale bool, now time.Time) {
	s.Data = data
	s.UpdatedAt = now
	s.SourceTime = sourceTime
	s.Stale = stale
	s.Err = nil
	s.ErrAt = time.Time{}
}

// Fail records err without discarding Data.
func (s *Snapshot[T]) Fail(err error, now time.Time) {
	s.Err = err
	s.ErrAt = now
}

// HasData reports whether a successful poll ever happened.
func (s *Snapshot[T]) HasData() bool {
	return s.Data != nil
}

// Degraded reports whether the panel should show a stale or error marker.
func (s *Snapshot[T]) Degraded() bool {
	return s.Err != nil || s.Stale
}
