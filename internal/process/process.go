// Package process turns flat process snapshots into a sorted, filtered
// process tree and tracks the list selection and kill chord.
//
// Trees are rebuilt wholesale on every refresh. Nodes live in a flat arena and
// refer to their parent and children by index.
package process

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// State is a coarse process state.
type State string

const (
	StateRunning  State = "R"
	StateSleeping State = "S"
	StateIdle     State = "I"
	StateStopped  State = "T"
	StateZombie   State = "Z"
	StateUnknown  State = "?"
)

// Record is one process from a snapshot.
type Record struct {
	PID     int32
	PPID    int32
	Name    string
	Command string
	User    string
	CPU     float64 // percent of one core
	Memory  uint64  // resident bytes
	State   State
	RunTime time.Duration
}

// Signal is the kind of signal sent to a process.
type Signal int

const (
	// Terminate asks the process to exit gracefully (SIGTERM).
	Terminate Signal = iota
	// Kill forces the process to exit (SIGKILL).
	Kill
)

func (s Signal) String() string {
	switch s {
	case Terminate:
		return "SIGTERM"
	case Kill:
		return "SIGKILL"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Lister returns the current flat process list.
type Lister interface {
	List(ctx context.Context) ([]Record, error)
}

// Signaler delivers a signal to a process.
type Signaler interface {
	Signal(pid int32, sig Signal) error
}

// SortKey selects the column processes are ordered by.
type SortKey int

const (
	SortCPU SortKey = iota
	SortMemory
	SortPID
	SortName
)

func (k SortKey) String() string {
	switch k {
	case SortCPU:
		return "cpu"
	case SortMemory:
		return "mem"
	case SortPID:
		return "pid"
	case SortName:
		return "name"
	default:
		return "unknown"
	}
}

// less reports whether a sorts before b for key in its natural direction:
// CPU and memory descending, PID and name ascending.
func (k SortKey) less(a, b *Record) bool {
	switch k {
	case SortMemory:
		return a.Memory > b.Memory
	case SortPID:
		return a.PID < b.PID
	case SortName:
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	default:
		return a.CPU > b.CPU
	}
}

// Matches reports whether r matches filter: a case-insensitive substring of
// the name or command, or a substring of the PID. An empty filter matches
// everything.
func Matches(r *Record, filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	if strings.Contains(strings.ToLower(r.Name), f) {
		return true
	}
	if strings.Contains(fmt.Sprint(r.PID), f) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Command), f)
}
