package collector

import (
	"context"
	"strconv"
	"strings"
	"time"

	gproc "github.com/shirou/gopsutil/v3/process"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/process"
)

// OSProcesses lists local processes and delivers signals through gopsutil.
// Handles are kept between calls so CPU percentages are measured over the
// interval since the previous listing rather than the process lifetime.
type OSProcesses struct {
	handles map[int32]*trackedProc
	now     func() time.Time
}

type trackedProc struct {
	proc    *gproc.Process
	created int64
}

// NewOSProcesses creates a process source for the local machine.
func NewOSProcesses() *OSProcesses {
	return &OSProcesses{
		handles: make(map[int32]*trackedProc),
		now:     time.Now,
	}
}

var stateByStatus = map[string]process.State{
	gproc.Running: process.StateRunning,
	gproc.Blocked: process.StateSleeping,
	gproc.Sleep:   process.StateSleeping,
	gproc.Idle:    process.StateIdle,
	gproc.Stop:    process.StateStopped,
	gproc.Wait:    process.StateSleeping,
	gproc.Lock:    process.StateSleeping,
	gproc.Zombie:  process.StateZombie,
}

// List implements process.Lister. Processes that vanish or deny access
// mid-listing are skipped.
func (o *OSProcesses) List(ctx context.Context) ([]process.Record, error) {
	pids, err := gproc.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}

	now := o.now()
	live := make(map[int32]*trackedProc, len(pids))
	out := make([]process.Record, 0, len(pids))

	for _, pid := range pids {
		tp := o.handles[pid]
		if tp == nil {
			p, err := gproc.NewProcessWithContext(ctx, pid)
			if err != nil {
				continue
			}
			created, _ := p.CreateTimeWithContext(ctx)
			tp = &trackedProc{proc: p, created: created}
		}
		live[pid] = tp
		p := tp.proc

		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		ppid, _ := p.PpidWithContext(ctx)
		cmdline, _ := p.CmdlineWithContext(ctx)
		user, _ := p.UsernameWithContext(ctx)
		pct, _ := p.PercentWithContext(ctx, 0)

		var rss uint64
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
			rss = mi.RSS
		}

		state := process.StateUnknown
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			if s, ok := stateByStatus[st[0]]; ok {
				state = s
			}
		}

		var runTime time.Duration
		if tp.created > 0 {
			runTime = now.Sub(time.UnixMilli(tp.created)).Truncate(time.Second)
		}

		if cmdline == "" {
			cmdline = name
		}
		out = append(out, process.Record{
			PID:     pid,
			PPID:    ppid,
			Name:    name,
			Command: strings.TrimSpace(cmdline),
			User:    user,
			CPU:     pct,
			Memory:  rss,
			State:   state,
			RunTime: runTime,
		})
	}

	o.handles = live
	return out, nil
}

// Signal implements process.Signaler.
func (o *OSProcesses) Signal(pid int32, sig process.Signal) error {
	p, err := gproc.NewProcess(pid)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSignal,
			"Can't find process "+itoa(pid), "It may have already exited")
	}
	switch sig {
	case process.Kill:
		err = p.Kill()
	default:
		err = p.Terminate()
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSignal,
			"Failed to send "+sig.String()+" to "+itoa(pid),
			"You may not own this process")
	}
	return nil
}

func itoa(pid int32) string {
	return strconv.FormatInt(int64(pid), 10)
}
