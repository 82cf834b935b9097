package collector

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/process"
)

// HostInfo is static information gathered once.
type HostInfo struct {
	Hostname string
	OS       string
	Platform string
	Kernel   string
	Arch     string
	CPUModel string
	Cores    int
	BootTime time.Time
}

// InterfaceRate is throughput for one network interface.
type InterfaceRate struct {
	Name    string
	RxRate  float64 // bytes/s
	TxRate  float64 // bytes/s
	RxTotal uint64
	TxTotal uint64
}

// DiskUsage is usage of one mounted filesystem.
type DiskUsage struct {
	Mount   string
	FSType  string
	Total   uint64
	Used    uint64
	Percent float64
}

// Temperature is one sensor reading.
type Temperature struct {
	Sensor  string
	Celsius float64
}

// SystemMetrics is one real-time sample of the local machine.
type SystemMetrics struct {
	Host   HostInfo
	Uptime time.Duration

	CPU   float64   // overall percent
	Cores []float64 // per-core percent

	MemTotal     uint64
	MemUsed      uint64
	MemAvailable uint64
	MemPercent   float64
	SwapTotal    uint64
	SwapUsed     uint64
	SwapPercent  float64

	Load1, Load5, Load15 float64

	Interfaces []InterfaceRate
	RxRate     float64 // non-loopback total, bytes/s
	TxRate     float64

	Disks   []DiskUsage
	Temps   []Temperature
	MaxTemp float64

	ProcessCount int
}

// SystemDelta is the result of one System poll.
type SystemDelta struct {
	Metrics   *SystemMetrics
	Processes []process.Record
	// ProcessErr is set when metrics were gathered but listing processes failed.
	ProcessErr error
}

func (SystemDelta) delta() {}

// SystemCollector samples the local machine with gopsutil on every tick.
type SystemCollector struct {
	procs process.Lister
	now   func() time.Time
	host  *HostInfo
	rates *rateTracker
}

// NewSystem creates the real-time collector. procs may be nil to skip the
// process list.
func NewSystem(procs process.Lister, now func() time.Time) *SystemCollector {
	if now == nil {
		now = time.Now
	}
	return &SystemCollector{
		procs: procs,
		now:   now,
		rates: newRateTracker(),
	}
}

// Kind implements Collector.
func (s *SystemCollector) Kind() Kind { return System }

// Poll implements Collector. CPU and memory are required; every other metric
// is best effort.
func (s *SystemCollector) Poll(ctx context.Context) (Delta, error) {
	m := &SystemMetrics{}

	if s.host == nil {
		s.host = gatherHost(ctx)
	}
	m.Host = *s.host
	if !m.Host.BootTime.IsZero() {
		m.Uptime = s.now().Sub(m.Host.BootTime).Truncate(time.Second)
	}

	cores, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollector,
			"Can't read CPU usage", "")
	}
	m.Cores = cores
	m.CPU = average(cores)

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollector,
			"Can't read memory usage", "")
	}
	m.MemTotal = vm.Total
	m.MemUsed = vm.Used
	m.MemAvailable = vm.Available
	m.MemPercent = vm.UsedPercent

	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		m.SwapTotal = sw.Total
		m.SwapUsed = sw.Used
		m.SwapPercent = sw.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		m.Load1, m.Load5, m.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	if counters, err := net.IOCountersWithContext(ctx, true); err == nil {
		samples := make([]ifaceCounter, 0, len(counters))
		for _, c := range counters {
			samples = append(samples, ifaceCounter{name: c.Name, rx: c.BytesRecv, tx: c.BytesSent})
		}
		m.Interfaces = s.rates.update(samples, s.now())
		for _, r := range m.Interfaces {
			if isLoopback(r.Name) {
				continue
			}
			m.RxRate += r.RxRate
			m.TxRate += r.TxRate
		}
	}

	m.Disks = gatherDisks(ctx)
	m.Temps, m.MaxTemp = gatherTemps(ctx)

	delta := SystemDelta{Metrics: m}
	if s.procs != nil {
		recs, err := s.procs.List(ctx)
		if err != nil {
			delta.ProcessErr = errors.WrapWithCode(err, errors.ErrCollector,
				"Can't list processes", "")
		} else {
			delta.Processes = recs
			m.ProcessCount = len(recs)
		}
	}
	return delta, nil
}

func gatherHost(ctx context.Context) *HostInfo {
	h := &HostInfo{Arch: runtime.GOARCH}
	if info, err := host.InfoWithContext(ctx); err == nil {
		h.Hostname = info.Hostname
		h.OS = info.OS
		h.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		h.Kernel = info.KernelVersion
		h.BootTime = time.Unix(int64(info.BootTime), 0)
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		h.CPUModel = cpus[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		h.Cores = n
	}
	return h
}

// Pseudo filesystems that never matter for a disk panel.
var ignoredFSTypes = map[string]bool{
	"tmpfs": true, "devtmpfs": true, "overlay": true, "squashfs": true,
	"proc": true, "sysfs": true, "cgroup": true, "cgroup2": true,
	"devfs": true, "autofs": true, "nullfs": true,
}

func gatherDisks(ctx context.Context) []DiskUsage {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil
	}
	var out []DiskUsage
	seen := map[string]bool{}
	for _, p := range parts {
		if ignoredFSTypes[p.Fstype] || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true
		u, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		out = append(out, DiskUsage{
			Mount:   p.Mountpoint,
			FSType:  p.Fstype,
			Total:   u.Total,
			Used:    u.Used,
			Percent: u.UsedPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mount < out[j].Mount })
	return out
}

// gatherTemps returns sensors with a plausible reading and the hottest one.
// SensorsTemperatures may return readings together with a partial error.
func gatherTemps(ctx context.Context) ([]Temperature, float64) {
	stats, _ := host.SensorsTemperaturesWithContext(ctx)
	var out []Temperature
	var hottest float64
	for _, s := range stats {
		if s.Temperature <= 0 || s.Temperature > 150 {
			continue
		}
		out = append(out, Temperature{Sensor: s.SensorKey, Celsius: s.Temperature})
		if s.Temperature > hottest {
			hottest = s.Temperature
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sensor < out[j].Sensor })
	return out, hottest
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func isLoopback(name string) bool {
	return name == "lo" || strings.HasPrefix(name, "lo0")
}

type ifaceCounter struct {
	name   string
	rx, tx uint64
}

// rateTracker turns cumulative interface counters into per-second rates.
type rateTracker struct {
	last map[string]ifaceCounter
	at   time.Time
}

func newRateTracker() *rateTracker {
	return &rateTracker{last: make(map[string]ifaceCounter)}
}

// update returns rates since the previous call. The first sample of an
// interface reports zero. Counter resets report zero rather than a negative rate.
func (r *rateTracker) update(samples []ifaceCounter, now time.Time) []InterfaceRate {
	elapsed := now.Sub(r.at).Seconds()
	out := make([]InterfaceRate, 0, len(samples))
	next := make(map[string]ifaceCounter, len(samples))

	for _, s := range samples {
		rate := InterfaceRate{Name: s.name, RxTotal: s.rx, TxTotal: s.tx}
		if prev, ok := r.last[s.name]; ok && elapsed > 0 {
			if s.rx >= prev.rx {
				rate.RxRate = float64(s.rx-prev.rx) / elapsed
			}
			if s.tx >= prev.tx {
				rate.TxRate = float64(s.tx-prev.tx) / elapsed
			}
		}
		next[s.name] = s
		out = append(out, rate)
	}

	r.last = next
	r.at = now
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
