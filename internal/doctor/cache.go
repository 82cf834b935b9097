package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/collector"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
)

// CacheDirCheck verifies the daemon cache directory exists.
type CacheDirCheck struct {
	Dir string
}

func (c *CacheDirCheck) Name() string     { return "cache_dir" }
func (c *CacheDirCheck) Category() string { return CategoryCache }

func (c *CacheDirCheck) Run(context.Context) CheckResult {
	info, err := os.Stat(c.Dir)
	switch {
	case os.IsNotExist(err):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Cache directory missing: " + c.Dir,
			Suggestion: "Start the prompt-pulse daemon, or run 'pulse doctor --fix' to create it",
			Fixable:    true,
		}
	case err != nil:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't access %s: %v", c.Dir, err),
			Suggestion: "Check permissions on " + c.Dir,
		}
	case !info.IsDir():
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    c.Dir + " is not a directory",
			Suggestion: "Point general.cache_dir at a directory",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Cache directory: " + c.Dir,
	}
}

func (c *CacheDirCheck) Fix() error {
	return os.MkdirAll(c.Dir, 0o755)
}

// CacheFileCheck polls one cache collector the same way the dashboard does
// and reports whether its data is fresh.
type CacheFileCheck struct {
	Collector collector.Collector
	Now       func() time.Time
}

func (c *CacheFileCheck) Name() string     { return "cache_" + c.Collector.Kind().String() }
func (c *CacheFileCheck) Category() string { return CategoryCache }

func (c *CacheFileCheck) Run(ctx context.Context) CheckResult {
	d, err := c.Collector.Poll(ctx)
	if err != nil {
		res := failFrom(c.Name(), err, "Check the prompt-pulse daemon")
		// A missing file only means the daemon hasn't written it yet.
		if stderrors.Is(err, fs.ErrNotExist) {
			res.Status = StatusWarn
		}
		return res
	}

	mod, stale := cacheAge(d)
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	ago := humanize.RelTime(mod, now(), "ago", "from now")
	if stale {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s is stale (updated %s)", c.Collector.Kind(), ago),
			Suggestion: "The daemon may have stopped; data older than " + collector.MaxCacheAge.String() + " is flagged",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s updated %s", c.Collector.Kind(), ago),
	}
}

func (c *CacheFileCheck) Fix() error {
	return nil
}

func cacheAge(d collector.Delta) (time.Time, bool) {
	switch v := d.(type) {
	case collector.CacheDelta[collector.MeshStatus]:
		return v.ModTime, v.Stale
	case collector.CacheDelta[collector.ClusterStatus]:
		return v.ModTime, v.Stale
	case collector.CacheDelta[collector.BillingReport]:
		return v.ModTime, v.Stale
	case collector.CacheDelta[collector.UsageReport]:
		return v.ModTime, v.Stale
	case collector.CacheDelta[collector.QuotaReport]:
		return v.ModTime, v.Stale
	}
	return time.Time{}, false
}

// NewCacheChecks creates the cache directory check plus one check per
// enabled cache collector.
func NewCacheChecks(cfg *config.Config, now func() time.Time) []Check {
	checks := []Check{&CacheDirCheck{Dir: cfg.General.CacheDir}}
	for _, c := range collector.EnabledCaches(cfg, now) {
		checks = append(checks, &CacheFileCheck{Collector: c, Now: now})
	}
	return checks
}
