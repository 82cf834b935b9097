package collector

import (
	"context"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CacheDelta carries a freshly decoded cache document.
type CacheDelta[T any] struct {
	Data    *T
	ModTime time.Time
	Stale   bool
}

func (CacheDelta[T]) delta() {}

// CacheFile reads <dir>/<kind>.json and decodes it into T.
type CacheFile[T any] struct {
	kind   Kind
	path   string
	decode func(raw []byte, now time.Time) (*T, error)
	now    func() time.Time
}

func newCacheFile[T any](kind Kind, dir string, now func() time.Time) *CacheFile[T] {
	if now == nil {
		now = time.Now
	}
	return &CacheFile[T]{
		kind: kind,
		path: filepath.Join(dir, kind.String()+".json"),
		decode: func(raw []byte, _ time.Time) (*T, error) {
			v := new(T)
			if err := json.Unmarshal(raw, v); err != nil {
				return nil, err
			}
			return v, nil
		},
		now: now,
	}
}

// NewMesh reads tailscale.json.
func NewMesh(dir string, now func() time.Time) *CacheFile[MeshStatus] {
	return newCacheFile[MeshStatus](Mesh, dir, now)
}

// NewCluster reads k8s.json.
func NewCluster(dir string, now func() time.Time) *CacheFile[ClusterStatus] {
	return newCacheFile[ClusterStatus](Cluster, dir, now)
}

// NewBilling reads billing.json.
func NewBilling(dir string, now func() time.Time) *CacheFile[BillingReport] {
	return newCacheFile[BillingReport](Billing, dir, now)
}

// NewUsage reads claude.json.
func NewUsage(dir string, now func() time.Time) *CacheFile[UsageReport] {
	return newCacheFile[UsageReport](Usage, dir, now)
}

// NewQuota reads claude-personal.json and reduces it to a QuotaReport for
// the window ending at the poll time.
func NewQuota(dir string, now func() time.Time) *CacheFile[QuotaReport] {
	c := newCacheFile[QuotaReport](Quota, dir, now)
	c.decode = func(raw []byte, at time.Time) (*QuotaReport, error) {
		var state QuotaState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, err
		}
		return ComputeQuota(&state, at), nil
	}
	return c
}

// Kind implements Collector.
func (c *CacheFile[T]) Kind() Kind {
	return c.kind
}

// Path returns the file this collector reads.
func (c *CacheFile[T]) Path() string {
	return c.path
}

// Poll implements Collector. Missing, unreadable and malformed files are
// COLLECTOR errors.
func (c *CacheFile[T]) Poll(ctx context.Context) (Delta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(c.path)

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrCollector,
				"No data: "+name+" not found",
				"Start the prompt-pulse daemon so it can populate "+filepath.Dir(c.path))
		}
		return nil, errors.WrapWithCode(err, errors.ErrCollector,
			"Can't access "+name,
			"Check permissions on "+c.path)
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollector,
			"Can't read "+name,
			"Check permissions on "+c.path)
	}

	now := c.now()
	data, err := c.decode(raw, now)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollector,
			"Malformed "+name,
			"The daemon may be mid-write; it will be re-read shortly")
	}

	return CacheDelta[T]{
		Data:    data,
		ModTime: info.ModTime(),
		Stale:   now.Sub(info.ModTime()) > MaxCacheAge,
	}, nil
}

// EnabledCaches builds the cache-backed collectors switched on in cfg, in
// display order, reading from cfg.General.CacheDir.
func EnabledCaches(cfg *config.Config, now func() time.Time) []Collector {
	dir := cfg.General.CacheDir
	var out []Collector
	if cfg.Collectors.Tailscale.Enabled {
		out = append(out, NewMesh(dir, now))
	}
	if cfg.Collectors.Kubernetes.Enabled {
		out = append(out, NewCluster(dir, now))
	}
	if cfg.Collectors.Billing.Enabled {
		out = append(out, NewBilling(dir, now))
	}
	if cfg.Collectors.Claude.Enabled {
		out = append(out, NewUsage(dir, now))
	}
	if cfg.Collectors.Quota.Enabled {
		out = append(out, NewQuota(dir, now))
	}
	return out
}
