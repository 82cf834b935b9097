package imaging

import (
	"context"
	"time"

	"github.com/tinyland-inc/prompt-pulse-tui/internal/logger"
)

// Status is the state of the most recent fetch request.
type Status int

const (
	Idle Status = iota
	Pending
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Result is delivered back to the event loop when a fetch finishes.
type Result struct {
	Token uint64
	Entry *Entry
	Err   error
}

// Options configures a Pipeline.
type Options struct {
	Fetcher  Fetcher
	Endpoint string
	Category string
	// SaveDir, when set, receives a copy of every fetched image so it can be
	// reloaded with LoadDir on the next start.
	SaveDir  string
	Protocol Protocol
	Cell     CellSize
	Capacity int
	Logger   logger.Logger
}

// renderCacheSize is how many entries keep a cached rendering: the current
// image and the one shown before it.
const renderCacheSize = 2

// cachedRender is the latest rendering of one entry. A new size or protocol
// replaces it.
type cachedRender struct {
	entry      *Entry
	cols, rows int
	proto      Protocol
	lines      []string
}

// Pipeline owns the gallery and the fetch bookkeeping. It is not safe for
// concurrent use: every method except the function returned by Begin runs on
// the event loop.
type Pipeline struct {
	opts    Options
	gallery *Gallery

	token   uint64
	status  Status
	lastErr error
	lastAt  time.Time

	// renders is ordered oldest first.
	renders []cachedRender
}

// NewPipeline creates a pipeline with an empty gallery.
func NewPipeline(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Cell.W <= 0 || opts.Cell.H <= 0 {
		opts.Cell = DefaultCellSize
	}
	return &Pipeline{
		opts:    opts,
		gallery: NewGallery(opts.Capacity, nil),
	}
}

// Gallery exposes the gallery for navigation.
func (p *Pipeline) Gallery() *Gallery {
	return p.gallery
}

// Protocol returns the rendering protocol in use.
func (p *Pipeline) Protocol() Protocol {
	return p.opts.Protocol
}

// CanFetch reports whether a fetcher and endpoint are configured.
func (p *Pipeline) CanFetch() bool {
	return p.opts.Fetcher != nil && p.opts.Endpoint != ""
}

// Status returns the state of the latest request and its error, if failed.
func (p *Pipeline) Status() (Status, error) {
	return p.status, p.lastErr
}

// LastAt returns when the latest request finished.
func (p *Pipeline) LastAt() time.Time {
	return p.lastAt
}

// Token returns the most recently issued request token.
func (p *Pipeline) Token() uint64 {
	return p.token
}

// Seed adds entries without moving the cursor away from the first one.
func (p *Pipeline) Seed(entries ...*Entry) {
	for _, e := range entries {
		p.gallery.Add(e)
	}
	for p.gallery.Cursor() != 0 {
		p.gallery.Next()
	}
}

// Begin issues a new request token and returns the work to run off the event
// loop. Any request still in flight is superseded: its result will be
// discarded by Complete. Begin returns nil when fetching is not configured.
func (p *Pipeline) Begin() func(context.Context) Result {
	if !p.CanFetch() {
		return nil
	}
	p.token++
	p.status = Pending
	p.lastErr = nil

	token := p.token
	fetcher := p.opts.Fetcher
	endpoint, category, saveDir := p.opts.Endpoint, p.opts.Category, p.opts.SaveDir
	log := p.opts.Logger

	return func(ctx context.Context) Result {
		f, err := fetcher.Fetch(ctx, endpoint, category)
		if err != nil {
			return Result{Token: token, Err: fetchError(err, "Image fetch failed")}
		}
		entry, err := Decode(f.Data, TitleFromName(f.ID), Fetched)
		if err != nil {
			return Result{Token: token, Err: fetchError(err, "Fetched image could not be decoded")}
		}
		entry.Tags = f.Tags

		if saveDir != "" {
			if err := save(saveDir, f.Data, entry.Hash, entry.Format); err != nil {
				log.Warn("save fetched image: %v", err)
			}
		}
		return Result{Token: token, Entry: entry}
	}
}

// Complete applies a finished fetch. Results carrying a superseded token are
// dropped and false is returned. A failed fetch leaves the gallery and its
// cursor untouched.
func (p *Pipeline) Complete(r Result, now time.Time) (applied bool) {
	if r.Token != p.token {
		p.opts.Logger.Debug("discarding image result for token %d (current %d)", r.Token, p.token)
		return false
	}
	p.lastAt = now
	if r.Err != nil {
		p.status = Failed
		p.lastErr = r.Err
		p.opts.Logger.Warn("image fetch: %v", r.Err)
		return true
	}

	if _, dup := p.gallery.Add(r.Entry); dup {
		p.opts.Logger.Debug("fetched image already in gallery")
	}
	p.pruneRenders()
	p.status = Ready
	return true
}

// WantsPrefetch reports whether advancing onto the last entry should start a
// background fetch so the next image is ready.
func (p *Pipeline) WantsPrefetch() bool {
	if !p.CanFetch() || p.status == Pending {
		return false
	}
	g := p.gallery
	return g.Len() > 0 && g.Cursor() == g.Len()-1 && g.Len() < g.capacity
}

// Render returns the current image drawn into cols x rows cells, reusing the
// previous rendering when nothing changed. Only the latest rendering of the
// last renderCacheSize entries is kept.
func (p *Pipeline) Render(cols, rows int) ([]string, error) {
	entry, ok := p.gallery.Current()
	if !ok || cols <= 0 || rows <= 0 {
		return nil, nil
	}
	proto := p.opts.Protocol
	for i, c := range p.renders {
		if c.entry != entry {
			continue
		}
		if c.cols == cols && c.rows == rows && c.proto == proto {
			return c.lines, nil
		}
		p.renders = append(p.renders[:i], p.renders[i+1:]...)
		break
	}

	lines, err := Render(entry.Image, cols, rows, p.opts.Cell, proto)
	if err != nil {
		return nil, err
	}
	if len(p.renders) >= renderCacheSize {
		p.renders = append(p.renders[:0], p.renders[len(p.renders)-renderCacheSize+1:]...)
	}
	p.renders = append(p.renders, cachedRender{entry: entry, cols: cols, rows: rows, proto: proto, lines: lines})
	return lines, nil
}

// pruneRenders drops cached renderings of entries no longer in the gallery.
func (p *Pipeline) pruneRenders() {
	live := make(map[*Entry]bool, len(p.gallery.entries))
	for _, e := range p.gallery.entries {
		live[e] = true
	}
	kept := p.renders[:0]
	for _, c := range p.renders {
		if live[c.entry] {
			kept = append(kept, c)
		}
	}
	p.renders = kept
}
