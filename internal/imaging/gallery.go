package imaging

import (
	"image"
	"math/rand/v2"
	"path/filepath"
	"strings"
)

// DefaultGalleryCapacity bounds the number of images held in memory.
const DefaultGalleryCapacity = 32

// Origin says where a gallery entry came from.
type Origin int

const (
	Bundled Origin = iota
	Disk
	Fetched
)

func (o Origin) String() string {
	switch o {
	case Disk:
		return "disk"
	case Fetched:
		return "fetched"
	default:
		return "bundled"
	}
}

// Entry is one decoded image plus display metadata.
type Entry struct {
	Image  image.Image
	Title  string
	Tags   []string
	Origin Origin
	// Format is the decoder name, e.g. "png" or "webp".
	Format string
	// Hash is the xxh3 hash of the encoded bytes, used to skip duplicates.
	Hash uint64
	// Width and Height are the source dimensions.
	Width, Height int
}

// Gallery is an ordered set of images with a wrapping cursor.
type Gallery struct {
	entries  []*Entry
	cursor   int
	capacity int
	rnd      *rand.Rand
}

// NewGallery creates an empty gallery. rnd may be nil for a randomly seeded
// source.
func NewGallery(capacity int, rnd *rand.Rand) *Gallery {
	if capacity <= 0 {
		capacity = DefaultGalleryCapacity
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Gallery{capacity: capacity, rnd: rnd}
}

// Len returns the number of entries.
func (g *Gallery) Len() int {
	return len(g.entries)
}

// Cursor returns the index of the current entry.
func (g *Gallery) Cursor() int {
	return g.cursor
}

// Current returns the entry under the cursor.
func (g *Gallery) Current() (*Entry, bool) {
	if len(g.entries) == 0 {
		return nil, false
	}
	return g.entries[g.cursor], true
}

// Next advances the cursor, wrapping to the first entry.
func (g *Gallery) Next() {
	if n := len(g.entries); n > 0 {
		g.cursor = (g.cursor + 1) % n
	}
}

// Previous moves the cursor back, wrapping to the last entry.
func (g *Gallery) Previous() {
	if n := len(g.entries); n > 0 {
		g.cursor = (g.cursor - 1 + n) % n
	}
}

// Random moves the cursor to a uniformly chosen entry other than the current
// one. With fewer than two entries it does nothing.
func (g *Gallery) Random() {
	n := len(g.entries)
	if n < 2 {
		return
	}
	i := g.rnd.IntN(n - 1)
	if i >= g.cursor {
		i++
	}
	g.cursor = i
}

// Add appends e and moves the cursor to it. If an entry with the same hash
// already exists the cursor moves there instead and dup is true. When the
// gallery is full the oldest non-bundled entry is evicted first.
func (g *Gallery) Add(e *Entry) (index int, dup bool) {
	if e.Hash != 0 {
		for i, existing := range g.entries {
			if existing.Hash == e.Hash {
				g.cursor = i
				return i, true
			}
		}
	}

	if len(g.entries) >= g.capacity {
		g.evictOldest()
	}
	g.entries = append(g.entries, e)
	g.cursor = len(g.entries) - 1
	return g.cursor, false
}

func (g *Gallery) evictOldest() {
	victim := 0
	for i, e := range g.entries {
		if e.Origin != Bundled {
			victim = i
			break
		}
	}
	g.entries = append(g.entries[:victim], g.entries[victim+1:]...)
	if g.cursor > victim {
		g.cursor--
	}
	if g.cursor >= len(g.entries) {
		g.cursor = max(len(g.entries)-1, 0)
	}
}

// TitleFromName turns a file name or id into a display title:
// "banner-cool_cat.png" becomes "banner cool cat".
func TitleFromName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); ext != "" && len(ext) < len(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}
