package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNegotiatePriority(t *testing.T) {
	sixelReply := func() (string, error) { return "\x1b[?62;4;22c", nil }

	tests := []struct {
		name       string
		probe      Probe
		wantProto  Protocol
		wantSource Source
	}{
		{
			name:       "override beats environment",
			probe:      Probe{Override: "sixel", Getenv: env(map[string]string{"TERM": "xterm-kitty"})},
			wantProto:  Sixel,
			wantSource: SourceOverride,
		},
		{
			name:       "auto override falls through to environment",
			probe:      Probe{Override: "auto", Getenv: env(map[string]string{"TERM_PROGRAM": "iTerm.app"}), Query: sixelReply},
			wantProto:  ITerm2,
			wantSource: SourceEnv,
		},
		{
			name:       "unknown override is ignored",
			probe:      Probe{Override: "braille", Getenv: env(map[string]string{"KITTY_WINDOW_ID": "1"})},
			wantProto:  Kitty,
			wantSource: SourceEnv,
		},
		{
			name:       "query used when environment is silent",
			probe:      Probe{Getenv: env(nil), Query: sixelReply},
			wantProto:  Sixel,
			wantSource: SourceQuery,
		},
		{
			name: "query error falls back",
			probe: Probe{Getenv: env(nil), Query: func() (string, error) {
				return "", assert.AnError
			}},
			wantProto:  Halfblocks,
			wantSource: SourceFallback,
		},
		{
			name:       "nothing known",
			probe:      Probe{Getenv: env(map[string]string{"TERM": "xterm-256color"})},
			wantProto:  Halfblocks,
			wantSource: SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto, source := Negotiate(tt.probe)
			assert.Equal(t, tt.wantProto, proto)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		vars map[string]string
		want Protocol
		ok   bool
	}{
		{map[string]string{"TERM": "xterm-kitty"}, Kitty, true},
		{map[string]string{"TERM_PROGRAM": "ghostty"}, Kitty, true},
		{map[string]string{"TERM_PROGRAM": "WezTerm"}, ITerm2, true},
		{map[string]string{"LC_TERMINAL": "iTerm2"}, ITerm2, true},
		{map[string]string{"TERM": "foot"}, Sixel, true},
		{map[string]string{"TERM": "xterm-sixel"}, Sixel, true},
		{map[string]string{"TERM": "screen"}, Halfblocks, false},
	}
	for _, tt := range tests {
		got, ok := FromEnv(env(tt.vars))
		assert.Equal(t, tt.ok, ok, "%v", tt.vars)
		assert.Equal(t, tt.want, got, "%v", tt.vars)
	}
}

func TestFromQueryReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Protocol
		ok    bool
	}{
		{"kitty ok", "\x1b_Gi=31;OK\x1b\\\x1b[?62;22c", Kitty, true},
		{"sixel attribute", "\x1b[?64;1;4;6c", Sixel, true},
		{"no sixel", "\x1b[?62;22c", Halfblocks, false},
		{"attribute 42 is not 4", "\x1b[?62;42c", Halfblocks, false},
		{"garbage", "hello", Halfblocks, false},
		{"unterminated", "\x1b[?62;4", Halfblocks, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromQueryReply(tt.reply)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProtocol(t *testing.T) {
	p, ok, err := ParseProtocol("Kitty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Kitty, p)

	_, ok, err = ParseProtocol("auto")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseProtocol("ascii")
	assert.Error(t, err)
}

func TestSessionNegotiatesOnce(t *testing.T) {
	calls := 0
	s := NewSession(Probe{
		Getenv: env(nil),
		Query: func() (string, error) {
			calls++
			return "\x1b[?62;4c", nil
		},
	})

	assert.Equal(t, Sixel, s.Protocol())
	assert.Equal(t, Sixel, s.Protocol())
	assert.Equal(t, SourceQuery, s.Source())
	assert.Equal(t, 1, calls)
}

func TestCoverDimensions(t *testing.T) {
	src := solid(640, 480, color.White)
	for _, size := range [][2]int{{10, 10}, {80, 20}, {3, 90}, {640, 480}} {
		dst := Cover(src, size[0], size[1])
		assert.Equal(t, size[0], dst.Bounds().Dx())
		assert.Equal(t, size[1], dst.Bounds().Dy())
	}

	empty := Cover(src, 0, 5)
	assert.True(t, empty.Bounds().Empty())
}

func TestCoverCropsSymmetrically(t *testing.T) {
	// Three vertical bands; covering a square keeps only the middle band.
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	bands := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			src.SetRGBA(x, y, bands[x/100])
		}
	}

	dst := Cover(src, 10, 10)
	for _, p := range []image.Point{{0, 5}, {5, 5}, {9, 5}} {
		c := dst.RGBAAt(p.X, p.Y)
		assert.Greater(t, c.G, uint8(200), "pixel %v", p)
		assert.Less(t, c.R, uint8(60), "pixel %v", p)
		assert.Less(t, c.B, uint8(60), "pixel %v", p)
	}
}

func TestRenderHalfblocks(t *testing.T) {
	lines, err := Render(solid(40, 40, color.White), 12, 5, DefaultCellSize, Halfblocks)
	require.NoError(t, err)
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Equal(t, 12, strings.Count(l, "▀"))
	}
}

func TestRenderGraphicsProtocols(t *testing.T) {
	img := solid(32, 32, color.RGBA{10, 20, 30, 255})

	tests := []struct {
		proto  Protocol
		prefix string
	}{
		{Kitty, "\x1b_Ga=T,f=100,q=2,C=1,c=6,r=3,"},
		{ITerm2, "\x1b]1337;File=inline=1;"},
		{Sixel, "\x1bP"},
	}
	for _, tt := range tests {
		t.Run(tt.proto.String(), func(t *testing.T) {
			lines, err := Render(img, 6, 3, CellSize{W: 4, H: 8}, tt.proto)
			require.NoError(t, err)
			require.Len(t, lines, 3)
			assert.True(t, strings.HasPrefix(lines[0], tt.prefix), "got %q", lines[0][:min(len(lines[0]), 40)])
			assert.Equal(t, "      ", lines[1])
			assert.Equal(t, "      ", lines[2])
		})
	}
}

func TestRenderNothing(t *testing.T) {
	lines, err := Render(solid(4, 4, color.White), 0, 3, DefaultCellSize, Halfblocks)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func galleryOf(n int) *Gallery {
	g := NewGallery(0, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < n; i++ {
		g.Add(&Entry{Title: string(rune('a' + i)), Hash: uint64(i + 1), Origin: Fetched})
	}
	return g
}

func TestGalleryNextPreviousRoundTrip(t *testing.T) {
	for n := 1; n <= 5; n++ {
		g := galleryOf(n)
		for start := 0; start < n; start++ {
			for g.Cursor() != start {
				g.Next()
			}
			g.Next()
			g.Previous()
			assert.Equal(t, start, g.Cursor(), "n=%d", n)
		}
	}
}

func TestGalleryWraps(t *testing.T) {
	g := galleryOf(4)
	for g.Cursor() != 0 {
		g.Next()
	}
	g.Previous()
	assert.Equal(t, 3, g.Cursor())
	g.Next()
	assert.Equal(t, 0, g.Cursor())
}

func TestGalleryEmpty(t *testing.T) {
	g := NewGallery(0, nil)
	g.Next()
	g.Previous()
	g.Random()
	_, ok := g.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, g.Cursor())
}

func TestGalleryRandomExcludesCurrent(t *testing.T) {
	g := galleryOf(4)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		before := g.Cursor()
		g.Random()
		assert.NotEqual(t, before, g.Cursor())
		seen[g.Cursor()] = true
	}
	assert.Len(t, seen, 4)

	single := galleryOf(1)
	single.Random()
	assert.Equal(t, 0, single.Cursor())
}

func TestGalleryAddMovesCursorAndDedups(t *testing.T) {
	g := galleryOf(3)
	g.Previous()
	g.Previous()
	assert.Equal(t, 0, g.Cursor())

	idx, dup := g.Add(&Entry{Title: "new", Hash: 99})
	assert.False(t, dup)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 3, g.Cursor())

	idx, dup = g.Add(&Entry{Title: "again", Hash: 2})
	assert.True(t, dup)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, g.Cursor())
	assert.Equal(t, 4, g.Len())
}

func TestGalleryEvictsOldestFetched(t *testing.T) {
	g := NewGallery(3, nil)
	g.Add(&Entry{Title: "bundled", Origin: Bundled})
	g.Add(&Entry{Title: "one", Hash: 1, Origin: Fetched})
	g.Add(&Entry{Title: "two", Hash: 2, Origin: Fetched})
	g.Add(&Entry{Title: "three", Hash: 3, Origin: Fetched})

	require.Equal(t, 3, g.Len())
	var titles []string
	for i := 0; i < g.Len(); i++ {
		titles = append(titles, g.entries[i].Title)
	}
	assert.Equal(t, []string{"bundled", "two", "three"}, titles)
	cur, _ := g.Current()
	assert.Equal(t, "three", cur.Title)
}

func TestTitleFromName(t *testing.T) {
	tests := map[string]string{
		"banner-cool_cat.png":     "banner cool cat",
		"/tmp/waifu/sunset.webp":  "sunset",
		"plain":                   "plain",
		".hidden":                 ".hidden",
		"https://x.io/a/b-c.jpeg": "b c",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleFromName(in), in)
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder()
	assert.Equal(t, Bundled, p.Origin)
	assert.Equal(t, p.Width, p.Image.Bounds().Dx())
	assert.Equal(t, p.Height, p.Image.Bounds().Dy())
}

type fakeFetcher struct {
	data        []byte
	err         error
	gotCategory string
}

func (f *fakeFetcher) Fetch(_ context.Context, _, category string) (*Download, error) {
	f.gotCategory = category
	if f.err != nil {
		return nil, f.err
	}
	return &Download{Data: f.data, ID: "night_sky.png", Tags: []string{"sky"}}, nil
}

func TestPipelineWithoutFetcher(t *testing.T) {
	p := NewPipeline(Options{})
	assert.False(t, p.CanFetch())
	assert.Nil(t, p.Begin())
	st, _ := p.Status()
	assert.Equal(t, Idle, st)
}

func TestPipelineFetchAppends(t *testing.T) {
	f := &fakeFetcher{data: pngBytes(t, solid(8, 8, color.White))}
	p := NewPipeline(Options{Fetcher: f, Endpoint: "http://images", Category: "sfw"})
	p.Seed(Placeholder())

	work := p.Begin()
	require.NotNil(t, work)
	st, _ := p.Status()
	assert.Equal(t, Pending, st)

	res := work(context.Background())
	assert.True(t, p.Complete(res, time.Unix(100, 0)))

	st, err := p.Status()
	assert.Equal(t, Ready, st)
	assert.NoError(t, err)
	assert.Equal(t, "sfw", f.gotCategory)
	assert.Equal(t, 2, p.Gallery().Len())
	assert.Equal(t, 1, p.Gallery().Cursor())

	cur, _ := p.Gallery().Current()
	assert.Equal(t, "night sky", cur.Title)
	assert.Equal(t, []string{"sky"}, cur.Tags)
	assert.Equal(t, "png", cur.Format)
	assert.Equal(t, Fetched, cur.Origin)
	assert.Equal(t, time.Unix(100, 0), p.LastAt())
}

func TestPipelineFailedFetchLeavesGallery(t *testing.T) {
	f := &fakeFetcher{err: assert.AnError}
	p := NewPipeline(Options{Fetcher: f, Endpoint: "http://images"})
	p.Seed(Placeholder(), &Entry{Title: "b", Hash: 7, Origin: Disk})
	p.Gallery().Next()
	lenBefore, cursorBefore := p.Gallery().Len(), p.Gallery().Cursor()

	res := p.Begin()(context.Background())
	assert.True(t, p.Complete(res, time.Now()))

	st, err := p.Status()
	assert.Equal(t, Failed, st)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Equal(t, lenBefore, p.Gallery().Len())
	assert.Equal(t, cursorBefore, p.Gallery().Cursor())
}

func TestPipelineUndecodableFetch(t *testing.T) {
	f := &fakeFetcher{data: []byte("not an image")}
	p := NewPipeline(Options{Fetcher: f, Endpoint: "http://images"})

	res := p.Begin()(context.Background())
	p.Complete(res, time.Now())
	st, err := p.Status()
	assert.Equal(t, Failed, st)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Equal(t, 0, p.Gallery().Len())
}

func TestPipelineDiscardsSupersededResult(t *testing.T) {
	f := &fakeFetcher{data: pngBytes(t, solid(8, 8, color.Black))}
	p := NewPipeline(Options{Fetcher: f, Endpoint: "http://images"})

	first := p.Begin()
	second := p.Begin()
	assert.Equal(t, uint64(2), p.Token())

	stale := first(context.Background())
	assert.False(t, p.Complete(stale, time.Now()))
	assert.Equal(t, 0, p.Gallery().Len())
	st, _ := p.Status()
	assert.Equal(t, Pending, st)

	fresh := second(context.Background())
	assert.True(t, p.Complete(fresh, time.Now()))
	assert.Equal(t, 1, p.Gallery().Len())
}

func TestPipelineSavesFetchedImages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "waifu")
	data := pngBytes(t, solid(6, 6, color.White))
	p := NewPipeline(Options{Fetcher: &fakeFetcher{data: data}, Endpoint: "http://images", SaveDir: dir})

	p.Complete(p.Begin()(context.Background()), time.Now())

	loaded := LoadDir(dir)
	require.Len(t, loaded, 1)
	assert.Equal(t, Disk, loaded[0].Origin)
	cur, _ := p.Gallery().Current()
	assert.Equal(t, cur.Hash, loaded[0].Hash)
}

func TestPipelineWantsPrefetch(t *testing.T) {
	p := NewPipeline(Options{Fetcher: &fakeFetcher{}, Endpoint: "http://images"})
	p.Seed(Placeholder(), &Entry{Title: "b", Hash: 3, Origin: Disk})
	assert.False(t, p.WantsPrefetch())

	p.Gallery().Next()
	assert.True(t, p.WantsPrefetch())

	p.Begin()
	assert.False(t, p.WantsPrefetch())
}

func TestPipelineRenderCaches(t *testing.T) {
	p := NewPipeline(Options{Protocol: Halfblocks})
	lines, err := p.Render(4, 2)
	require.NoError(t, err)
	assert.Nil(t, lines)

	p.Seed(Placeholder())
	a, err := p.Render(4, 2)
	require.NoError(t, err)
	require.Len(t, a, 2)
	b, _ := p.Render(4, 2)
	assert.Equal(t, a, b)
	assert.Len(t, p.renders, 1)
}

func TestPipelineRenderCacheBoundedAcrossResizes(t *testing.T) {
	p := NewPipeline(Options{Protocol: Kitty, Cell: CellSize{W: 4, H: 8}})
	p.Seed(Placeholder())

	for cols := 20; cols < 60; cols++ {
		lines, err := p.Render(cols, 10)
		require.NoError(t, err)
		require.NotEmpty(t, lines)
	}
	require.Len(t, p.renders, 1)
	assert.Equal(t, 59, p.renders[0].cols)

	// Same size again is served from the cache.
	again, _ := p.Render(59, 10)
	assert.Equal(t, p.renders[0].lines, again)
}

func TestPipelineRenderCacheKeepsRecentEntries(t *testing.T) {
	p := NewPipeline(Options{Protocol: Halfblocks})
	p.Seed(
		Placeholder(),
		&Entry{Image: solid(8, 8, color.White), Title: "b", Hash: 2, Origin: Disk},
		&Entry{Image: solid(8, 8, color.Black), Title: "c", Hash: 3, Origin: Disk},
	)

	for i := 0; i < 3; i++ {
		_, err := p.Render(6, 3)
		require.NoError(t, err)
		p.Gallery().Next()
	}
	require.Len(t, p.renders, renderCacheSize)

	// Cursor is back on the placeholder, rendered first and since evicted.
	cur, _ := p.Gallery().Current()
	for _, c := range p.renders {
		assert.NotSame(t, cur, c.entry)
	}
}

func TestHTTPFetcher(t *testing.T) {
	img := pngBytes(t, solid(4, 4, color.White))
	var gotCategory string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/random", func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		_, _ = w.Write([]byte(`{"url":"/img/cat.png","id":"cat-nap.png","width":4,"height":4,"tags":["cat"]}`))
	})
	mux.HandleFunc("/img/cat.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(img)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/", "sfw")
	require.NoError(t, err)
	assert.Equal(t, "sfw", gotCategory)
	assert.Equal(t, img, f.Data)
	assert.Equal(t, "cat-nap.png", f.ID)
	assert.Equal(t, []string{"cat"}, f.Tags)
}

func TestHTTPFetcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{"))
		}},
		{"missing url", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL, "sfw")
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "first_light.png")
	newer := filepath.Join(dir, "second.png")
	require.NoError(t, os.WriteFile(older, pngBytes(t, solid(3, 3, color.White)), 0o644))
	require.NoError(t, os.WriteFile(newer, pngBytes(t, solid(3, 3, color.Black)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644))
	require.NoError(t, os.Chtimes(older, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	entries := LoadDir(dir)
	require.Len(t, entries, 2)
	assert.Equal(t, "first light", entries[0].Title)
	assert.Equal(t, "second", entries[1].Title)

	assert.Nil(t, LoadDir(filepath.Join(dir, "missing")))
}
