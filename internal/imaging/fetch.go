package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
)

// FetchTimeout bounds each HTTP request of a fetch.
const FetchTimeout = 15 * time.Second

// maxImageBytes caps a downloaded image.
const maxImageBytes = 32 << 20

// Download is the raw result of an image fetch.
type Download struct {
	Data []byte
	ID   string
	Tags []string
}

// Fetcher retrieves one image for a category.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint, category string) (*Download, error)
}

// imageMeta is the reply of GET {endpoint}/api/random.
type imageMeta struct {
	URL    string   `json:"url"`
	ID     string   `json:"id"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Hash   string   `json:"hash"`
	Tags   []string `json:"tags"`
}

// HTTPFetcher asks the image service for a random image and downloads it.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher with FetchTimeout applied per request.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: FetchTimeout}}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint, category string) (*Download, error) {
	base := strings.TrimRight(endpoint, "/")
	metaURL := base + "/api/random?category=" + url.QueryEscape(category)

	body, err := f.get(ctx, metaURL)
	if err != nil {
		return nil, err
	}
	var meta imageMeta
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("decode image metadata: %w", err)
	}
	if meta.URL == "" {
		return nil, fmt.Errorf("image metadata has no url")
	}

	imageURL := meta.URL
	if strings.HasPrefix(imageURL, "/") {
		imageURL = base + imageURL
	}
	data, err := f.get(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	id := meta.ID
	if id == "" {
		id = filepath.Base(imageURL)
	}
	return &Download{Data: data, ID: id, Tags: meta.Tags}, nil
}

func (f *HTTPFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

// Decode turns encoded bytes (png, jpeg, gif or webp) into an entry.
func Decode(data []byte, title string, origin Origin) (*Entry, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Entry{
		Image:  img,
		Title:  title,
		Origin: origin,
		Format: format,
		Hash:   xxh3.Hash(data),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// LoadDir decodes every image in dir, oldest first by modification time.
// Unreadable or undecodable files are skipped. A missing dir yields nothing.
func LoadDir(dir string) []*Entry {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	type file struct {
		path string
		mod  time.Time
	}
	var files []file
	for _, e := range ents {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{path: filepath.Join(dir, e.Name()), mod: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

	var out []*Entry
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		entry, err := Decode(data, TitleFromName(f.path), Disk)
		if err != nil {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// save writes data under dir named after the hash so repeated fetches of the
// same image share one file.
func save(dir string, data []byte, hash uint64, format string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%016x.%s", hash, format)
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

// fetchError wraps a transport or decode failure as a FETCH error.
func fetchError(err error, what string) error {
	return errors.WrapWithCode(err, errors.ErrFetch, what,
		"Press f to try again; the gallery is unchanged")
}
