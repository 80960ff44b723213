package decode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

const (
	// DefaultMaxBytes caps the size of a fetched or read source.
	DefaultMaxBytes = 256 << 20
	// DefaultMaxPixels caps the decoded size of a source, checked from its header.
	DefaultMaxPixels = 1 << 27
)

// Loader reads and decodes one source image.
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// SourceLoader reads local paths and http(s) URLs. PNG, JPEG, GIF, WebP, BMP and TGA
// are supported.
type SourceLoader struct {
	Client    *http.Client
	MaxBytes  int64
	MaxPixels int64
}

// NewSourceLoader creates a loader with a 30 second HTTP timeout.
func NewSourceLoader() *SourceLoader {
	return &SourceLoader{
		Client:    &http.Client{Timeout: 30 * time.Second},
		MaxBytes:  DefaultMaxBytes,
		MaxPixels: DefaultMaxPixels,
	}
}

// Load fetches source and decodes it.
func (l *SourceLoader) Load(ctx context.Context, source string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if isURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = l.readFile(ctx, source)
	}
	if err != nil {
		return nil, err
	}
	maxPixels := l.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return decodeImage(data, source, maxPixels)
}

func (l *SourceLoader) limit() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return DefaultMaxBytes
}

func (l *SourceLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %s", url, resp.Status)
	}
	return readLimited(resp.Body, l.limit())
}

func (l *SourceLoader) readFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.limit())
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("source larger than %d bytes", max)
	}
	return data, nil
}

// decodeImage decodes data, using the name's extension to pick TGA, which has no magic.
// The header is read first so images declaring more than maxPixels are never allocated.
func decodeImage(data []byte, name string, maxPixels int64) (image.Image, error) {
	isTGA := strings.ToLower(path.Ext(stripQuery(name))) == ".tga"

	var (
		cfg image.Config
		err error
	)
	if isTGA {
		cfg, err = texture.DecodeTGAConfig(data)
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > maxPixels {
		return nil, fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels)
	}

	if isTGA {
		return texture.DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}
