// Package screenshot saves rendered frames as PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// Format is a screenshot file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp" // lossless
)

// ParseFormat returns the format for name. Unknown names select PNG.
func ParseFormat(name string) Format {
	if Format(strings.ToLower(strings.TrimSpace(name))) == FormatWebP {
		return FormatWebP
	}
	return FormatPNG
}

// Saver writes screenshots to a directory with timestamped names.
type Saver struct {
	Dir    string
	Prefix string
	Format Format

	now func() time.Time
}

// New creates a PNG saver. An empty prefix uses "stereoview".
func New(dir, prefix string) *Saver {
	if prefix == "" {
		prefix = "stereoview"
	}
	return &Saver{Dir: dir, Prefix: prefix, Format: FormatPNG, now: time.Now}
}

// Filename returns the path the next screenshot will be written to.
func (s *Saver) Filename() string {
	name := fmt.Sprintf("%s_%s.%s", s.Prefix, s.now().Format("2006-01-02_15-04-05.000"), s.format())
	if s.Dir != "" {
		name = filepath.Join(s.Dir, name)
	}
	return name
}

// SaveFramebuffer saves bottom-up RGBA rows as read back from OpenGL.
func (s *Saver) SaveFramebuffer(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return s.Save(texture.FlipVertical(img))
}

// Save writes img and returns the file name.
func (s *Saver) Save(img image.Image) (string, error) {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename()
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := s.encode(file, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", s.format(), err)
	}
	return filename, nil
}

func (s *Saver) format() Format {
	if s.Format == "" {
		return FormatPNG
	}
	return s.Format
}

func (s *Saver) encode(w io.Writer, img image.Image) error {
	if s.format() == FormatWebP {
		return nativewebp.Encode(w, img, nil)
	}
	return png.Encode(w, img)
}
