// Package texture provides decoded texture handles, hardware size clamping and
// image conversion utilities.
package texture

import (
	"image"

	"github.com/google/uuid"
)

// Texture is a decoded image ready for upload. Width and Height are the logical
// dimensions used for geometry fitting and upload; they normally match the image bounds.
type Texture struct {
	ID     uuid.UUID
	Image  image.Image
	Width  int
	Height int
}

// New wraps a decoded image in a Texture with a fresh ID.
func New(img image.Image) *Texture {
	b := img.Bounds()
	return &Texture{
		ID:     uuid.New(),
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// Aspect returns width / height, or 0 for a degenerate texture.
func (t *Texture) Aspect() float64 {
	if t.Height == 0 {
		return 0
	}
	return float64(t.Width) / float64(t.Height)
}
