package texture

import (
	"math"

	"github.com/nfnt/resize"
)

// Guard clamps textures to a hardware maximum dimension.
type Guard struct {
	// MaxSize is the largest width or height the GPU accepts. Zero disables clamping.
	MaxSize int
	// Resample also scales the pixel buffer so the uploaded image matches the
	// clamped logical size. Without it only Width/Height change.
	Resample bool
}

// ClampDimensions returns width and height scaled so that the larger one equals max,
// preserving the aspect ratio. Dimensions within bounds are returned unchanged.
func ClampDimensions(width, height, max int) (int, int, bool) {
	if max <= 0 || width <= 0 || height <= 0 {
		return width, height, false
	}
	if width <= max && height <= max {
		return width, height, false
	}

	aspect := float64(width) / float64(height)
	if width >= height {
		newWidth := max
		newHeight := int(math.Round(float64(newWidth) / aspect))
		return newWidth, atLeastOne(newHeight), true
	}
	newHeight := max
	newWidth := int(math.Round(float64(newHeight) * aspect))
	return atLeastOne(newWidth), newHeight, true
}

// Apply clamps tex in place and reports whether it was oversize.
func (g Guard) Apply(tex *Texture) bool {
	if tex == nil {
		return false
	}
	w, h, clamped := ClampDimensions(tex.Width, tex.Height, g.MaxSize)
	if !clamped {
		return false
	}
	tex.Width, tex.Height = w, h
	if g.Resample && tex.Image != nil {
		tex.Image = resize.Resize(uint(w), uint(h), tex.Image, resize.Bilinear)
	}
	return true
}

// ApplyPair clamps both eye textures independently. A mono source sharing one
// texture between eyes is clamped once.
func (g Guard) ApplyPair(left, right *Texture) (leftClamped, rightClamped bool) {
	leftClamped = g.Apply(left)
	if right == left {
		return leftClamped, leftClamped
	}
	return leftClamped, g.Apply(right)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
