package decode

import (
	"context"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

type splitLayout int

const (
	sideBySide splitLayout = iota // left eye in the left half
	overUnder                     // left eye in the top half
)

// splitHalves copies the two eye halves of a packed stereo frame.
func splitHalves(img image.Image, layout splitLayout) (*image.RGBA, *image.RGBA) {
	b := img.Bounds()
	var first, second image.Rectangle
	if layout == overUnder {
		half := b.Dy() / 2
		first = image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+half)
		second = image.Rect(b.Min.X, b.Min.Y+half, b.Max.X, b.Min.Y+2*half)
	} else {
		half := b.Dx() / 2
		first = image.Rect(b.Min.X, b.Min.Y, b.Min.X+half, b.Max.Y)
		second = image.Rect(b.Min.X+half, b.Min.Y, b.Min.X+2*half, b.Max.Y)
	}
	return copyRect(img, first), copyRect(img, second)
}

func copyRect(img image.Image, r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

// splitDecoder handles packed stereo frames: vr dual-fisheye captures, left-right and
// top-bottom pairs.
type splitDecoder struct {
	loader Loader
	layout splitLayout
}

func (d *splitDecoder) Decode(ctx context.Context, req Request) (Result, error) {
	img, err := d.loader.Load(ctx, req.Source)
	if err != nil {
		return Result{}, err
	}
	left, right := splitHalves(img, d.layout)
	return Result{Left: texture.New(left), Right: texture.New(right)}, nil
}

// monoDecoder shows the same image to both eyes.
type monoDecoder struct {
	loader Loader
}

func (d *monoDecoder) Decode(ctx context.Context, req Request) (Result, error) {
	img, err := d.loader.Load(ctx, req.Source)
	if err != nil {
		return Result{}, err
	}
	tex := texture.New(texture.ToRGBA(img))
	return Result{Left: tex, Right: tex}, nil
}

// anaglyphDecoder separates a red/cyan anaglyph: the red channel is the left eye and
// the mean of green and blue the right. Each eye comes out as greyscale.
type anaglyphDecoder struct {
	loader Loader
}

func (d *anaglyphDecoder) Decode(ctx context.Context, req Request) (Result, error) {
	img, err := d.loader.Load(ctx, req.Source)
	if err != nil {
		return Result{}, err
	}
	left, right := splitAnaglyph(texture.ToRGBA(img))
	return Result{Left: texture.New(left), Right: texture.New(right)}, nil
}

func splitAnaglyph(src *image.RGBA) (*image.RGBA, *image.RGBA) {
	b := src.Bounds()
	left := image.NewRGBA(b)
	right := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.RGBAAt(x, y)
			r := c.R
			cyan := uint8((uint16(c.G) + uint16(c.B)) / 2)
			left.SetRGBA(x, y, color.RGBA{R: r, G: r, B: r, A: 255})
			right.SetRGBA(x, y, color.RGBA{R: cyan, G: cyan, B: cyan, A: 255})
		}
	}
	return left, right
}
