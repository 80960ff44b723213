package decode

import (
	"context"
	"errors"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// DefaultDepthScale is the peak parallax in pixels per 1000 px of width for a
// white (near) depth sample.
const DefaultDepthScale = 30.0

// depthDecoder synthesises a stereo pair from a colour image and a depth map. The
// colour image is the left eye; the right eye shifts each pixel right in proportion
// to its depth.
type depthDecoder struct {
	loader     Loader
	DepthScale float64
}

func (d *depthDecoder) Decode(ctx context.Context, req Request) (Result, error) {
	if req.SourceRight == "" {
		return Result{}, errors.New("depth layout needs a depth map source")
	}

	var colorImg, depthImg image.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := d.loader.Load(gctx, req.Source)
		colorImg = img
		return err
	})
	g.Go(func() error {
		img, err := d.loader.Load(gctx, req.SourceRight)
		depthImg = img
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	left := texture.ToRGBA(colorImg)
	depth := alignDepth(depthImg, left.Bounds().Dx(), left.Bounds().Dy())
	right := shiftByDepth(left, depth, d.DepthScale)
	return Result{Left: texture.New(left), Right: texture.New(right)}, nil
}

// alignDepth scales a depth map to w×h greyscale.
func alignDepth(src image.Image, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// shiftByDepth forward-maps each src pixel depth*scale/width pixels to the right and
// streaks it over the same distance so the gaps it opens are filled.
func shiftByDepth(src *image.RGBA, depth *image.Gray, scale float64) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
	}

	perLevel := scale / 1000 * float64(w) / 255
	for y := 0; y < h; y++ {
		row := depth.Pix[y*depth.Stride : y*depth.Stride+w]
		for x := 0; x < w; x++ {
			shift := int(float64(row[x]) * perLevel)
			if shift == 0 {
				continue
			}
			si := y*src.Stride + x*4
			for tx := x + shift; tx <= x+2*shift && tx < w; tx++ {
				di := y*out.Stride + tx*4
				copy(out.Pix[di:di+4], src.Pix[si:si+4])
			}
		}
	}
	return out
}
