package decode

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// Registry dispatches requests to the decoder registered for their type. Types with
// no entry use the fallback, which decodes a mono texture.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Type]Decoder
	fallback Decoder
}

// NewRegistry creates a registry with the built-in layouts reading through loader.
func NewRegistry(loader Loader) *Registry {
	split := func(layout splitLayout) Decoder {
		return &splitDecoder{loader: loader, layout: layout}
	}
	r := &Registry{
		decoders: make(map[Type]Decoder),
		fallback: &monoDecoder{loader: loader},
	}
	r.Register(TypeAuto, split(sideBySide))
	r.Register(TypeVR, split(sideBySide))
	r.Register(TypeLeftRight, split(sideBySide))
	r.Register(TypeTopBottom, split(overUnder))
	r.Register(TypeAnaglyph, &anaglyphDecoder{loader: loader})
	r.Register(TypeDepth, &depthDecoder{loader: loader, DepthScale: DefaultDepthScale})
	r.Register(TypeMono, r.fallback)
	return r
}

// Register installs or replaces the decoder for t.
func (r *Registry) Register(t Type, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[t] = d
}

// Lookup returns the decoder used for t.
func (r *Registry) Lookup(t Type) Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.decoders[t]; ok {
		return d
	}
	return r.fallback
}

// Decode runs the decoder for req.Type. Any failure is returned as *Error.
func (r *Registry) Decode(ctx context.Context, req Request) (Result, error) {
	if req.Type == "" {
		req.Type = TypeAuto
	}
	fail := func(err error) (Result, error) {
		return Result{}, &Error{Type: req.Type, Source: req.Source, Err: err}
	}

	if req.Source == "" {
		return fail(errors.New("no source"))
	}
	res, err := r.Lookup(req.Type).Decode(ctx, req)
	if err != nil {
		return fail(err)
	}
	if res.Left == nil || res.Right == nil {
		return fail(errors.New("decoder returned no texture"))
	}
	if err := checkEye("left", res.Left); err != nil {
		return fail(err)
	}
	if err := checkEye("right", res.Right); err != nil {
		return fail(err)
	}
	return res, nil
}

// checkEye rejects textures with no pixels, such as the halves of a 1 px wide frame.
func checkEye(side string, tex *texture.Texture) error {
	if tex.Width <= 0 || tex.Height <= 0 {
		return fmt.Errorf("%s eye is empty (%dx%d)", side, tex.Width, tex.Height)
	}
	return nil
}
