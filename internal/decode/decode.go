// Package decode turns a source path or URL into the left/right eye textures for each
// supported stereo layout.
package decode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// ErrDecodeFailure is matched by every error returned from a Registry.
var ErrDecodeFailure = errors.New("decode failure")

// Type names a source layout.
type Type string

const (
	TypeAuto      Type = "auto"
	TypeVR        Type = "vr"
	TypeLeftRight Type = "left-right"
	TypeTopBottom Type = "top-bottom"
	TypeAnaglyph  Type = "anaglyph"
	TypeDepth     Type = "depth"
	TypeMono      Type = "mono"
)

// ParseType normalizes a layout name. Empty selects TypeAuto.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeAuto
	}
	return Type(s)
}

// Request describes one decode.
type Request struct {
	Type        Type
	Source      string
	SourceRight string // secondary source, the depth map for TypeDepth
}

// Result holds the decoded eyes. For mono sources Right is the same texture as Left.
type Result struct {
	Left  *texture.Texture
	Right *texture.Texture
}

// Mono reports whether both eyes share one texture.
func (r Result) Mono() bool {
	return r.Left == r.Right
}

// Decoder produces eye textures for a request.
type Decoder interface {
	Decode(ctx context.Context, req Request) (Result, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, req Request) (Result, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Error reports a failed decode.
type Error struct {
	Type   Type
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode %s source %q: %v", e.Type, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrDecodeFailure.
func (e *Error) Is(target error) bool {
	return target == ErrDecodeFailure
}
