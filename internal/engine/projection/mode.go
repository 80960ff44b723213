package projection

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedProjection is returned by ParseMode for unknown projection names.
var ErrUnsupportedProjection = errors.New("unsupported projection")

// Mode selects how texture coordinates are mapped onto the geometry.
type Mode int

const (
	Equirectangular Mode = iota
	Fisheye
)

var modeNames = map[Mode]string{
	Equirectangular: "equirectangular",
	Fisheye:         "fisheye",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a projection name. Empty selects Equirectangular. Unknown names
// also return Equirectangular, together with ErrUnsupportedProjection.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Equirectangular, nil
	}
	for mode, n := range modeNames {
		if n == name {
			return mode, nil
		}
	}
	return Equirectangular, fmt.Errorf("%w: %q", ErrUnsupportedProjection, name)
}

// UVMapper rewrites the texture coordinates of a freshly built geometry in place.
type UVMapper func(vertices []Vertex, angle float64)

// uvMappers is the per-mode UV strategy. Modes without an entry keep the base mapping.
var uvMappers = map[Mode]UVMapper{
	Fisheye: RemapFisheye,
}

// RegisterMode adds a projection mode with its UV strategy. It is meant to be called
// from init functions; a nil mapper keeps the base mapping.
func RegisterMode(mode Mode, name string, mapper UVMapper) {
	modeNames[mode] = strings.ToLower(name)
	if mapper != nil {
		uvMappers[mode] = mapper
	}
}
