// Package scene holds the meshes attached for rendering and their materials.
package scene

import (
	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/texture"
	"github.com/Faultbox/stereoview/pkg/math"
)

// Material binds a texture to a mesh. Texture colours are drawn as-is; the scene has
// no lights.
type Material struct {
	Texture *texture.Texture
	// DoubleSided disables back-face culling so the inside of a sphere is visible.
	DoubleSided bool
}

// Mesh is a renderable instance of a geometry.
type Mesh struct {
	Name     string
	Geometry *projection.Geometry
	Material Material
	Visible  bool
	Scale    math.Vec3
}

// NewMesh creates a visible mesh with unit scale.
func NewMesh(name string, geometry *projection.Geometry, material Material) *Mesh {
	return &Mesh{
		Name:     name,
		Geometry: geometry,
		Material: material,
		Visible:  true,
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// ModelMatrix returns the mesh's model transform. Meshes sit at the origin.
func (m *Mesh) ModelMatrix() math.Mat4 {
	return math.Scale(m.Scale.X, m.Scale.Y, m.Scale.Z)
}

// Scene is an ordered set of attached meshes.
type Scene struct {
	meshes []*Mesh
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Add attaches a mesh. Adding an attached mesh is a no-op.
func (s *Scene) Add(m *Mesh) {
	if m == nil || s.Contains(m) {
		return
	}
	s.meshes = append(s.meshes, m)
}

// Remove detaches a mesh and reports whether it was attached.
func (s *Scene) Remove(m *Mesh) bool {
	for i, existing := range s.meshes {
		if existing == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether m is attached.
func (s *Scene) Contains(m *Mesh) bool {
	for _, existing := range s.meshes {
		if existing == m {
			return true
		}
	}
	return false
}

// Children returns a copy of the attached meshes in insertion order.
func (s *Scene) Children() []*Mesh {
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Len returns the number of attached meshes.
func (s *Scene) Len() int {
	return len(s.meshes)
}

// Visible returns the attached meshes that should be drawn.
func (s *Scene) Visible() []*Mesh {
	var out []*Mesh
	for _, m := range s.meshes {
		if m.Visible {
			out = append(out, m)
		}
	}
	return out
}

// Clear detaches every mesh.
func (s *Scene) Clear() {
	s.meshes = nil
}
