// Package eye manages the left/right eye meshes of a stereo pair.
package eye

import (
	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/scene"
	"github.com/Faultbox/stereoview/internal/engine/texture"
)

// Side identifies an eye.
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Pair owns the two eye meshes currently attached to a scene. The zero value is an
// empty pair.
type Pair struct {
	left  *scene.Mesh
	right *scene.Mesh
}

// newEyeMesh builds one mirrored, double-sided eye mesh. The camera sits inside
// the shape, so the mesh is mirrored on X to keep the texture the right way round.
func newEyeMesh(side Side, tex *texture.Texture, geometry *projection.Geometry) *scene.Mesh {
	m := scene.NewMesh(side.String(), geometry, scene.Material{
		Texture:     tex,
		DoubleSided: true,
	})
	m.Scale.X = -1
	return m
}

// Create detaches any previous pair from s, then attaches a new pair sharing geometry.
// The left eye starts visible and the right eye hidden.
func (p *Pair) Create(s *scene.Scene, left, right *texture.Texture, geometry *projection.Geometry) {
	p.Destroy(s)

	p.left = newEyeMesh(Left, left, geometry)
	p.right = newEyeMesh(Right, right, geometry)
	p.right.Visible = false

	s.Add(p.left)
	s.Add(p.right)
}

// Replace swaps in new textures and geometry. It is a full Destroy + Create so a
// projection change never pairs a new material with stale geometry.
func (p *Pair) Replace(s *scene.Scene, left, right *texture.Texture, geometry *projection.Geometry) {
	p.Create(s, left, right, geometry)
}

// Destroy detaches both meshes from s.
func (p *Pair) Destroy(s *scene.Scene) {
	if p.left != nil {
		s.Remove(p.left)
	}
	if p.right != nil {
		s.Remove(p.right)
	}
	p.left, p.right = nil, nil
}

// Ready reports whether a pair has been created.
func (p *Pair) Ready() bool {
	return p.left != nil && p.right != nil
}

// Mesh returns the mesh for side, or nil before Create.
func (p *Pair) Mesh(side Side) *scene.Mesh {
	if side == Right {
		return p.right
	}
	return p.left
}

// Geometry returns the shared geometry, or nil before Create.
func (p *Pair) Geometry() *projection.Geometry {
	if p.left == nil {
		return nil
	}
	return p.left.Geometry
}

// SetMono shows the left eye and hides the right.
func (p *Pair) SetMono() {
	if !p.Ready() {
		return
	}
	p.left.Visible = true
	p.right.Visible = false
}

// Toggle flips which eye is shown. The two flags stay complementary.
func (p *Pair) Toggle() {
	if !p.Ready() {
		return
	}
	showRight := p.left.Visible
	p.left.Visible = !showRight
	p.right.Visible = showRight
}

// VisibleSide returns the eye currently shown. It is only meaningful when Ready.
func (p *Pair) VisibleSide() Side {
	if p.right != nil && p.right.Visible {
		return Right
	}
	return Left
}
