package eye

import (
	"image"
	"testing"

	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/scene"
	"github.com/Faultbox/stereoview/internal/engine/texture"
)

func testTextures() (*texture.Texture, *texture.Texture) {
	return texture.New(image.NewRGBA(image.Rect(0, 0, 4, 2))),
		texture.New(image.NewRGBA(image.Rect(0, 0, 4, 2)))
}

func TestCreate(t *testing.T) {
	s := scene.New()
	geom := projection.Build(360, projection.Fisheye)
	l, r := testTextures()

	var p Pair
	p.Create(s, l, r, geom)

	if s.Len() != 2 {
		t.Fatalf("scene has %d meshes, want 2", s.Len())
	}
	left, right := p.Mesh(Left), p.Mesh(Right)
	if left.Material.Texture != l || right.Material.Texture != r {
		t.Error("textures bound to the wrong eye")
	}
	if left.Geometry != geom || right.Geometry != geom {
		t.Error("eyes do not share the geometry")
	}
	for _, m := range []*scene.Mesh{left, right} {
		if !m.Material.DoubleSided {
			t.Errorf("%s material = %+v, want double-sided", m.Name, m.Material)
		}
		if m.Scale.X != -1 {
			t.Errorf("%s not mirrored: scale %v", m.Name, m.Scale)
		}
	}
	if !left.Visible || right.Visible {
		t.Error("want left visible, right hidden")
	}
}

func TestCreateReplacesPreviousPair(t *testing.T) {
	s := scene.New()
	var p Pair

	for i, angle := range []float64{180, 360, 90} {
		l, r := testTextures()
		old := p.Mesh(Left)
		p.Replace(s, l, r, projection.Build(angle, projection.Equirectangular))

		if s.Len() != 2 {
			t.Fatalf("iteration %d: scene has %d meshes, want 2", i, s.Len())
		}
		if old != nil && s.Contains(old) {
			t.Fatalf("iteration %d: previous left eye still attached", i)
		}
	}
}

func TestToggleAndMono(t *testing.T) {
	s := scene.New()
	l, r := testTextures()
	var p Pair

	// No-ops before create.
	p.Toggle()
	p.SetMono()

	p.Create(s, l, r, projection.Build(180, projection.Equirectangular))
	for i := 0; i < 5; i++ {
		p.Toggle()
		left, right := p.Mesh(Left).Visible, p.Mesh(Right).Visible
		if left == right {
			t.Fatalf("toggle %d: left=%v right=%v, want complementary", i, left, right)
		}
	}
	if p.VisibleSide() != Right {
		t.Errorf("after 5 toggles VisibleSide() = %v, want right", p.VisibleSide())
	}

	p.SetMono()
	if !p.Mesh(Left).Visible || p.Mesh(Right).Visible {
		t.Error("SetMono did not restore left-only")
	}
}

func TestDestroy(t *testing.T) {
	s := scene.New()
	l, r := testTextures()
	var p Pair
	p.Create(s, l, r, projection.Build(180, projection.Equirectangular))

	p.Destroy(s)
	if s.Len() != 0 || p.Ready() || p.Geometry() != nil {
		t.Error("Destroy left state behind")
	}
}
