package projection

// Build creates a new geometry for angle and mode. The shape follows ShapeForAngle and
// the mode's UV strategy is applied once to the freshly generated coordinates.
func Build(angle float64, mode Mode) *Geometry {
	g := &Geometry{
		Shape: ShapeForAngle(angle),
		Angle: angle,
		Mode:  mode,
	}

	switch g.Shape {
	case ShapeSphere:
		g.Vertices, g.Indices = buildSphere(SphereRadius, SphereWidthSegments, SphereHeightSegments)
	default:
		g.Vertices, g.Indices = buildPlane(PlaneSize)
	}

	if mapper, ok := uvMappers[mode]; ok {
		mapper(g.Vertices, angle)
	}
	return g
}

// Factory hands out the shared eye geometry, reusing the previous one while angle and
// mode are unchanged.
type Factory struct {
	current *Geometry
	builds  int
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Geometry returns the geometry for angle and mode and whether it was newly built.
func (f *Factory) Geometry(angle float64, mode Mode) (*Geometry, bool) {
	if f.current != nil && f.current.Angle == angle && f.current.Mode == mode {
		return f.current, false
	}
	f.current = Build(angle, mode)
	f.builds++
	return f.current, true
}

// Current returns the last geometry handed out, or nil.
func (f *Factory) Current() *Geometry {
	return f.current
}

// Builds returns how many geometries the factory has built.
func (f *Factory) Builds() int {
	return f.builds
}

// Reset forgets the cached geometry so the next call rebuilds.
func (f *Factory) Reset() {
	f.current = nil
}
