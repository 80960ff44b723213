// Package projection builds the shared eye geometry for a field-of-view angle and
// projection mode, including the fisheye UV remap.
package projection

// FullSphereAngle is the field of view at and above which a sphere is used instead of a plane.
const FullSphereAngle = 360.0

// DefaultAngle is the field of view assumed when none is configured.
const DefaultAngle = 180.0

// Sphere tessellation, smooth enough for perspective viewing from the centre.
const (
	SphereRadius         = 1.0
	SphereWidthSegments  = 60
	SphereHeightSegments = 40
)

// PlaneSize is the edge length of the flat quad.
const PlaneSize = 2.0

// Shape is the topology of a geometry.
type Shape int

const (
	ShapePlane Shape = iota
	ShapeSphere
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapePlane:
		return "plane"
	case ShapeSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Vertex is a geometry vertex with position and texture coordinate.
type Vertex struct {
	Position [3]float32
	TexCoord [2]float32
}

// Geometry is an indexed triangle mesh shared by both eyes. It is never mutated after
// the factory returns it; a new angle or mode produces a new Geometry.
type Geometry struct {
	Shape    Shape
	Angle    float64
	Mode     Mode
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// ShapeForAngle selects sphere topology for angles >= 360 and a plane otherwise.
func ShapeForAngle(angle float64) Shape {
	if angle >= FullSphereAngle {
		return ShapeSphere
	}
	return ShapePlane
}
