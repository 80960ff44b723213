package projection

import "math"

// buildPlane returns a size×size quad in the XY plane facing +Z, UV origin bottom-left.
func buildPlane(size float32) ([]Vertex, []uint32) {
	h := size / 2
	vertices := []Vertex{
		{Position: [3]float32{-h, h, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{h, h, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-h, -h, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{h, -h, 0}, TexCoord: [2]float32{1, 0}},
	}
	indices := []uint32{0, 2, 1, 2, 3, 1}
	return vertices, indices
}

// buildSphere returns a UV sphere. u runs around the Y axis and v from the north pole
// (v=1) to the south pole (v=0). Pole rows emit a single triangle per segment.
func buildSphere(radius float32, widthSegments, heightSegments int) ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, (widthSegments+1)*(heightSegments+1))
	grid := make([][]uint32, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			sinV := math.Sin(v * math.Pi)
			pos := [3]float32{
				float32(-float64(radius) * math.Cos(u*2*math.Pi) * sinV),
				float32(float64(radius) * math.Cos(v*math.Pi)),
				float32(float64(radius) * math.Sin(u*2*math.Pi) * sinV),
			}
			row[ix] = uint32(len(vertices))
			vertices = append(vertices, Vertex{
				Position: pos,
				TexCoord: [2]float32{float32(u), float32(1 - v)},
			})
		}
		grid[iy] = row
	}

	indices := make([]uint32, 0, widthSegments*(heightSegments-1)*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return vertices, indices
}
