package projection

import "math"

// RemapFisheye reinterprets u as a fraction of the field-of-view sweep and v as a
// symmetric elevation so fisheye captures sample correctly.
func RemapFisheye(vertices []Vertex, angle float64) {
	for i := range vertices {
		u, v := FisheyeUV(float64(vertices[i].TexCoord[0]), float64(vertices[i].TexCoord[1]), angle)
		vertices[i].TexCoord = [2]float32{float32(u), float32(v)}
	}
}

// FisheyeUV maps one base texture coordinate for the given angle in degrees.
func FisheyeUV(u, v, angle float64) (float64, float64) {
	theta := u * math.Pi * (angle / 180)
	phi := (v - 0.5) * math.Pi
	return (theta/math.Pi)*0.5 + 0.5, phi/math.Pi + 0.5
}
