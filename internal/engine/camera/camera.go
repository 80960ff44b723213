// Package camera provides the viewer camera: it looks around from the centre of a
// sphere, or orbits a flat plane at a short distance.
package camera

import (
	gomath "math"

	"github.com/Faultbox/stereoview/pkg/math"
)

// Defaults match a 75 degree perspective camera with damped controls.
const (
	DefaultFOV     = 75.0
	DefaultNear    = 0.1
	DefaultFar     = 1000.0
	DefaultDamping = 0.25
	MinFOV         = 20.0
	MaxFOV         = 110.0

	// PlaneViewDistance frames the 2x2 plane at the default field of view.
	PlaneViewDistance = 1.3
	// PlaneViewYaw faces the plane from behind, where the X-mirrored mesh reads the
	// right way round.
	PlaneViewYaw = gomath.Pi
)

const maxPitch = gomath.Pi/2 - 0.01

// LookCamera rotates around the origin. At Distance 0 it stands at the origin and looks
// outward; otherwise it sits Distance units behind the origin along its view direction.
type LookCamera struct {
	// Current orientation (radians)
	Yaw   float32
	Pitch float32

	// Orientation the damping converges on
	TargetYaw   float32
	TargetPitch float32

	Distance float32
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32

	// Fraction of the remaining rotation applied per Update
	Damping float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32 // degrees of FOV per wheel notch
}

// NewLookCamera creates a camera at the origin looking down -Z.
func NewLookCamera() *LookCamera {
	return &LookCamera{
		FOV:             DefaultFOV,
		Near:            DefaultNear,
		Far:             DefaultFar,
		Damping:         DefaultDamping,
		DragSensitivity: 0.005,
		ZoomSensitivity: 5,
	}
}

// Reset puts the camera back at the default field of view, level at the given yaw and
// distance from the origin.
func (c *LookCamera) Reset(yaw, distance float32) {
	c.Yaw, c.Pitch = yaw, 0
	c.TargetYaw, c.TargetPitch = yaw, 0
	c.Distance = distance
	c.FOV = DefaultFOV
}

// HandleDrag turns the view target by a mouse drag delta in pixels.
func (c *LookCamera) HandleDrag(deltaX, deltaY float32) {
	c.TargetYaw += deltaX * c.DragSensitivity
	c.TargetPitch += deltaY * c.DragSensitivity
	c.TargetPitch = clamp(c.TargetPitch, -maxPitch, maxPitch)
}

// HandleZoom narrows the field of view for positive wheel deltas.
func (c *LookCamera) HandleZoom(delta float32) {
	c.FOV = clamp(c.FOV-delta*c.ZoomSensitivity, MinFOV, MaxFOV)
}

// Update moves the orientation a Damping fraction towards the target. Call once per frame.
func (c *LookCamera) Update() {
	d := c.Damping
	if d <= 0 || d > 1 {
		d = 1
	}
	c.Yaw += (c.TargetYaw - c.Yaw) * d
	c.Pitch += (c.TargetPitch - c.Pitch) * d
}

// Forward returns the unit view direction.
func (c *LookCamera) Forward() math.Vec3 {
	return math.FromYawPitch(c.Yaw, c.Pitch)
}

// Position returns the camera position in world space.
func (c *LookCamera) Position() math.Vec3 {
	return c.Forward().Scale(-c.Distance)
}

// ViewMatrix returns the view matrix for this camera.
func (c *LookCamera) ViewMatrix() math.Mat4 {
	pos := c.Position()
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(pos, pos.Add(c.Forward()), up)
}

// ProjectionMatrix returns the perspective matrix for a viewport aspect (width/height).
func (c *LookCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	fov := float32(float64(c.FOV) * gomath.Pi / 180)
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
