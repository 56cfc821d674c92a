// Package camera provides the orbit camera used by the model viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/mdxview/pkg/math"
)

// OrbitCamera orbits around a center point. Models are Z-up, so the
// camera's up axis is +Z and yaw spins around it.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with viewer defaults.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.3,
		Yaw:             0.0,
		MinDistance:     5.0,
		MaxDistance:     5000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	r := c.Distance * math32.Cos(c.Pitch)
	return math.Vec3{
		X: c.Center.X + r*math32.Sin(c.Yaw),
		Y: c.Center.Y - r*math32.Cos(c.Yaw),
		Z: c.Center.Z + c.Distance*math32.Sin(c.Pitch),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 0, Z: 1}
	return math.LookAt(c.Position(), c.Center, up)
}

// HandleDrag updates rotation from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw += deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// HandlePan moves the center point in the camera's screen plane.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	speed := c.Distance * 0.002

	// Screen-right projected onto the ground plane
	rightX := math32.Cos(c.Yaw)
	rightY := math32.Sin(c.Yaw)

	c.Center.X += -deltaX * rightX * speed
	c.Center.Y += -deltaX * rightY * speed
	c.Center.Z += deltaY * speed
}

// SetCenter sets the point the camera orbits.
func (c *OrbitCamera) SetCenter(center math.Vec3) {
	c.Center = center
}

// FitToBounds frames the given bounding box.
func (c *OrbitCamera) FitToBounds(min, max math.Vec3) {
	c.Center = math.Vec3{
		X: (min.X + max.X) / 2,
		Y: (min.Y + max.Y) / 2,
		Z: (min.Z + max.Z) / 2,
	}

	size := math32.Max(max.X-min.X, math32.Max(max.Y-min.Y, max.Z-min.Z))
	c.Distance = size * 1.8
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}

	c.Pitch = 0.3
	c.Yaw = 0.0
}
