// Package camera provides the perspective camera used by the renderer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/lumen/pkg/math"
)

// Camera is a perspective camera.
//
// Rotation is stored and can be changed, but the renderer only applies the
// camera position to the model-view matrix; the rotation is not used.
type Camera struct {
	Position   math.Vec3
	Rotation   math.Quat
	FOVDegrees float32
	Near       float32
	Far        float32

	// Speed is the HandleMovement rate in world units per second.
	Speed float32
}

// New creates a camera.
func New(position math.Vec3, rotation math.Quat, fovDegrees, near, far float32) *Camera {
	return &Camera{
		Position:   position,
		Rotation:   rotation,
		FOVDegrees: fovDegrees,
		Near:       near,
		Far:        far,
		Speed:      5,
	}
}

// Default returns the demo camera: origin, identity rotation, 45° FOV,
// near 0.1, far 10000.
func Default() *Camera {
	return New(math.Vec3{}, math.QuatIdentity(), 45, 0.1, 10000)
}

// ProjectionMatrix returns the perspective projection for a viewport of
// the given size. A non-positive dimension is treated as 1.
func (c *Camera) ProjectionMatrix(width, height int) math.Mat4 {
	width = max(width, 1)
	height = max(height, 1)
	fov := c.FOVDegrees * gomath.Pi / 180
	aspect := float32(width) / float32(height)
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

// Move adds delta to the position.
func (c *Camera) Move(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
}

// Rotate adds delta to the rotation component-wise.
func (c *Camera) Rotate(delta math.Quat) {
	c.Rotation = c.Rotation.Add(delta)
}

// HandleMovement moves the camera along the world axes. forward moves
// toward -Z, right toward +X and up toward +Y; each input is in [-1, 1].
func (c *Camera) HandleMovement(forward, right, up, dt float32) {
	step := c.Speed * dt
	c.Move(math.Vec3{X: right * step, Y: up * step, Z: -forward * step})
}
