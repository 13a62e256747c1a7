package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Zoom bounds for the orbit distance, world units.
const (
	ZoomMin = 2.0
	ZoomMax = 100.0

	// Multiplicative distance change per scroll tick.
	zoomStep = 1.1

	pitchLimit = 89.0
)

// Camera is an orbit camera: it looks at Target from Distance world units
// away along the direction derived from Yaw/Pitch. Projection shape (aspect,
// fov, planes) and pose (target, distance, angles) are independent: resize
// events touch only the aspect ratio, scroll events touch only the distance.
type Camera struct {
	Target   mgl32.Vec3
	Yaw      float32 // degrees
	Pitch    float32 // degrees, clamped to (-pitchLimit, pitchLimit)
	Distance float32

	Fov  float32 // degrees
	Near float32
	Far  float32

	aspect float32
}

func NewCamera(width, height int) *Camera {
	c := &Camera{
		Yaw:      0,
		Pitch:    -20,
		Distance: 30,
		Fov:      60,
		Near:     0.1,
		Far:      1000,
		aspect:   1,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport recomputes the projection aspect ratio from framebuffer
// dimensions. A zero-sized framebuffer (minimized window) keeps the last
// valid ratio.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

func (c *Camera) Aspect() float32 {
	return c.aspect
}

// Zoom scales the orbit distance by zoomStep^yoffset and clamps the result
// into [ZoomMin, ZoomMax]. A zero offset multiplies by exactly 1.0 and
// leaves the distance bit-for-bit unchanged.
func (c *Camera) Zoom(yoffset float64) {
	d := c.Distance * float32(math.Pow(zoomStep, yoffset))
	if d < ZoomMin {
		d = ZoomMin
	}
	if d > ZoomMax {
		d = ZoomMax
	}
	c.Distance = d
}

// Pan moves the look-at target in the camera plane.
func (c *Camera) Pan(dx, dy float32) {
	c.Target = c.Target.Add(c.right().Mul(dx)).Add(mgl32.Vec3{0, 1, 0}.Mul(dy))
}

// Orbit adjusts the view angles, keeping pitch away from the poles so the
// view matrix never degenerates.
func (c *Camera) Orbit(dyaw, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch += dpitch
	if c.Pitch > pitchLimit {
		c.Pitch = pitchLimit
	}
	if c.Pitch < -pitchLimit {
		c.Pitch = -pitchLimit
	}
}

func (c *Camera) forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *Camera) right() mgl32.Vec3 {
	return c.forward().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

func (c *Camera) Eye() mgl32.Vec3 {
	return c.Target.Sub(c.forward().Mul(c.Distance))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), c.aspect, c.Near, c.Far)
}
