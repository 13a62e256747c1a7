package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamera_AspectFromViewport(t *testing.T) {
	cam := NewCamera(800, 600)
	assert.InDelta(t, 800.0/600.0, cam.Aspect(), 1e-6)

	cam.SetViewport(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect(), 1e-6)
}

func TestCamera_ZeroHeightResizeKeepsAspect(t *testing.T) {
	cam := NewCamera(800, 600)
	before := cam.Aspect()

	cam.SetViewport(800, 0)
	cam.SetViewport(0, 600)
	cam.SetViewport(-1, -1)

	if cam.Aspect() != before {
		t.Errorf("aspect changed on degenerate viewport: got %v, want %v", cam.Aspect(), before)
	}
}

func TestCamera_ResizeDoesNotTouchPose(t *testing.T) {
	cam := NewCamera(800, 600)
	dist := cam.Distance
	target := cam.Target

	cam.SetViewport(1234, 567)

	assert.Equal(t, dist, cam.Distance)
	assert.Equal(t, target, cam.Target)
}

func TestCamera_ZeroScrollIsExactNoop(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.Zoom(-3) // land on an arbitrary non-default distance
	before := cam.Distance

	for i := 0; i < 100; i++ {
		cam.Zoom(0)
	}

	// Bit-for-bit: repeated zero-offset scrolls must not drift.
	if cam.Distance != before {
		t.Fatalf("distance drifted: got %v, want %v", cam.Distance, before)
	}
}

func TestCamera_ZoomClampsAndStaysMonotonic(t *testing.T) {
	cam := NewCamera(800, 600)

	prev := cam.Distance
	for i := 0; i < 200; i++ {
		cam.Zoom(-1)
		require.LessOrEqual(t, cam.Distance, prev, "scrolling toward ZoomMin must never increase distance")
		require.GreaterOrEqual(t, cam.Distance, float32(ZoomMin))
		prev = cam.Distance
	}
	assert.Equal(t, float32(ZoomMin), cam.Distance, "sustained scroll should land exactly on the bound")

	prev = cam.Distance
	for i := 0; i < 200; i++ {
		cam.Zoom(1)
		require.GreaterOrEqual(t, cam.Distance, prev, "scrolling toward ZoomMax must never decrease distance")
		require.LessOrEqual(t, cam.Distance, float32(ZoomMax))
		prev = cam.Distance
	}
	assert.Equal(t, float32(ZoomMax), cam.Distance)
}

func TestCamera_LargerOffsetMovesFurther(t *testing.T) {
	a := NewCamera(800, 600)
	b := NewCamera(800, 600)

	a.Zoom(-1)
	b.Zoom(-2)

	if b.Distance >= a.Distance {
		t.Errorf("offset -2 should zoom further than -1: got %v vs %v", b.Distance, a.Distance)
	}
}

func TestCamera_EyeSitsAtOrbitDistance(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.Zoom(4)
	cam.Orbit(35, 10)

	d := cam.Eye().Sub(cam.Target).Len()
	assert.InDelta(t, float64(cam.Distance), float64(d), 1e-3)
}

func TestCamera_PanMovesTargetNotDistance(t *testing.T) {
	cam := NewCamera(800, 600)
	dist := cam.Distance

	cam.Pan(2, -1)

	assert.Equal(t, dist, cam.Distance)
	assert.NotEqual(t, mgl32.Vec3{}, cam.Target)
}

func TestCamera_ProjectionUsesCurrentAspect(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.SetViewport(1000, 500)

	want := mgl32.Perspective(mgl32.DegToRad(cam.Fov), 2.0, cam.Near, cam.Far)
	assert.Equal(t, want, cam.ProjectionMatrix())
}

func TestCamera_OrbitClampsPitch(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.Orbit(0, 500)
	assert.LessOrEqual(t, cam.Pitch, float32(89))

	cam.Orbit(0, -1000)
	assert.GreaterOrEqual(t, cam.Pitch, float32(-89))
}
