package entity

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/lumen/pkg/math"
)

func TestNewEntity(t *testing.T) {
	a := New("a")
	b := New("b")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, math.Vec3{}, a.Position)
	assert.Equal(t, math.Vec3{}, a.Rotation)
	assert.Equal(t, math.Vec3{}, a.Scale)
	assert.False(t, a.Loaded())
}

func TestDeltasAreAdditive(t *testing.T) {
	e := New("e")
	e.Move(math.Vec3{X: 1, Y: 2, Z: 3})
	e.Move(math.Vec3{X: 1, Y: -2, Z: 0.5})
	e.Rotate(math.Vec3{Y: 0.25})
	e.Rotate(math.Vec3{Y: 0.25, Z: 1})
	e.ScaleBy(math.Vec3{X: 12, Y: 12, Z: 12})
	e.ScaleBy(math.Vec3{X: -2})

	assert.Equal(t, math.Vec3{X: 2, Y: 0, Z: 3.5}, e.Position)
	assert.Equal(t, math.Vec3{Y: 0.5, Z: 1}, e.Rotation)
	assert.Equal(t, math.Vec3{X: 10, Y: 12, Z: 12}, e.Scale)
}

func TestUnitScaleIdentityTransform(t *testing.T) {
	e := New("e")
	e.ScaleBy(math.Vec3{X: 1, Y: 1, Z: 1})

	assert.Equal(t, math.Identity(), e.Transform())
}

func TestZeroScaleCollapses(t *testing.T) {
	e := New("e")
	e.Move(math.Vec3{X: 4})
	p := mgl32.Mat4(e.Transform()).Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{4, 0, 0, 1}, p)
}

func TestRotationQuatIsUnit(t *testing.T) {
	for _, r := range []math.Vec3{
		{}, {X: 1}, {Y: -3}, {Z: 7.5},
		{X: float32(gomath.Pi / 2), Y: float32(gomath.Pi / 2)},
		{X: 100, Y: -200, Z: 300},
	} {
		e := New("e")
		e.Rotate(r)
		assert.InDelta(t, 1, e.RotationQuat().Length(), 1e-5, "rotation %v", r)
	}
}

func TestTransformMatchesMathGL(t *testing.T) {
	e := New("e")
	e.Move(math.Vec3{X: 1, Y: -2, Z: 3})
	e.Rotate(math.Vec3{Y: 0.9})
	e.ScaleBy(math.Vec3{X: 2, Y: 3, Z: 4})

	want := mgl32.Translate3D(1, -2, 3).
		Mul4(mgl32.HomogRotate3DY(0.9)).
		Mul4(mgl32.Scale3D(2, 3, 4))
	got := e.Transform()
	for i := 0; i < 16; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5, "element %d", i)
	}
}

func TestSpinScenario(t *testing.T) {
	// The demo entity: scale 12 at (0,0,-6), spinning about Y.
	e := New("horns")
	e.Move(math.Vec3{Z: -6})
	e.ScaleBy(math.Vec3{X: 12, Y: 12, Z: 12})
	e.Spin = math.Vec3{Y: 1}

	const dt = float32(1.0 / 60.0)
	const frames = 500
	for i := 0; i < frames; i++ {
		e.Update(dt)
	}

	m := e.Transform()
	assert.InDelta(t, 12, m.Scaling().X, 1e-3)
	assert.InDelta(t, -6, m[14], 1e-5)

	want := gomath.Remainder(float64(dt)*frames, 2*gomath.Pi)
	got := m.Rotation().AngleAbout(math.Vec3{Y: 1})
	assert.InDelta(t, want, got, 1e-3)
}
