package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	if math.Abs(float64(n.Length()-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}
}

func TestQuatFromEulerZeroIsIdentity(t *testing.T) {
	if q := QuatFromEuler(0, 0, 0); q != QuatIdentity() {
		t.Errorf("QuatFromEuler(0,0,0) = %+v, want identity", q)
	}
}

func TestQuatFromEulerUnitNorm(t *testing.T) {
	// Sweep a grid that includes the gimbal-lock pitches and large angles.
	angles := []float32{
		0, 0.1, -0.7, float32(math.Pi / 2), -float32(math.Pi / 2),
		float32(math.Pi), 3.9, -5.5, 12.25, 100,
	}
	for _, r := range angles {
		for _, p := range angles {
			for _, y := range angles {
				q := QuatFromEuler(r, p, y)
				if l := q.Length(); math.Abs(float64(l-1)) > 1e-5 {
					t.Fatalf("QuatFromEuler(%v, %v, %v) norm = %v, want 1", r, p, y, l)
				}
			}
		}
	}
}

func TestQuatFromEulerSingleAxes(t *testing.T) {
	const a = 0.8
	tests := []struct {
		name string
		q    Quat
		axis Vec3
	}{
		{"roll is X", QuatFromEuler(a, 0, 0), Vec3{1, 0, 0}},
		{"pitch is Y", QuatFromEuler(0, a, 0), Vec3{0, 1, 0}},
		{"yaw is Z", QuatFromEuler(0, 0, a), Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := axisAngle(tt.axis, a)
			if math.Abs(float64(tt.q.Dot(want)-1)) > 1e-6 {
				t.Errorf("got %+v, want %+v", tt.q, want)
			}
			if got := tt.q.AngleAbout(tt.axis); math.Abs(float64(got-a)) > 1e-5 {
				t.Errorf("AngleAbout = %v, want %v", got, a)
			}
		})
	}
}

func TestQuatFromEulerComposesZYX(t *testing.T) {
	r, p, y := float32(0.3), float32(-0.6), float32(1.4)

	got := QuatFromEuler(r, p, y)
	want := fromMGLQuat(mgl32.QuatRotate(y, mgl32.Vec3{0, 0, 1}).
		Mul(mgl32.QuatRotate(p, mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(r, mgl32.Vec3{1, 0, 0})))

	if math.Abs(float64(got.Dot(want))-1) > 1e-5 {
		t.Errorf("QuatFromEuler = %+v, want Rz*Ry*Rx = %+v", got, want)
	}
}

func TestQuatAngleAboutWraps(t *testing.T) {
	// 3pi/2 about Y is the same rotation as -pi/2.
	q := axisAngle(Vec3{0, 1, 0}, float32(3*math.Pi/2))
	got := q.AngleAbout(Vec3{0, 1, 0})
	if math.Abs(float64(got)+math.Pi/2) > 1e-5 {
		t.Errorf("AngleAbout = %v, want %v", got, -math.Pi/2)
	}
}

func toMGLQuat(q Quat) mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func fromMGLQuat(q mgl32.Quat) Quat {
	return Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// axisAngle is the rotation of angle radians about a unit axis.
func axisAngle(axis Vec3, angle float32) Quat {
	return fromMGLQuat(mgl32.QuatRotate(angle, mgl32.Vec3{axis.X, axis.Y, axis.Z}))
}
