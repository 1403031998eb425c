package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromEuler converts roll (about X), pitch (about Y) and yaw (about Z),
// all in radians, into a quaternion. The rotations compose intrinsically in
// z-y-x order using half-angle products:
//
//	qx = sin(r/2)cos(p/2)cos(y/2) - cos(r/2)sin(p/2)sin(y/2)
//	qy = cos(r/2)sin(p/2)cos(y/2) + sin(r/2)cos(p/2)sin(y/2)
//	qz = cos(r/2)cos(p/2)sin(y/2) - sin(r/2)sin(p/2)cos(y/2)
//	qw = cos(r/2)cos(p/2)cos(y/2) + sin(r/2)sin(p/2)sin(y/2)
//
// The result is unit length for any finite input, gimbal-lock angles included.
func QuatFromEuler(roll, pitch, yaw float32) Quat {
	sr, cr := math.Sincos(float64(roll) / 2)
	sp, cp := math.Sincos(float64(pitch) / 2)
	sy, cy := math.Sincos(float64(yaw) / 2)

	return Quat{
		X: float32(sr*cp*cy - cr*sp*sy),
		Y: float32(cr*sp*cy + sr*cp*sy),
		Z: float32(cr*cp*sy - sr*sp*cy),
		W: float32(cr*cp*cy + sr*sp*sy),
	}
}

// Length returns the norm of the quaternion.
func (q Quat) Length() float32 {
	return float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := q.Length()
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
		W: q.W * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Add returns the component-wise sum. The result is generally not a
// rotation; the camera uses it for its additive rotation deltas.
func (q Quat) Add(other Quat) Quat {
	return Quat{q.X + other.X, q.Y + other.Y, q.Z + other.Z, q.W + other.W}
}

// AngleAbout returns the signed rotation angle in radians (-pi, pi] that q
// applies about the given unit axis, assuming q is a pure rotation about it.
func (q Quat) AngleAbout(axis Vec3) float32 {
	s := q.X*axis.X + q.Y*axis.Y + q.Z*axis.Z
	a := 2 * math.Atan2(float64(s), float64(q.W))
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return float32(a)
}
