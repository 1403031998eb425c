package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a perspective projection matrix.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1.0 / math.Tan(float64(fovY)/2.0))
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// FromRotationTranslationScaleOrigin builds T(t) * T(o) * R(q) * S(s) * T(-o)
// in one pass: scale and rotate about the origin point o, then translate.
// q is used as given and is expected to be unit length.
func FromRotationTranslationScaleOrigin(q Quat, t, s, o Vec3) Mat4 {
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z

	xx := q.X * x2
	xy := q.X * y2
	xz := q.X * z2
	yy := q.Y * y2
	yz := q.Y * z2
	zz := q.Z * z2
	wx := q.W * x2
	wy := q.W * y2
	wz := q.W * z2

	var m Mat4
	m[0] = (1 - (yy + zz)) * s.X
	m[1] = (xy + wz) * s.X
	m[2] = (xz - wy) * s.X
	m[4] = (xy - wz) * s.Y
	m[5] = (1 - (xx + zz)) * s.Y
	m[6] = (yz + wx) * s.Y
	m[8] = (xz + wy) * s.Z
	m[9] = (yz - wx) * s.Z
	m[10] = (1 - (xx + yy)) * s.Z
	m[12] = t.X + o.X - (m[0]*o.X + m[4]*o.Y + m[8]*o.Z)
	m[13] = t.Y + o.Y - (m[1]*o.X + m[5]*o.Y + m[9]*o.Z)
	m[14] = t.Z + o.Z - (m[2]*o.X + m[6]*o.Y + m[10]*o.Z)
	m[15] = 1
	return m
}

// TranslateBy returns m times a translation by v. The translation is applied in the
// local space of m, before m's own rotation and scale.
func (m Mat4) TranslateBy(v Vec3) Mat4 {
	out := m
	out[12] = m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	out[13] = m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	out[14] = m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	out[15] = m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	return out
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Scaling returns the length of each basis column, i.e. the scale baked into m.
func (m Mat4) Scaling() Vec3 {
	return Vec3{
		Vec3{m[0], m[1], m[2]}.Length(),
		Vec3{m[4], m[5], m[6]}.Length(),
		Vec3{m[8], m[9], m[10]}.Length(),
	}
}

// Rotation extracts the rotation of an affine transform with positive scale.
// Returns the identity quaternion if any axis has zero scale.
func (m Mat4) Rotation() Quat {
	s := m.Scaling()
	if s.X == 0 || s.Y == 0 || s.Z == 0 {
		return QuatIdentity()
	}

	// Column-normalized basis; sIJ is column I, row J.
	s11, s12, s13 := m[0]/s.X, m[1]/s.X, m[2]/s.X
	s21, s22, s23 := m[4]/s.Y, m[5]/s.Y, m[6]/s.Y
	s31, s32, s33 := m[8]/s.Z, m[9]/s.Z, m[10]/s.Z

	trace := s11 + s22 + s33
	switch {
	case trace > 0:
		k := sqrtf(trace+1) * 2
		return Quat{X: (s23 - s32) / k, Y: (s31 - s13) / k, Z: (s12 - s21) / k, W: 0.25 * k}
	case s11 > s22 && s11 > s33:
		k := sqrtf(1+s11-s22-s33) * 2
		return Quat{X: 0.25 * k, Y: (s12 + s21) / k, Z: (s31 + s13) / k, W: (s23 - s32) / k}
	case s22 > s33:
		k := sqrtf(1+s22-s11-s33) * 2
		return Quat{X: (s12 + s21) / k, Y: 0.25 * k, Z: (s23 + s32) / k, W: (s31 - s13) / k}
	default:
		k := sqrtf(1+s33-s11-s22) * 2
		return Quat{X: (s31 + s13) / k, Y: (s23 + s32) / k, Z: 0.25 * k, W: (s12 - s21) / k}
	}
}

// IsFinite reports whether every element is a finite number.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Inverse returns the inverse of the matrix.
// Returns identity if the matrix is singular.
func (m Mat4) Inverse() Mat4 {
	// Calculate cofactors
	c00 := m[5]*m[10]*m[15] - m[5]*m[11]*m[14] - m[9]*m[6]*m[15] + m[9]*m[7]*m[14] + m[13]*m[6]*m[11] - m[13]*m[7]*m[10]
	c01 := -m[1]*m[10]*m[15] + m[1]*m[11]*m[14] + m[9]*m[2]*m[15] - m[9]*m[3]*m[14] - m[13]*m[2]*m[11] + m[13]*m[3]*m[10]
	c02 := m[1]*m[6]*m[15] - m[1]*m[7]*m[14] - m[5]*m[2]*m[15] + m[5]*m[3]*m[14] + m[13]*m[2]*m[7] - m[13]*m[3]*m[6]
	c03 := -m[1]*m[6]*m[11] + m[1]*m[7]*m[10] + m[5]*m[2]*m[11] - m[5]*m[3]*m[10] - m[9]*m[2]*m[7] + m[9]*m[3]*m[6]

	c10 := -m[4]*m[10]*m[15] + m[4]*m[11]*m[14] + m[8]*m[6]*m[15] - m[8]*m[7]*m[14] - m[12]*m[6]*m[11] + m[12]*m[7]*m[10]
	c11 := m[0]*m[10]*m[15] - m[0]*m[11]*m[14] - m[8]*m[2]*m[15] + m[8]*m[3]*m[14] + m[12]*m[2]*m[11] - m[12]*m[3]*m[10]
	c12 := -m[0]*m[6]*m[15] + m[0]*m[7]*m[14] + m[4]*m[2]*m[15] - m[4]*m[3]*m[14] - m[12]*m[2]*m[7] + m[12]*m[3]*m[6]
	c13 := m[0]*m[6]*m[11] - m[0]*m[7]*m[10] - m[4]*m[2]*m[11] + m[4]*m[3]*m[10] + m[8]*m[2]*m[7] - m[8]*m[3]*m[6]

	c20 := m[4]*m[9]*m[15] - m[4]*m[11]*m[13] - m[8]*m[5]*m[15] + m[8]*m[7]*m[13] + m[12]*m[5]*m[11] - m[12]*m[7]*m[9]
	c21 := -m[0]*m[9]*m[15] + m[0]*m[11]*m[13] + m[8]*m[1]*m[15] - m[8]*m[3]*m[13] - m[12]*m[1]*m[11] + m[12]*m[3]*m[9]
	c22 := m[0]*m[5]*m[15] - m[0]*m[7]*m[13] - m[4]*m[1]*m[15] + m[4]*m[3]*m[13] + m[12]*m[1]*m[7] - m[12]*m[3]*m[5]
	c23 := -m[0]*m[5]*m[11] + m[0]*m[7]*m[9] + m[4]*m[1]*m[11] - m[4]*m[3]*m[9] - m[8]*m[1]*m[7] + m[8]*m[3]*m[5]

	c30 := -m[4]*m[9]*m[14] + m[4]*m[10]*m[13] + m[8]*m[5]*m[14] - m[8]*m[6]*m[13] - m[12]*m[5]*m[10] + m[12]*m[6]*m[9]
	c31 := m[0]*m[9]*m[14] - m[0]*m[10]*m[13] - m[8]*m[1]*m[14] + m[8]*m[2]*m[13] + m[12]*m[1]*m[10] - m[12]*m[2]*m[9]
	c32 := -m[0]*m[5]*m[14] + m[0]*m[6]*m[13] + m[4]*m[1]*m[14] - m[4]*m[2]*m[13] - m[12]*m[1]*m[6] + m[12]*m[2]*m[5]
	c33 := m[0]*m[5]*m[10] - m[0]*m[6]*m[9] - m[4]*m[1]*m[10] + m[4]*m[2]*m[9] + m[8]*m[1]*m[6] - m[8]*m[2]*m[5]

	// Calculate determinant
	det := m[0]*c00 + m[4]*c01 + m[8]*c02 + m[12]*c03

	if det == 0 {
		return Identity()
	}

	invDet := 1.0 / det

	return Mat4{
		c00 * invDet, c01 * invDet, c02 * invDet, c03 * invDet,
		c10 * invDet, c11 * invDet, c12 * invDet, c13 * invDet,
		c20 * invDet, c21 * invDet, c22 * invDet, c23 * invDet,
		c30 * invDet, c31 * invDet, c32 * invDet, c33 * invDet,
	}
}
