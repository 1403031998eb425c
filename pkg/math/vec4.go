package math

// Vec4 is a 4-component vector, used for RGBA colors and homogeneous points.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ drops the W component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Mul returns the component-wise product.
func (v Vec4) Mul(other Vec4) Vec4 {
	return Vec4{v.X * other.X, v.Y * other.Y, v.Z * other.Z, v.W * other.W}
}
