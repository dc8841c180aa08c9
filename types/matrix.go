package types

import "github.com/go-gl/mathgl/mgl32"

// A column-major 4x4 matrix.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix that rotates by angle (radians) about axis. The
// axis does not need to be normalized.
func AxisAngle4(axis Vec3, angle float32) Mat4 {
	n := axis.Normalize()
	return Mat4(mgl32.HomogRotate3D(angle, mgl32.Vec3{n[0], n[1], n[2]}))
}

// Create a rotation matrix from yaw (X), pitch (Y) and roll (Z) angles in
// radians. The yaw rotation is applied first.
func Euler4(yaw, pitch, roll float32) Mat4 {
	q := mgl32.AnglesToQuat(roll, pitch, yaw, mgl32.ZYX)
	return Mat4(q.Normalize().Mat4())
}

// Build a translate * rotate * scale transformation.
func TRS(translation, rotation, scale Vec3) Mat4 {
	return Translate4(translation).Mul4(Euler4(rotation[0], rotation[1], rotation[2])).Mul4(Scale4(scale))
}

// Multiply with another matrix.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply with a 4 component vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Transform a point (w = 1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// Transform a direction (w = 0). The result is not normalized.
func (m Mat4) TransformDir(d Vec3) Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// Calculate the matrix inverse.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Get the matrix transpose.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl32.Mat4(m).Transpose())
}

// Get the matrix for transforming surface normals (the inverse transpose).
func (m Mat4) NormalMatrix() Mat4 {
	return m.Inv().Transpose()
}
