package types

import "github.com/chewxy/math32"

// Map a unit direction to a point in [-1, 1]^2 using the octahedral
// projection. The zero vector encodes to the origin.
func EncodeOctahedral(dir Vec3) Vec2 {
	l1 := math32.Abs(dir[0]) + math32.Abs(dir[1]) + math32.Abs(dir[2])
	if l1 == 0 {
		return Vec2{}
	}

	x, y, z := dir[0]/l1, dir[1]/l1, dir[2]/l1
	if z < 0 {
		x, y = (1-math32.Abs(y))*signNotZero(x), (1-math32.Abs(x))*signNotZero(y)
	}
	return Vec2{x, y}
}

// Map an octahedral encoded point back to a unit direction.
func DecodeOctahedral(e Vec2) Vec3 {
	v := Vec3{e[0], e[1], 1 - math32.Abs(e[0]) - math32.Abs(e[1])}
	if v[2] < 0 {
		v[0], v[1] = (1-math32.Abs(e[1]))*signNotZero(e[0]), (1-math32.Abs(e[0]))*signNotZero(e[1])
	}
	return v.Normalize()
}

func signNotZero(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
