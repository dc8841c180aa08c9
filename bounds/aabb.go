package bounds

import (
	"math"

	"github.com/achilleasa/lightbvh/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	NumAxes = 3
)

// An axis-aligned bounding box.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty AABB. Extending an empty box by any box or point yields
// the argument.
func EmptyAABB() AABB {
	return AABB{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Create the smallest AABB containing all supplied points.
func AABBFromPoints(points ...types.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.ExtendPoint(p)
	}
	return box
}

// Check if the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Grow box to contain point p.
func (b AABB) ExtendPoint(p types.Vec3) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Grow box to contain another box.
func (b AABB) Extend(other AABB) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Grow both sides of every axis whose extent is below eps by eps.
func (b AABB) Inflate(eps float32) AABB {
	for axis := 0; axis < NumAxes; axis++ {
		if b.Max[axis]-b.Min[axis] < eps {
			b.Min[axis] -= eps
			b.Max[axis] += eps
		}
	}
	return b
}

// Get box center.
func (b AABB) Centroid() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box extents.
func (b AABB) Diagonal() types.Vec3 {
	if b.IsEmpty() {
		return types.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the length of the longest box side.
func (b AABB) LongestExtent() float32 {
	return b.Diagonal().MaxComponent()
}

// Calculate box surface area. Empty boxes have zero area.
func (b AABB) SurfaceArea() float32 {
	d := b.Diagonal()
	return 2 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// Get the 8 box corners.
func (b AABB) Corners() [8]types.Vec3 {
	var corners [8]types.Vec3
	for i := 0; i < 8; i++ {
		corners[i] = types.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corners[i][0] = b.Max[0]
		}
		if i&2 != 0 {
			corners[i][1] = b.Max[1]
		}
		if i&4 != 0 {
			corners[i][2] = b.Max[2]
		}
	}
	return corners
}

// Transform box by m and return the AABB of the transformed corners.
func (b AABB) Transform(m types.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.ExtendPoint(m.TransformPoint(c))
	}
	return out
}
