package bounds

import (
	"github.com/achilleasa/lightbvh/types"
	"github.com/chewxy/math32"
)

// A LightBound summarizes the spatial extent, emission directions and total
// power of a set of lights.
//
// Axis and CosThetaO describe the cone of emitter normals, CosThetaE the
// additional spread of emitted light around any normal. A zero Axis marks
// an uninitialized bound.
type LightBound struct {
	Box       AABB
	Axis      types.Vec3
	CosThetaO float32
	CosThetaE float32
	Power     float32
	Count     uint32
}

// Create an empty light bound. It is the identity element of Union.
func EmptyLightBound() LightBound {
	return LightBound{Box: EmptyAABB()}
}

// Create the bound of a single one-sided planar emitter with the given normal.
func PlanarEmitterBound(box AABB, normal types.Vec3, power float32) LightBound {
	return LightBound{
		Box:       box,
		Axis:      normal.Normalize(),
		CosThetaO: 1,
		CosThetaE: math32.Cos(math32.Pi / 2),
		Power:     power,
		Count:     1,
	}
}

// Check if this bound has no lights merged into it.
func (lb LightBound) IsEmpty() bool {
	return lb.Count == 0
}

// Get the normal cone of this bound.
func (lb LightBound) Cone() Cone {
	return Cone{Axis: lb.Axis, CosTheta: lb.CosThetaO}
}

// Merge two light bounds. A side with zero power is ignored.
func Union(a, b LightBound) LightBound {
	if a.Power == 0 {
		return b
	}
	if b.Power == 0 {
		return a
	}

	cone := UnionCone(a.Cone(), b.Cone())
	return LightBound{
		Box:       a.Box.Extend(b.Box),
		Axis:      cone.Axis,
		CosThetaO: cone.CosTheta,
		CosThetaE: math32.Min(a.CosThetaE, b.CosThetaE),
		Power:     a.Power + b.Power,
		Count:     a.Count + b.Count,
	}
}

// Transform the bound by an instance matrix. The box corners are
// transformed, the axis is transformed like a surface normal (by the inverse
// transpose of m) and power is scaled by the squared linear scale of the
// transform.
func (lb LightBound) Transform(m types.Mat4, scale float32) LightBound {
	out := lb
	out.Box = lb.Box.Transform(m)
	if !lb.Axis.IsZero() {
		out.Axis = m.NormalMatrix().TransformDir(lb.Axis).Normalize()
	}
	out.Power = lb.Power * scale * scale
	return out
}
