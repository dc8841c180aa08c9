package lightbvh

import (
	"github.com/achilleasa/lightbvh/bounds"
	"github.com/achilleasa/lightbvh/types"
)

// A Source is a light (or a pre-built cluster of lights) that the builder
// places at a tree leaf.
type Source interface {
	// Get the bound used for partitioning the source.
	Bound(opts *Options) bounds.LightBound

	// Get the emission lobe stored at the source leaf.
	Lobe(opts *Options) Lobe
}

// A one-sided emissive triangle given by a vertex and two edges.
type TriangleLight struct {
	Position types.Vec3
	Edge1    types.Vec3
	Edge2    types.Vec3

	// Surface normal. Light is emitted towards the opposite hemisphere so the
	// emission cone axis is the negated normal.
	Normal types.Vec3

	// Emitted luminance per unit area.
	Weight float32
}

// Create a triangle light from its three vertices.
func NewTriangleLight(v0, v1, v2, normal types.Vec3, weight float32) TriangleLight {
	return TriangleLight{
		Position: v0,
		Edge1:    v1.Sub(v0),
		Edge2:    v2.Sub(v0),
		Normal:   normal,
		Weight:   weight,
	}
}

// Get the triangle vertices.
func (tl TriangleLight) Vertices() [3]types.Vec3 {
	return [3]types.Vec3{
		tl.Position,
		tl.Position.Add(tl.Edge1),
		tl.Position.Add(tl.Edge2),
	}
}

// Get triangle area.
func (tl TriangleLight) Area() float32 {
	return tl.Edge1.Cross(tl.Edge2).Len() * 0.5
}

// Get the emitted power (area times weight).
func (tl TriangleLight) Power() float32 {
	return tl.Area() * tl.Weight
}

// Get the light bound of the triangle.
func (tl TriangleLight) Bound(opts *Options) bounds.LightBound {
	v := tl.Vertices()
	box := bounds.AABBFromPoints(v[0], v[1], v[2]).Inflate(opts.BoxEpsilon)
	return bounds.PlanarEmitterBound(box, tl.Normal.Mul(-1), tl.Power())
}

// Get the emission lobe of the triangle.
func (tl TriangleLight) Lobe(opts *Options) Lobe {
	v := tl.Vertices()
	center := v[0].Add(v[1]).Add(v[2]).Mul(1.0 / 3.0)

	var radius float32
	for _, vertex := range v {
		if d := center.Distance(vertex); d > radius {
			radius = d
		}
	}

	axis := tl.Normal.Normalize().Mul(-opts.LeafAxisScale)
	return Lobe{
		Axis:      axis,
		Variance:  (tl.Edge1.Dot(tl.Edge1) + tl.Edge2.Dot(tl.Edge2) - tl.Edge1.Dot(tl.Edge2)) / 18,
		Center:    center,
		Radius:    radius,
		Intensity: tl.Power(),
		Sharpness: lobeSharpness(axis.Len(), opts.MaxLobeAxisLength),
	}
}

// An InstancedCluster places a pre-built light tree at a world-space
// location. The tree is represented by its root bound (already transformed
// to world space) and its root lobe (in the tree's local space).
type InstancedCluster struct {
	WorldBound bounds.LightBound
	Transform  types.Mat4
	Template   Lobe
}

// Create an instanced cluster from the root bound and root lobe of a tree
// built in local space.
func NewInstancedCluster(localBound bounds.LightBound, template Lobe, transform types.Mat4) InstancedCluster {
	return InstancedCluster{
		WorldBound: localBound.Transform(transform, LinearScale(transform)),
		Transform:  transform,
		Template:   template,
	}
}

// Get the uniform scale applied by a transformation matrix as the length of
// the transformed X axis.
func LinearScale(m types.Mat4) float32 {
	return m.TransformDir(types.XYZ(1, 0, 0)).Len()
}

// Get the world-space bound of the cluster.
func (ic InstancedCluster) Bound(_ *Options) bounds.LightBound {
	return ic.WorldBound
}

// Get the world-space lobe of the cluster. The template lobe is moved by the
// instance transform and its spatial terms and intensity are multiplied by
// the transform scale. The template axis keeps its length and the template
// sharpness is kept.
func (ic InstancedCluster) Lobe(_ *Options) Lobe {
	t := ic.Template
	center := ic.Transform.TransformPoint(t.Center)

	scale := float32(1)
	if t.Radius > 0 {
		extended := ic.Transform.TransformPoint(t.Center.Add(types.XYZ(t.Radius, 0, 0)))
		scale = extended.Distance(center) / t.Radius
	}

	// The axis is a blend of emitter normals so it follows the normal
	// transform; its length encodes the lobe spread and is preserved.
	axis := ic.Transform.NormalMatrix().TransformDir(t.Axis).Normalize().Mul(t.Axis.Len())

	return Lobe{
		Axis:      axis,
		Variance:  t.Variance * scale,
		Center:    center,
		Radius:    t.Radius * scale,
		Intensity: t.Intensity * scale,
		Sharpness: t.Sharpness,
	}
}
