package lightbvh

import (
	"github.com/achilleasa/lightbvh/bounds"
	"github.com/achilleasa/lightbvh/types"
	"github.com/chewxy/math32"
)

// Largest value of a quantized cone angle cosine.
const angleQuantLevels = 32767

// CompactNode is the 48 byte GPU representation of a light BVH node.
//
// Child encodes the node type:
//
// - For internal nodes it is >= 0 and points to the left child; the right
//   child is always stored at Child+1
// - For leafs it is < 0 and encodes the original light index as -index-1
//
// PackedAngles stores the quantized normal cone cosine in its low 16 bits and
// the quantized emission cosine in its high 16 bits.
type CompactNode struct {
	BoxMin       types.Vec3
	Child        int32
	BoxMax       types.Vec3
	PackedAngles uint32
	PackedAxis   types.Vec2
	Power        float32
	_            uint32
}

// Check if this is a leaf node.
func (n *CompactNode) IsLeaf() bool {
	return n.Child < 0
}

// Get the original light index for a leaf node.
func (n *CompactNode) LightIndex() int32 {
	return -n.Child - 1
}

// Get the index of the left child. The right child is stored at the next slot.
func (n *CompactNode) FirstChild() int32 {
	return n.Child
}

// Decode the light bound stored in this node. Count is not stored and is
// always reported as zero. Full sphere cones (cosThetaO = -1) decode to a
// zero axis.
func (n *CompactNode) Bound() bounds.LightBound {
	cosO, cosE := UnpackAngles(n.PackedAngles)
	var axis types.Vec3
	if cosO > -1 {
		axis = types.DecodeOctahedral(n.PackedAxis)
	}
	return bounds.LightBound{
		Box:       bounds.AABB{Min: n.BoxMin, Max: n.BoxMax},
		Axis:      axis,
		CosThetaO: cosO,
		CosThetaE: cosE,
		Power:     n.Power,
	}
}

func quantizeCos(c float32) uint32 {
	c = math32.Max(-1, math32.Min(c, 1))
	return uint32(math32.Floor(angleQuantLevels * (c + 1) / 2))
}

func dequantizeCos(q uint32) float32 {
	return 2*float32(q)/angleQuantLevels - 1
}

// Pack the normal cone and emission cosines into a single word.
func PackAngles(cosThetaO, cosThetaE float32) uint32 {
	return quantizeCos(cosThetaO) | quantizeCos(cosThetaE)<<16
}

// Unpack the normal cone and emission cosines from a packed word.
func UnpackAngles(packed uint32) (cosThetaO, cosThetaE float32) {
	return dequantizeCos(packed & 0xffff), dequantizeCos(packed >> 16)
}

// A Lobe approximates the emission of a group of lights by a spherical
// gaussian centered in a bounding sphere.
type Lobe struct {
	// Blended emission direction. Its length shrinks as the merged
	// directions diverge.
	Axis     types.Vec3
	Variance float32

	Center types.Vec3
	Radius float32

	Intensity float32
	Sharpness float32
}

// LobeNode is the 48 byte GPU representation of a lobe tree node. Child
// mirrors the Child field of the CompactNode at the same index.
type LobeNode struct {
	Lobe
	Child int32
	_     uint32
}

// Check if this is a leaf node.
func (n *LobeNode) IsLeaf() bool {
	return n.Child < 0
}

// Calculate the sharpness of a lobe whose blended axis has length r. Lengths
// are clamped to maxLen.
func lobeSharpness(r, maxLen float32) float32 {
	r = math32.Min(r, maxLen)
	return (3*r - r*r*r) / (1 - r*r)
}

// Merge two lobes weighting each side by its share of the total intensity.
// The second return value is false if both intensities are zero in which case
// equal weights are used.
func mergeLobes(l, r Lobe, maxLen float32) (Lobe, bool) {
	wl, wr := float32(0.5), float32(0.5)
	total := l.Intensity + r.Intensity
	ok := total > 0
	if ok {
		wl = l.Intensity / total
		wr = 1 - wl
	}

	axis := l.Axis.Lerp(r.Axis, wr)
	center := l.Center.Lerp(r.Center, wr)
	offset := l.Center.Sub(r.Center)

	return Lobe{
		Axis:      axis,
		Variance:  wl*l.Variance + wr*r.Variance + wl*wr*offset.Dot(offset),
		Center:    center,
		Radius:    math32.Max(center.Distance(l.Center)+l.Radius, center.Distance(r.Center)+r.Radius),
		Intensity: total,
		Sharpness: lobeSharpness(axis.Len(), maxLen),
	}, ok
}
