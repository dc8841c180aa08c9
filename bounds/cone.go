package bounds

import (
	"github.com/achilleasa/lightbvh/types"
	"github.com/chewxy/math32"
)

// A cone of directions around Axis with half angle acos(CosTheta). A zero
// axis denotes the empty cone.
type Cone struct {
	Axis     types.Vec3
	CosTheta float32
}

// Create a cone covering all directions.
func FullSphere() Cone {
	return Cone{CosTheta: -1}
}

// Check if the cone is empty.
func (c Cone) IsEmpty() bool {
	return c.Axis.IsZero()
}

// Check if the cone covers the whole sphere of directions.
func (c Cone) IsFullSphere() bool {
	return c.CosTheta <= -1
}

func safeAcos(v float32) float32 {
	return math32.Acos(clamp(v, -1, 1))
}

func safeAsin(v float32) float32 {
	return math32.Asin(clamp(v, -1, 1))
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}

// Angle between two unit vectors. Unlike acos(dot) this stays accurate for
// nearly parallel and nearly opposite vectors.
func angleBetween(v1, v2 types.Vec3) float32 {
	if v1.Dot(v2) < 0 {
		return math32.Pi - 2*safeAsin(v1.Add(v2).Len()/2)
	}
	return 2 * safeAsin(v2.Sub(v1).Len()/2)
}

// Calculate the smallest cone that contains both a and b.
func UnionCone(a, b Cone) Cone {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}

	thetaA := safeAcos(a.CosTheta)
	thetaB := safeAcos(b.CosTheta)
	thetaD := angleBetween(a.Axis, b.Axis)

	// One cone already contains the other
	if math32.Min(thetaD+thetaB, math32.Pi) <= thetaA {
		return a
	}
	if math32.Min(thetaD+thetaA, math32.Pi) <= thetaB {
		return b
	}

	thetaO := (thetaA + thetaD + thetaB) / 2
	if thetaO >= math32.Pi {
		return FullSphere()
	}

	// Rotate a's axis towards b so the new cone just touches both
	rotAxis := a.Axis.Cross(b.Axis).Normalize()
	if rotAxis.IsZero() {
		return FullSphere()
	}
	thetaR := thetaO - thetaA
	axis := types.AxisAngle4(rotAxis, thetaR).TransformDir(a.Axis)

	return Cone{
		Axis:     axis.Normalize(),
		CosTheta: math32.Cos(thetaO),
	}
}
