package bounds

import "github.com/chewxy/math32"

// Calculate the orientation measure of a bound with normal cone half angle
// acos(cosO) and emission spread acos(cosE).
func OrientationMeasure(cosO, cosE float32) float32 {
	thetaO := safeAcos(cosO)
	thetaE := safeAcos(cosE)
	thetaW := math32.Min(thetaO+thetaE, math32.Pi)
	sinO := math32.Sqrt(math32.Max(0, 1-cosO*cosO))

	return 2*math32.Pi*(1-cosO) +
		math32.Pi/2*(2*thetaW*sinO-math32.Cos(thetaO-2*thetaW)-2*thetaO*sinO+cosO)
}

// Calculate the correction factor that penalizes splits along the short
// sides of parent. Flat axes get an infinite factor so they never win.
func AxisCorrection(parent AABB, axis Axis) float32 {
	d := parent.Diagonal()
	if d[axis] == 0 {
		return math32.Inf(1)
	}
	return parent.LongestExtent() / d[axis]
}

// Estimate the cost of a bound when splitting along an axis with correction
// factor kr. Lower is better.
func Cost(lb LightBound, kr float32) float32 {
	count := lb.Count
	if count < 1 {
		count = 1
	}
	return lb.Power * OrientationMeasure(lb.CosThetaO, lb.CosThetaE) * kr * lb.Box.SurfaceArea() / float32(count)
}
