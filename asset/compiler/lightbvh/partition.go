package lightbvh

import (
	"github.com/achilleasa/lightbvh/bounds"
	"github.com/chewxy/math32"
)

// The outcome of a split search over a range of sorted lights.
type splitCandidate struct {
	axis bounds.Axis

	// Position (into the sorted order of axis) of the first light that
	// goes to the right child.
	index int
	cost  float32

	left  bounds.LightBound
	right bounds.LightBound

	// True if no candidate had a usable cost and a median split was used.
	fallback bool
}

// Record a candidate if it is at least as good as the current best. Zero
// costs are ignored and NaN costs never compare favorably.
func (s *splitCandidate) consider(cost float32, axis bounds.Axis, index int, right bounds.LightBound) {
	if cost != 0 && cost <= s.cost {
		s.cost = cost
		s.axis = axis
		s.index = index
		s.right = right
	}
}

// Find the split of positions [first, first+count) that minimizes the
// summed cost of both children. count must be at least 2.
func (b *builder) partitionSAH(first, count int, parentBox bounds.AABB) splitCandidate {
	best := splitCandidate{cost: math32.MaxFloat32}

	for axis := bounds.XAxis; axis < bounds.NumAxes; axis++ {
		kr := bounds.AxisCorrection(parentBox, axis)
		order := b.sorted[axis][first : first+count]

		// Left to right sweep; prefixCost[i] holds the cost of the first i
		// lights scaled by i.
		left := b.lights[order[0]]
		b.prefixCost[1] = bounds.Cost(left, kr)
		for i := 2; i < count; i++ {
			left = bounds.Union(left, b.lights[order[i-1]])
			b.prefixCost[i] = bounds.Cost(left, kr) * float32(i)
		}

		// Right to left sweep starting with a single light on the right.
		right := b.lights[order[count-1]]
		best.consider(b.prefixCost[count-1]+bounds.Cost(right, kr), axis, first+count-1, right)
		for i := count - 2; i > 0; i-- {
			right = bounds.Union(right, b.lights[order[i]])
			best.consider(b.prefixCost[i]+bounds.Cost(right, kr)*float32(count-i), axis, first+i, right)
		}
	}

	if best.cost == math32.MaxFloat32 {
		best.axis = bounds.XAxis
		best.index = first + count/2
		best.fallback = true
		best.right = b.unionRange(best.axis, best.index, first+count)
	}

	best.left = b.unionRange(best.axis, first, best.index)
	return best
}

// Union the bounds of the lights at positions [from, to) of the sorted
// order along axis.
func (b *builder) unionRange(axis bounds.Axis, from, to int) bounds.LightBound {
	out := bounds.EmptyLightBound()
	for _, light := range b.sorted[axis][from:to] {
		out = bounds.Union(out, b.lights[light])
	}
	return out
}
