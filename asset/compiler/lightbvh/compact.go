package lightbvh

import "github.com/achilleasa/lightbvh/types"

// Convert the working nodes to their GPU layout. Unused slots stay zeroed.
func (b *builder) compact() []CompactNode {
	out := make([]CompactNode, len(b.nodes))
	for index := range b.nodes {
		if b.nodes[index].bound.IsEmpty() {
			continue
		}
		out[index] = compactNode(&b.nodes[index])
	}
	return out
}

func compactNode(node *workingNode) CompactNode {
	c := CompactNode{
		BoxMin:       node.bound.Box.Min,
		BoxMax:       node.bound.Box.Max,
		PackedAngles: PackAngles(node.bound.CosThetaO, node.bound.CosThetaE),
		PackedAxis:   types.EncodeOctahedral(node.bound.Axis),
		Power:        node.bound.Power,
	}

	if node.isLeaf {
		c.Child = -node.child - 1
	} else {
		c.Child = node.child
	}
	return c
}
