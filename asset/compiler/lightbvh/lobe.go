package lightbvh

// Build the lobe tree bottom-up, one depth level at a time starting from the
// deepest level so both children of a node are ready before it is visited.
func (b *builder) buildLobes(nodes []CompactNode, depthSets [][]int32) []LobeNode {
	lobes := make([]LobeNode, len(nodes))
	unweightedMerges := 0

	for depth := len(depthSets) - 1; depth >= 0; depth-- {
		for _, index := range depthSets[depth] {
			node := &nodes[index]
			lobes[index].Child = node.Child

			if node.IsLeaf() {
				lobes[index].Lobe = b.sources[node.LightIndex()].Lobe(&b.opts)
				continue
			}

			left := lobes[node.FirstChild()].Lobe
			right := lobes[node.FirstChild()+1].Lobe
			merged, weighted := mergeLobes(left, right, b.opts.MaxLobeAxisLength)
			if !weighted {
				unweightedMerges++
			}
			lobes[index].Lobe = merged
		}
	}

	if unweightedMerges > 0 {
		b.logger.Warningf("%d lobe merges had zero total intensity; used equal weights", unweightedMerges)
	}
	return lobes
}
