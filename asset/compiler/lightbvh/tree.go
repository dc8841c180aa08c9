package lightbvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/lightbvh/bounds"
	"github.com/olekukonko/tablewriter"
)

// Build statistics.
type Stats struct {
	Lights         int
	Nodes          int
	Leafs          int
	MaxDepth       int
	FallbackSplits int
	BuildTime      time.Duration
}

// A Tree is the output of a light BVH build.
type Tree struct {
	// Nodes in GPU layout. The root is stored at index 0. The slice holds
	// 2 * light count entries; unused slots are zeroed and never referenced.
	Nodes []CompactNode

	// Lobes parallel to Nodes; nil if the lobe tree was not requested.
	Lobes []LobeNode

	// Leaf order (left to right) expressed as original light indices.
	Permutation []int32

	// Node indices grouped by depth, root level first.
	DepthSets [][]int32

	// The root bound before compaction.
	Root bounds.LightBound

	Stats Stats
}

// Visit each node reachable from the root in depth-first order (left
// subtree first).
func (t *Tree) Walk(visit func(index int32, depth int)) {
	if len(t.Nodes) == 0 {
		return
	}

	var walk func(index int32, depth int)
	walk = func(index int32, depth int) {
		visit(index, depth)
		node := &t.Nodes[index]
		if node.IsLeaf() {
			return
		}
		walk(node.FirstChild(), depth+1)
		walk(node.FirstChild()+1, depth+1)
	}
	walk(0, 0)
}

// Get the original light indices of all leafs in depth-first order.
func (t *Tree) LeafLights() []int32 {
	out := make([]int32, 0, t.Stats.Leafs)
	t.Walk(func(index int32, _ int) {
		if t.Nodes[index].IsLeaf() {
			out = append(out, t.Nodes[index].LightIndex())
		}
	})
	return out
}

// Build a tabular representation of the build statistics.
func (t *Tree) StatsTable() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Lights", "Nodes", "Leafs", "Max depth", "Fallback splits", "Root power", "Build time"})
	table.Append([]string{
		fmt.Sprint(t.Stats.Lights),
		fmt.Sprint(t.Stats.Nodes),
		fmt.Sprint(t.Stats.Leafs),
		fmt.Sprint(t.Stats.MaxDepth),
		fmt.Sprint(t.Stats.FallbackSplits),
		fmt.Sprintf("%.3f", t.Root.Power),
		fmt.Sprint(t.Stats.BuildTime),
	})
	table.Render()
	return buf.String()
}

// Build a tabular dump of the first maxDepth levels of the tree.
func (t *Tree) DumpTable(maxDepth int) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Node", "Depth", "Child", "Min", "Max", "cosO", "cosE", "Power", "Intensity"})

	t.Walk(func(index int32, depth int) {
		if depth >= maxDepth {
			return
		}
		node := &t.Nodes[index]
		cosO, cosE := UnpackAngles(node.PackedAngles)

		child := fmt.Sprint(node.FirstChild())
		if node.IsLeaf() {
			child = fmt.Sprintf("light %d", node.LightIndex())
		}
		intensity := "-"
		if t.Lobes != nil {
			intensity = fmt.Sprintf("%.3f", t.Lobes[index].Intensity)
		}

		table.Append([]string{
			fmt.Sprint(index),
			fmt.Sprint(depth),
			child,
			fmt.Sprintf("%.2f %.2f %.2f", node.BoxMin[0], node.BoxMin[1], node.BoxMin[2]),
			fmt.Sprintf("%.2f %.2f %.2f", node.BoxMax[0], node.BoxMax[1], node.BoxMax[2]),
			fmt.Sprintf("%.3f", cosO),
			fmt.Sprintf("%.3f", cosE),
			fmt.Sprintf("%.3f", node.Power),
			intensity,
		})
	})
	table.Render()
	return buf.String()
}
