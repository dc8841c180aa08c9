package lightbvh

import (
	"errors"
	"sort"
	"time"

	"github.com/achilleasa/lightbvh/bounds"
	"github.com/achilleasa/lightbvh/log"
)

var (
	ErrNoLights = errors.New("lightbvh: no lights to build a tree from")
)

// A tree node while the tree is being built.
type workingNode struct {
	bound bounds.LightBound

	// For internal nodes the index of the left child. For leafs the
	// position of the light in the sorted orders; this is replaced by the
	// original light index once the build completes.
	child  int32
	isLeaf bool
}

// Hands out sibling node pairs. Pairs start at slot 2 so that every left
// child lives at an even index; slot 1 is never used.
type nodeAllocator struct {
	next int32
}

func newNodeAllocator() *nodeAllocator {
	return &nodeAllocator{next: 2}
}

// Reserve two adjacent slots and return the index of the first one.
func (a *nodeAllocator) allocPair() int32 {
	index := a.next
	a.next += 2
	return index
}

type builder struct {
	logger log.Logger
	opts   Options

	sources []Source
	lights  []bounds.LightBound

	// Light indices sorted by bound centroid along each axis. Every
	// subtree owns the same position range in all three orders.
	sorted [bounds.NumAxes][]int32

	// Nodes stored as a contiguous list with room for 2 * len(lights) entries.
	nodes []workingNode
	alloc *nodeAllocator

	// Scratch buffers.
	prefixCost []float32
	goesLeft   []bool
	scratch    []int32

	stats Stats
}

// Build a light BVH for the supplied light sources.
//
// The builder recursively splits the lights using a surface area and
// orientation heuristic until each leaf contains a single light. The
// returned tree stores the nodes in their compact GPU layout along with an
// optional tree of merged emission lobes.
func Build(sources []Source, opts Options) (*Tree, error) {
	if len(sources) == 0 {
		return nil, ErrNoLights
	}

	b := &builder{
		logger:  log.New("light bvh builder"),
		opts:    opts.normalize(),
		sources: sources,
	}
	defer b.release()

	start := time.Now()
	b.seed()
	b.buildRecursive(0, 0, len(b.lights), 1)
	permutation := b.resolveLeafs()

	tree := &Tree{
		Nodes:       b.compact(),
		Permutation: permutation,
		DepthSets:   b.depthSets(),
		Root:        b.nodes[0].bound,
	}
	if b.opts.BuildLobeTree {
		tree.Lobes = b.buildLobes(tree.Nodes, tree.DepthSets)
	}
	b.applyRootPowerMode(tree)

	b.stats.BuildTime = time.Since(start)
	tree.Stats = b.stats

	b.logger.Debugf(
		"light BVH build time: %d ms, lights: %d, maxDepth: %d, nodes: %d, leafs: %d, fallback splits: %d",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.Lights, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs, b.stats.FallbackSplits,
	)
	return tree, nil
}

// Compute the light bounds, the root bound and the per-axis sorted orders.
func (b *builder) seed() {
	lightCount := len(b.sources)
	b.lights = make([]bounds.LightBound, lightCount)
	b.nodes = make([]workingNode, 2*lightCount)
	b.alloc = newNodeAllocator()
	b.prefixCost = make([]float32, lightCount)
	b.goesLeft = make([]bool, lightCount)
	b.scratch = make([]int32, lightCount)
	b.stats.Lights = lightCount

	root := bounds.EmptyLightBound()
	centroids := make([][bounds.NumAxes]float32, lightCount)
	for index, src := range b.sources {
		b.lights[index] = src.Bound(&b.opts)
		root = bounds.Union(root, b.lights[index])

		c := b.lights[index].Box.Centroid()
		centroids[index] = [bounds.NumAxes]float32{c[0], c[1], c[2]}
	}
	b.nodes[0].bound = root

	for axis := 0; axis < bounds.NumAxes; axis++ {
		order := make([]int32, lightCount)
		for index := range order {
			order[index] = int32(index)
		}
		sort.SliceStable(order, func(i, j int) bool {
			return centroids[order[i]][axis] < centroids[order[j]][axis]
		})
		b.sorted[axis] = order
	}
}

// Split the lights at positions [first, first+count) and store the result
// at nodeIndex.
func (b *builder) buildRecursive(nodeIndex int32, first, count, depth int) {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}
	b.stats.Nodes++

	if count == 1 {
		b.nodes[nodeIndex].isLeaf = true
		b.nodes[nodeIndex].child = int32(first)
		b.stats.Leafs++
		return
	}

	split := b.partitionSAH(first, count, b.nodes[nodeIndex].bound.Box)
	if split.fallback {
		b.stats.FallbackSplits++
	}

	b.splitOrders(split, first, count)

	end := first + count
	leftIndex := b.alloc.allocPair()
	b.nodes[nodeIndex].child = leftIndex
	b.nodes[leftIndex].bound = split.left
	b.nodes[leftIndex+1].bound = split.right

	b.buildRecursive(leftIndex, first, split.index-first, depth+1)
	b.buildRecursive(leftIndex+1, split.index, end-split.index, depth+1)
}

// Split the position range [first, first+count) of all three orders at the
// split index of the winning axis. The two remaining orders are partitioned
// stably so that each side stays sorted.
func (b *builder) splitOrders(split splitCandidate, first, count int) {
	end := first + count
	for i := first; i < end; i++ {
		b.goesLeft[b.sorted[split.axis][i]] = i < split.index
	}

	// This goes through the scratch buffer as an in-place partition would
	// not preserve the relative order.
	for axis := bounds.XAxis; axis < bounds.NumAxes; axis++ {
		if axis == split.axis {
			continue
		}

		left, right := 0, split.index-first
		for _, light := range b.sorted[axis][first:end] {
			if b.goesLeft[light] {
				b.scratch[left] = light
				left++
			} else {
				b.scratch[right] = light
				right++
			}
		}
		copy(b.sorted[axis][first:end], b.scratch[:count])
	}
}

// Replace leaf sorted positions with original light indices and return the
// final leaf order.
func (b *builder) resolveLeafs() []int32 {
	order := b.sorted[bounds.XAxis]
	for index := range b.nodes {
		if b.nodes[index].isLeaf {
			b.nodes[index].child = order[b.nodes[index].child]
		}
	}

	permutation := make([]int32, len(order))
	copy(permutation, order)
	return permutation
}

// Collect the indices of the nodes at each depth, root first. Unused slots
// are skipped.
func (b *builder) depthSets() [][]int32 {
	sets := make([][]int32, b.stats.MaxDepth)

	var collect func(index int32, depth int)
	collect = func(index int32, depth int) {
		node := &b.nodes[index]
		if node.bound.IsEmpty() {
			return
		}
		sets[depth] = append(sets[depth], index)
		if node.isLeaf {
			return
		}
		collect(node.child, depth+1)
		collect(node.child+1, depth+1)
	}
	collect(0, 0)

	return sets
}

func (b *builder) applyRootPowerMode(tree *Tree) {
	if b.opts.RootPower != PowerPerLight {
		return
	}

	count := float32(b.nodes[0].bound.Count)
	if count < 1 {
		count = 1
	}
	tree.Nodes[0].Power /= count
	if tree.Lobes != nil {
		tree.Lobes[0].Intensity /= count
	}
}

// Drop all working buffers.
func (b *builder) release() {
	b.lights = nil
	b.nodes = nil
	b.prefixCost = nil
	b.goesLeft = nil
	b.scratch = nil
	for axis := range b.sorted {
		b.sorted[axis] = nil
	}
}
