package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/achilleasa/lightbvh/types"
	"github.com/olekukonko/tablewriter"
)

// An Emitter references an emissive triangle of the input scene.
type Emitter struct {
	MeshIndex      uint32
	PrimitiveIndex uint32

	// The instance that places the triangle in world space. Emitters that
	// belong to a mesh light tree are shared by all instances of the mesh
	// and set this to the first instance that references the mesh.
	InstanceIndex uint32

	// Triangle area in the space the light tree was built in.
	Area float32

	// Scalar emission of the triangle material.
	Emission float32
}

// A MeshLightTree is built over the emissive triangles of a single mesh in
// mesh space. Its leaf light indices index Emitters.
type MeshLightTree struct {
	MeshIndex uint32
	Tree      *lightbvh.Tree
	Emitters  []Emitter
}

// A LightInstance places a mesh light tree in the world.
type LightInstance struct {
	MeshTree      uint32
	InstanceIndex uint32

	Transform    types.Mat4
	InvTransform types.Mat4
}

// A LightScene holds the light trees for a compiled scene. Scenes are either
// flattened, with a single tree whose leafs index Emitters, or two-level,
// where the leafs of the top tree index Instances and each instance points
// to a mesh light tree.
type LightScene struct {
	Tree      *lightbvh.Tree
	Emitters  []Emitter
	MeshTrees []MeshLightTree
	Instances []LightInstance
}

// Check if the scene contains no lights.
func (ls *LightScene) IsEmpty() bool {
	return ls.Tree == nil
}

// Check if the scene uses a top-level tree over instanced mesh trees.
func (ls *LightScene) IsTwoLevel() bool {
	return len(ls.MeshTrees) != 0
}

// Get the number of world space emissive triangles.
func (ls *LightScene) LightCount() int {
	if !ls.IsTwoLevel() {
		return len(ls.Emitters)
	}

	count := 0
	for _, inst := range ls.Instances {
		count += len(ls.MeshTrees[inst.MeshTree].Emitters)
	}
	return count
}

// Get the summed power of all lights in the scene.
func (ls *LightScene) TotalPower() float32 {
	if ls.IsEmpty() {
		return 0
	}
	return ls.Tree.Root.Power
}

// Get the top-level tree followed by the mesh light trees.
func (ls *LightScene) Trees() []*lightbvh.Tree {
	if ls.IsEmpty() {
		return nil
	}

	trees := []*lightbvh.Tree{ls.Tree}
	for _, mt := range ls.MeshTrees {
		trees = append(trees, mt.Tree)
	}
	return trees
}

// Build a tabular representation of the scene trees and their sizes.
func (ls *LightScene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Lights", "Size"})

	if ls.IsEmpty() {
		table.Append([]string{"Lights", "---", "0", fmtSize()})
		table.Render()
		return buf.String()
	}

	var all []interface{}
	addTree := func(name string, tree *lightbvh.Tree) {
		items := treeItems(tree)
		all = append(all, items...)
		table.Append([]string{"", name, fmt.Sprint(tree.Stats.Lights), fmtSize(items...)})
	}

	table.Append([]string{"Light trees", "---", fmt.Sprint(ls.LightCount()), " "})
	addTree("Top", ls.Tree)
	for _, mt := range ls.MeshTrees {
		addTree(fmt.Sprintf("Mesh %d", mt.MeshIndex), mt.Tree)
	}
	table.Append([]string{" ", " ", " ", " "})

	emitters := ls.Emitters
	for _, mt := range ls.MeshTrees {
		emitters = append(emitters[:len(emitters):len(emitters)], mt.Emitters...)
	}
	all = append(all, emitters, ls.Instances)
	table.Append([]string{"Emitters", "---", " ", fmtSize(emitters, ls.Instances)})
	table.Append([]string{"", "Emitters", fmt.Sprint(len(emitters)), fmtSize(emitters)})
	table.Append([]string{"", "Instances", fmt.Sprint(len(ls.Instances)), fmtSize(ls.Instances)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(all...), " ")})

	table.Render()
	return buf.String()
}

func treeItems(tree *lightbvh.Tree) []interface{} {
	items := []interface{}{tree.Nodes, tree.Lobes, tree.Permutation}
	for _, set := range tree.DepthSets {
		items = append(items, set)
	}
	return items
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
