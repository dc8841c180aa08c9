package compiler

import (
	"fmt"
	"time"

	"github.com/achilleasa/lightbvh/asset/compiler/input"
	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/achilleasa/lightbvh/asset/scene"
	"github.com/achilleasa/lightbvh/log"
	"github.com/achilleasa/lightbvh/types"
)

// Compiler options.
type Options struct {
	lightbvh.Options

	// Build a single tree over the world space triangles even when the
	// scene defines explicit mesh instances.
	Flatten bool
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{
		Options: lightbvh.DefaultOptions(),
	}
}

type sceneCompiler struct {
	logger log.Logger
	opts   Options

	parsedScene *input.Scene
	lightScene  *scene.LightScene

	// Indices of the emissive primitives of each mesh.
	meshEmissives [][]uint32
}

// Compile the emissive geometry of a parsed scene into light trees.
//
// Scenes without explicit mesh instances (or all scenes when Options.Flatten
// is set) are compiled into a single tree over world space triangles.
// Otherwise a tree is built per emissive mesh in mesh space and a top-level
// tree is built over the transformed mesh trees.
func Compile(parsedScene *input.Scene, opts Options) (*scene.LightScene, error) {
	sc := &sceneCompiler{
		logger:      log.New("scene compiler"),
		opts:        opts,
		parsedScene: parsedScene,
		lightScene:  &scene.LightScene{},
	}

	start := time.Now()
	sc.logger.Noticef("compiling light scene")

	err := sc.validate()
	if err != nil {
		return nil, err
	}

	if sc.collectEmissives() == 0 {
		sc.logger.Warning("the scene contains no emissive primitives; the light scene will be empty")
		return sc.lightScene, nil
	}

	if sc.flatten() {
		err = sc.compileFlat()
	} else {
		err = sc.compileTwoLevel()
	}
	if err != nil {
		return nil, err
	}

	sc.logger.Noticef("compiled light scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc.lightScene, nil
}

// Check that all mesh and material references are valid.
func (sc *sceneCompiler) validate() error {
	for instIndex, mi := range sc.parsedScene.MeshInstances {
		if int(mi.MeshIndex) >= len(sc.parsedScene.Meshes) {
			return fmt.Errorf("compiler: mesh instance %d references unknown mesh %d", instIndex, mi.MeshIndex)
		}
	}

	for _, mesh := range sc.parsedScene.Meshes {
		for primIndex, prim := range mesh.Primitives {
			if prim.MaterialIndex < 0 || prim.MaterialIndex >= len(sc.parsedScene.Materials) {
				return fmt.Errorf("compiler: primitive %d of mesh %q references unknown material %d", primIndex, mesh.Name, prim.MaterialIndex)
			}
		}
	}

	return nil
}

// Locate the emissive primitives of each mesh and return the number of
// emissive primitives across all mesh instances.
func (sc *sceneCompiler) collectEmissives() int {
	sc.meshEmissives = make([][]uint32, len(sc.parsedScene.Meshes))

	degenerate := 0
	for meshIndex, mesh := range sc.parsedScene.Meshes {
		for primIndex, prim := range mesh.Primitives {
			if !sc.parsedScene.Materials[prim.MaterialIndex].IsEmissive() {
				continue
			}
			if prim.GeometricNormal().IsZero() {
				degenerate++
				continue
			}
			sc.meshEmissives[meshIndex] = append(sc.meshEmissives[meshIndex], uint32(primIndex))
		}
	}

	if degenerate > 0 {
		sc.logger.Warningf("skipped %d degenerate emissive primitives", degenerate)
	}

	total := 0
	for _, mi := range sc.parsedScene.MeshInstances {
		total += len(sc.meshEmissives[mi.MeshIndex])
	}
	return total
}

func (sc *sceneCompiler) flatten() bool {
	return sc.opts.Flatten || !sc.parsedScene.ExplicitInstances
}

// Create the light source for an emissive primitive transformed by m.
func (sc *sceneCompiler) emitterLight(meshIndex, primIndex, instIndex uint32, m, normalMat types.Mat4) (lightbvh.TriangleLight, scene.Emitter) {
	prim := sc.parsedScene.Meshes[meshIndex].Primitives[primIndex]
	emission := sc.parsedScene.Materials[prim.MaterialIndex].Emission()

	light := lightbvh.NewTriangleLight(
		m.TransformPoint(prim.Vertices[0]),
		m.TransformPoint(prim.Vertices[1]),
		m.TransformPoint(prim.Vertices[2]),
		normalMat.TransformDir(prim.FaceNormal()).Normalize(),
		emission,
	)

	return light, scene.Emitter{
		MeshIndex:      meshIndex,
		PrimitiveIndex: primIndex,
		InstanceIndex:  instIndex,
		Area:           light.Area(),
		Emission:       emission,
	}
}

// Transform the emissive primitives of every mesh instance to world space and
// build a single tree.
func (sc *sceneCompiler) compileFlat() error {
	start := time.Now()

	sources := make([]lightbvh.Source, 0)
	for instIndex, mi := range sc.parsedScene.MeshInstances {
		normalMat := mi.Transform.NormalMatrix()
		for _, primIndex := range sc.meshEmissives[mi.MeshIndex] {
			light, emitter := sc.emitterLight(mi.MeshIndex, primIndex, uint32(instIndex), mi.Transform, normalMat)
			sources = append(sources, light)
			sc.lightScene.Emitters = append(sc.lightScene.Emitters, emitter)
		}
	}

	tree, err := lightbvh.Build(sources, sc.opts.Options)
	if err != nil {
		return fmt.Errorf("compiler: %w", err)
	}
	sc.lightScene.Tree = tree

	sc.logger.Infof("built flat light tree for %d emissive primitives in %d ms", len(sources), time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Build a light tree per emissive mesh and a top-level tree over the mesh
// instances that reference them.
func (sc *sceneCompiler) compileTwoLevel() error {
	start := time.Now()

	// Mesh trees are instanced so their root power must stay raw.
	meshOpts := sc.opts.Options
	meshOpts.RootPower = lightbvh.RawPower

	meshTreeIndex := make(map[uint32]int)
	clusters := make([]lightbvh.Source, 0)
	for instIndex, mi := range sc.parsedScene.MeshInstances {
		if len(sc.meshEmissives[mi.MeshIndex]) == 0 {
			continue
		}

		treeIndex, exists := meshTreeIndex[mi.MeshIndex]
		if !exists {
			meshTree, err := sc.buildMeshTree(mi.MeshIndex, uint32(instIndex), meshOpts)
			if err != nil {
				return err
			}
			sc.lightScene.MeshTrees = append(sc.lightScene.MeshTrees, meshTree)
			treeIndex = len(sc.lightScene.MeshTrees) - 1
			meshTreeIndex[mi.MeshIndex] = treeIndex
		}

		meshTree := sc.lightScene.MeshTrees[treeIndex].Tree
		var template lightbvh.Lobe
		if meshTree.Lobes != nil {
			template = meshTree.Lobes[0].Lobe
		}

		clusters = append(clusters, lightbvh.NewInstancedCluster(meshTree.Root, template, mi.Transform))
		sc.lightScene.Instances = append(sc.lightScene.Instances, scene.LightInstance{
			MeshTree:      uint32(treeIndex),
			InstanceIndex: uint32(instIndex),
			Transform:     mi.Transform,
			InvTransform:  mi.Transform.Inv(),
		})
	}

	tree, err := lightbvh.Build(clusters, sc.opts.Options)
	if err != nil {
		return fmt.Errorf("compiler: %w", err)
	}
	sc.lightScene.Tree = tree

	sc.logger.Infof(
		"built %d mesh light trees and a top-level tree for %d instances in %d ms",
		len(sc.lightScene.MeshTrees), len(clusters), time.Since(start).Nanoseconds()/1e6,
	)
	return nil
}

// Build a light tree over the emissive primitives of a mesh in mesh space.
func (sc *sceneCompiler) buildMeshTree(meshIndex, firstInstance uint32, opts lightbvh.Options) (scene.MeshLightTree, error) {
	ident := types.Ident4()
	primIndices := sc.meshEmissives[meshIndex]

	sources := make([]lightbvh.Source, len(primIndices))
	emitters := make([]scene.Emitter, len(primIndices))
	for index, primIndex := range primIndices {
		sources[index], emitters[index] = sc.emitterLight(meshIndex, primIndex, firstInstance, ident, ident)
	}

	tree, err := lightbvh.Build(sources, opts)
	if err != nil {
		return scene.MeshLightTree{}, fmt.Errorf("compiler: mesh %q: %w", sc.parsedScene.Meshes[meshIndex].Name, err)
	}

	sc.logger.Infof(`built light tree for mesh "%s" with %d emissive primitives`, sc.parsedScene.Meshes[meshIndex].Name, len(sources))
	return scene.MeshLightTree{
		MeshIndex: meshIndex,
		Tree:      tree,
		Emitters:  emitters,
	}, nil
}
