package compiler

import (
	"encoding/binary"
	"time"

	"github.com/achilleasa/lightbvh/asset/compiler/input"
	"github.com/achilleasa/lightbvh/asset/scene"
	"github.com/achilleasa/lightbvh/log"
	"github.com/achilleasa/lightbvh/metrics"
	"github.com/cespare/xxhash/v2"
)

// A ReleaseFunc receives light scenes that were replaced by a rebuild so the
// caller can free any resources (e.g. GPU buffers) created for them.
type ReleaseFunc func(*scene.LightScene)

// A Rebuilder keeps the light scene for a changing input scene and only
// recompiles it when the emissive content changes. It is not safe for
// concurrent use.
type Rebuilder struct {
	logger  log.Logger
	opts    Options
	release ReleaseFunc
	metrics *metrics.BuildMetrics

	current     *scene.LightScene
	fingerprint uint64
}

// Create a rebuilder. Both release and m may be nil.
func NewRebuilder(opts Options, release ReleaseFunc, m *metrics.BuildMetrics) *Rebuilder {
	return &Rebuilder{
		logger:  log.New("light scene rebuilder"),
		opts:    opts,
		release: release,
		metrics: m,
	}
}

// Get the current light scene or nil if no scene has been built yet.
func (r *Rebuilder) Current() *scene.LightScene {
	return r.current
}

// Update the light scene for the supplied input scene. The scene is only
// recompiled if its fingerprint differs from the one used for the current
// light scene. Returns the current light scene and a flag indicating whether
// a rebuild took place. On error the current light scene is kept.
func (r *Rebuilder) Update(parsedScene *input.Scene) (*scene.LightScene, bool, error) {
	fp := Fingerprint(parsedScene, r.opts)
	if r.current != nil && fp == r.fingerprint {
		r.logger.Debugf("light scene fingerprint %016x unchanged; skipping rebuild", fp)
		r.metrics.ObserveCached()
		return r.current, false, nil
	}

	start := time.Now()
	lightScene, err := Compile(parsedScene, r.opts)
	if err != nil {
		r.metrics.ObserveFailure()
		return r.current, false, err
	}

	r.metrics.ObserveBuild(time.Since(start), lightScene.LightCount(), lightScene.Trees()...)

	prev := r.current
	r.current, r.fingerprint = lightScene, fp
	if prev != nil && r.release != nil {
		r.release(prev)
	}

	r.logger.Infof("rebuilt light scene with fingerprint %016x", fp)
	return r.current, true, nil
}

// Release the current light scene.
func (r *Rebuilder) Close() {
	if r.current != nil && r.release != nil {
		r.release(r.current)
	}
	r.current, r.fingerprint = nil, 0
}

// Calculate a fingerprint of everything that affects the compiled light
// scene: the options, the emissive primitives and material emission of each
// mesh, and the mesh instance transforms.
func Fingerprint(parsedScene *input.Scene, opts Options) uint64 {
	h := xxhash.New()
	write := func(v interface{}) {
		// Writes to a hash digest never fail.
		_ = binary.Write(h, binary.LittleEndian, v)
	}

	write(opts.BuildLobeTree)
	write(uint8(opts.RootPower))
	write(opts.BoxEpsilon)
	write(opts.LeafAxisScale)
	write(opts.MaxLobeAxisLength)
	write(opts.Flatten)
	write(parsedScene.ExplicitInstances)

	write(uint32(len(parsedScene.Meshes)))
	for _, mesh := range parsedScene.Meshes {
		write(uint32(len(mesh.Primitives)))
		for primIndex, prim := range mesh.Primitives {
			if prim.MaterialIndex < 0 || prim.MaterialIndex >= len(parsedScene.Materials) {
				write(int32(-1))
				continue
			}
			emission := parsedScene.Materials[prim.MaterialIndex].Emission()
			if emission <= 0 {
				continue
			}
			write(uint32(primIndex))
			write(emission)
			write(prim.Vertices)
			write(prim.Normals)
		}
	}

	write(uint32(len(parsedScene.MeshInstances)))
	for _, mi := range parsedScene.MeshInstances {
		write(mi.MeshIndex)
		write([16]float32(mi.Transform))
	}

	return h.Sum64()
}
