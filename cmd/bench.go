package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/achilleasa/lightbvh/types"
	"github.com/urfave/cli"
)

// Build light trees over randomly generated triangle lights and report
// the build statistics.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	numLights := ctx.Int("lights")
	if numLights < 1 {
		return errors.New("the number of lights must be positive")
	}
	runs := ctx.Int("runs")
	if runs < 1 {
		runs = 1
	}

	opts := lightbvh.DefaultOptions()
	opts.BuildLobeTree = !ctx.Bool("no-lobes")

	sources := randomTriangles(rand.New(rand.NewSource(ctx.Int64("seed"))), numLights)
	logger.Noticef("generated %d random triangle lights", numLights)

	var (
		tree  *lightbvh.Tree
		err   error
		total time.Duration
	)
	for run := 0; run < runs; run++ {
		tree, err = lightbvh.Build(sources, opts)
		if err != nil {
			return err
		}
		total += tree.Stats.BuildTime
		logger.Infof("run %d: build took %s", run+1, tree.Stats.BuildTime)
	}

	out := ctx.App.Writer
	fmt.Fprintf(out, "light tree:\n%s", tree.StatsTable())
	fmt.Fprintf(out, "average build time over %d run(s): %s\n", runs, total/time.Duration(runs))
	return nil
}

// Generate small triangles scattered inside a 100 unit cube.
func randomTriangles(rng *rand.Rand, count int) []lightbvh.Source {
	randVec := func(scale float32) types.Vec3 {
		return types.XYZ(
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
			(rng.Float32()*2-1)*scale,
		)
	}

	sources := make([]lightbvh.Source, 0, count)
	for len(sources) < count {
		center := randVec(50)
		v0 := center.Add(randVec(1))
		v1 := center.Add(randVec(1))
		v2 := center.Add(randVec(1))
		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		if normal.IsZero() {
			continue
		}
		sources = append(sources, lightbvh.NewTriangleLight(v0, v1, v2, normal, 0.1+rng.Float32()*10))
	}
	return sources
}
