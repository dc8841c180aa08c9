package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/lightbvh/asset/compiler"
	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/achilleasa/lightbvh/asset/scene"
	"github.com/achilleasa/lightbvh/asset/scene/reader"
	"github.com/achilleasa/lightbvh/gpu"
	"github.com/achilleasa/lightbvh/metrics"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli"
)

// Build the light trees for a scene file and print their statistics.
func BuildLights(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	opts := compiler.DefaultOptions()
	opts.BuildLobeTree = !ctx.Bool("no-lobes")
	opts.Flatten = ctx.Bool("flatten")
	if ctx.Bool("power-per-light") {
		opts.RootPower = lightbvh.PowerPerLight
	}

	var (
		reg          *prometheus.Registry
		buildMetrics *metrics.BuildMetrics
	)
	if ctx.Bool("metrics") {
		reg = prometheus.NewRegistry()
		buildMetrics = metrics.New(reg)
	}

	parsedScene, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	rebuilder := compiler.NewRebuilder(opts, nil, buildMetrics)
	defer rebuilder.Close()

	lightScene, _, err := rebuilder.Update(parsedScene)
	if err != nil {
		return err
	}

	out := ctx.App.Writer
	fmt.Fprintf(out, "light scene:\n%s", lightScene.Stats())
	if lightScene.IsEmpty() {
		return nil
	}

	fmt.Fprintf(out, "top-level tree:\n%s", lightScene.Tree.StatsTable())
	for _, meshTree := range lightScene.MeshTrees {
		fmt.Fprintf(out, "mesh %d tree:\n%s", meshTree.MeshIndex, meshTree.Tree.StatsTable())
	}

	if depth := ctx.Int("dump"); depth > 0 {
		fmt.Fprintf(out, "top-level tree nodes (depth < %d):\n%s", depth, lightScene.Tree.DumpTable(depth))
	}

	uploadTable, err := uploadSizes(lightScene)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "gpu buffers:\n%s", uploadTable)

	if reg != nil {
		metricsTable, err := metrics.Table(reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "build metrics:\n%s", metricsTable)
	}

	return nil
}

// Render a table with the GPU buffer sizes for each light tree.
func uploadSizes(lightScene *scene.LightScene) (string, error) {
	uploads, err := gpu.NewSceneUploads(lightScene)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tree", "Buffer", "Binding", "Size"})

	var total uint64
	for _, upload := range uploads {
		for _, b := range upload.Buffers {
			table.Append([]string{
				upload.Label,
				b.Name,
				fmt.Sprint(b.Binding),
				fmt.Sprintf("%d bytes", b.Descriptor.Size),
			})
		}
		total += upload.Size()
	}
	table.SetFooter([]string{"", "", "Total", fmt.Sprintf("%d bytes", total)})
	table.Render()

	return buf.String(), nil
}
