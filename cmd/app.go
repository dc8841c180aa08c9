package cmd

import (
	"github.com/urfave/cli"
)

// Create the command line application.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "lightbvh"
	app.Usage = "build light bounding volume hierarchies for emissive scenes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build the light trees for a scene",
			Description: `
Parse the emissive geometry of a wavefront obj scene and build its light
BVH. Scenes that define mesh instances get a light tree per emissive mesh
and a top-level tree over the instances unless --flatten is specified.

The command prints the tree statistics and the size of the GPU buffers
for each tree.`,
			ArgsUsage: "scene.obj",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "no-lobes",
					Usage: "skip building the emission lobe tree",
				},
				cli.BoolFlag{
					Name:  "power-per-light",
					Usage: "store the average light power at the root node",
				},
				cli.BoolFlag{
					Name:  "flatten",
					Usage: "build a single tree over world space triangles",
				},
				cli.IntFlag{
					Name:  "dump",
					Value: 0,
					Usage: "dump the first N levels of the top-level tree",
				},
				cli.BoolFlag{
					Name:  "metrics",
					Usage: "print the collected build metrics",
				},
			},
			Action: BuildLights,
		},
		{
			Name:  "bench",
			Usage: "benchmark the builder with random triangle lights",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "lights",
					Value: 100000,
					Usage: "number of random triangle lights",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "random generator seed",
				},
				cli.IntFlag{
					Name:  "runs",
					Value: 1,
					Usage: "number of builds",
				},
				cli.BoolFlag{
					Name:  "no-lobes",
					Usage: "skip building the emission lobe tree",
				},
			},
			Action: Bench,
		},
	}

	return app
}
