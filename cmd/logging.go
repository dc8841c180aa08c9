package cmd

import (
	"github.com/achilleasa/lightbvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("lightbvh")

func setupLogging(ctx *cli.Context) {
	if level := ctx.GlobalString("log-level"); level != "" {
		log.SetLevel(log.ParseLevel(level))
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
