package main

import (
	"os"

	"github.com/achilleasa/lightbvh/cmd"
	"github.com/achilleasa/lightbvh/log"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.New("lightbvh").Error(err.Error())
		os.Exit(1)
	}
}
