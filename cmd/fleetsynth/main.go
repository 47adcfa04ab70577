package main

import "github.com/armadafleet/fleetsynth/internal/cli"

func main() {
	cli.Execute()
}
