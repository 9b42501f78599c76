package main

import "energy-agent/internal/cli"

func main() {
	cli.Execute()
}
