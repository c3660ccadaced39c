package main

import "AstroSignal/internal/cli"

func main() {
	cli.Execute()
}
