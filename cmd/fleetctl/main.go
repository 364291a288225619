package main

import "fleetflow/internal/cli"

func main() {
	cli.Execute()
}
