package main

import "github.com/relloyd/snappipe/cmd"

func main() {
	cmd.Execute()
}
