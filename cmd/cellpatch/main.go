// Package main provides the cellpatch CLI.
package main

import "github.com/mesh-intelligence/cellpatch/internal/cli"

func main() {
	cli.Execute()
}
