// Package main implements the go-trace-deps CLI (gtd).
// It provides commands for building statement and data dependence graphs
// from recorded execution traces and inspecting them per function.
package main

import (
	"os"

	"github.com/l3aro/go-trace-deps/cmd/gtd/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`gtd version {{.Version}}
`)

	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
