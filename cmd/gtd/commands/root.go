// Package commands provides the CLI commands for the go-trace-deps tool.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/l3aro/go-trace-deps/internal/config"
	"github.com/l3aro/go-trace-deps/internal/log"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gtd",
	Short: "go-trace-deps - Dependence graphs from recorded execution traces",
	Long: `go-trace-deps builds statement and data dependence graphs from a control
flow graph whose nodes carry recorded execution traces.

Commands:
  analyze     Build the dependence graphs for a trace file
  functions   Show the dependence subgraph of one function
  init        Initialize gtd configuration interactively

Use "gtd [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

// loggerFor builds the logger the commands share, honoring the configured
// verbosity and output encoding.
func loggerFor(cfg *config.Config) log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	return log.New(log.LoggerConfig{Level: level, JSONOutput: cfg.LogJSON})
}
