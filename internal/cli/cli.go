// Package cli implements the depspace command-line interface.
//
// This package provides commands for serving the exploration engine over
// HTTP, exploring an analysis interactively in the terminal, and exporting
// dependency graphs as DOT or SVG. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP/WebSocket exploration server
//   - explore: Explore an analysis file interactively in the terminal
//   - export: Render an analysis as a DOT or SVG dependency diagram
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Commands
// share the CLI's logger and use it for structured progress tracking.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/codegnosis/depspace/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "depspace"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "depspace",
		Short:        "Depspace explores dependency graphs in space",
		Long:         `Depspace turns analyzer output into an explorable 3D dependency scene: an organic physics layout, a formation grid, filter missions, and a camera that keeps the graph in frame.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.completionCommand())

	return root
}
