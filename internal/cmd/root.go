// Package cmd wires the core termcap library (recorder, frame sampler, SVG
// renderer) to a cobra CLI. Argument parsing, the config store, help text,
// and version reporting all live here; the core packages only ever see
// fully-resolved parameters.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rexwzh/termcap/internal/config"
)

// NewRootCmd creates the root cobra command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termcap",
		Short: "Record terminal sessions and render them as looping SVG animations",
		Long: `termcap records an interactive terminal session to an asciicast v2
cast file, then renders a cast file into a self-contained, looping SVG
animation.`,
		SilenceUsage: true,
	}

	mgr := config.NewManager()

	rootCmd.AddCommand(
		newRecordCmd(mgr),
		newRenderCmd(mgr),
		newConfigCmd(mgr),
		newVersionCmd(),
	)

	return rootCmd
}
