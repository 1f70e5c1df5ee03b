// Package cli provides the Cobra command structure for mdlive.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	debug        bool
	configPath   string
	color        string
	flavor       string
	noFocusMarks bool
}

// NewRootCommand creates the root mdlive command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdlive",
		Short: "A headless live Markdown editing engine",
		Long: `mdlive is a live Markdown editing engine: Markdown syntax typed into a
rich-text surface is converted into formatted structure as you type, and the
raw delimiters of the span under the caret are revealed as editable focus
marks.

The CLI drives the engine headlessly. It renders Markdown into the engine's
document tree, replays keystroke scripts against it, and checks that
Markdown files survive a round trip through the editor.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&flags.flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")
	rootCmd.PersistentFlags().BoolVar(&flags.noFocusMarks, "no-focus-marks", false, "never reveal delimiters as focus marks")

	// Add subcommands.
	rootCmd.AddCommand(newRenderCommand(flags))
	rootCmd.AddCommand(newTypeCommand(flags))
	rootCmd.AddCommand(newCheckCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	applyHelp(rootCmd, &flags.color)

	return rootCmd
}
