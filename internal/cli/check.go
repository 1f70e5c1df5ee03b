package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/config"
	"github.com/yaklabco/mdlive/pkg/editor"
	"github.com/yaklabco/mdlive/pkg/reporter"
	"github.com/yaklabco/mdlive/pkg/runner"
)

// ErrRoundTripDrift is returned when at least one document does not
// survive a round trip through the editor. It only selects the exit code.
var ErrRoundTripDrift = errors.New("documents change on round trip")

type checkFlags struct {
	format         string
	jobs           int
	exclude        []string
	followSymlinks bool
	verbose        bool
	compact        bool
}

func newCheckCommand(global *globalFlags) *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check that Markdown files survive a round trip through the editor",
		Long: `Load every Markdown file into a fresh editing surface and serialize it
back. Files whose Markdown comes back different are reported with the first
changed line. Directories are searched recursively; hidden files and
directories are skipped.

Exits with status 1 when any file drifts.

Examples:
  mdlive check                         Check the current directory
  mdlive check docs README.md          Check specific paths
  mdlive check --exclude 'vendor/**'   Skip a directory
  mdlive check --format json           Machine-readable output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "concurrent workers (0: one per CPU)")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "walk into symlinked directories")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list files that round-trip unchanged")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "compact JSON output")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, global *globalFlags, flags *checkFlags) error {
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	res, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	ctx := logging.WithLogger(commandContext(cmd), res.logger)
	result, err := runner.New(roundTrip(res.cfg)).Run(ctx, runner.Options{
		Paths:          args,
		WorkingDir:     workDir,
		ExcludeGlobs:   flags.exclude,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           flags.jobs,
	})
	if err != nil {
		return err
	}

	rep, err := reporter.New(reporter.Options{
		Writer:     cmd.OutOrStdout(),
		Format:     format,
		Color:      global.color,
		ShowStable: flags.verbose,
		Compact:    flags.compact,
		WorkingDir: workDir,
	})
	if err != nil {
		return err
	}
	drifted, err := rep.Report(ctx, result)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if result.HasErrors() {
		return fmt.Errorf("%d file(s) could not be checked", result.Stats.FilesErrored)
	}
	if drifted > 0 {
		return ErrRoundTripDrift
	}
	return nil
}

// roundTrip loads a document into a fresh editor and serializes it back.
func roundTrip(cfg *config.Config) runner.RoundTripFunc {
	return func(ctx context.Context, markdown string) (string, error) {
		ed, err := editor.New(cfg)
		if err != nil {
			return "", err
		}
		if err := ed.Load(ctx, markdown); err != nil {
			return "", err
		}
		return ed.Markdown()
	}
}
