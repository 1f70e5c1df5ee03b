package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/editor"
	"github.com/yaklabco/mdlive/pkg/fsutil"
)

type renderFlags struct {
	markdown bool
}

func newRenderCommand(global *globalFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render Markdown into the editing surface",
		Long: `Parse Markdown into the engine's document tree and print it as HTML.
Element variants the user typed (delimiter and list marker choices) are kept
as data attributes so the tree serializes back to the same Markdown.

Reads standard input when no file, or "-", is given.

Examples:
  mdlive render README.md              Print the surface HTML
  mdlive render --markdown README.md   Print the Markdown serialized back from the tree
  echo '**hi**' | mdlive render        Render from standard input`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, global, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "print the serialized Markdown instead of HTML")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, global *globalFlags, flags *renderFlags) error {
	res, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}

	source := ""
	if len(args) == 1 {
		source = args[0]
	}
	input, _, err := readSource(cmd, source)
	if err != nil {
		return err
	}

	ed, err := editor.New(res.cfg, editor.WithLogger(res.logger))
	if err != nil {
		return fmt.Errorf("create editor: %w", err)
	}
	ctx := commandContext(cmd)
	if err := ed.Load(ctx, input); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.markdown {
		md, err := ed.Markdown()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, md)
		return err
	}

	res.logger.Debug("rendered", logging.FieldInput, len(input), logging.FieldPath, source)
	_, err = fmt.Fprintln(out, ed.HTML())
	return err
}

// readSource reads Markdown from path, or from the command's input when
// path is empty or "-". The snapshot is nil for standard input.
func readSource(cmd *cobra.Command, path string) (string, *fsutil.Snapshot, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil, nil
	}

	data, snap, err := fsutil.Open(commandContext(cmd), path)
	if err != nil {
		return "", nil, err
	}
	return string(data), snap, nil
}
