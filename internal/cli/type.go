package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/internal/ui/pretty"
	"github.com/yaklabco/mdlive/pkg/dom"
	"github.com/yaklabco/mdlive/pkg/editor"
	"github.com/yaklabco/mdlive/pkg/fsutil"
)

type typeFlags struct {
	load   string
	block  int
	offset int
	trace  bool
	save   bool
	backup bool
}

func newTypeCommand(global *globalFlags) *cobra.Command {
	flags := &typeFlags{}

	cmd := &cobra.Command{
		Use:   "type <keys>...",
		Short: "Replay keystrokes against the editing surface",
		Long: `Type a keystroke script into the editing surface, one input event per
character, and print the resulting HTML, caret and Markdown. Arguments are
joined with spaces.

Named keys:
  {enter}      start a new paragraph after the current block
  {backspace}  delete the character before the caret
  {blur}       remove the caret and every focus mark
  {end}        put the caret at the end of the document
  {{           a literal "{"

By default the caret starts at the end of the document.

Examples:
  mdlive type '**bold**'
  mdlive type --trace '# **Big** Title'
  mdlive type --load notes.md --block 0 --offset 0 '## '
  mdlive type --load notes.md --save --backup '{end}{enter}Done.'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runType(cmd, args, global, flags)
		},
	}

	cmd.Flags().StringVar(&flags.load, "load", "", "Markdown file to load before typing")
	cmd.Flags().IntVar(&flags.block, "block", -1, "editable block to start in (default: last)")
	cmd.Flags().IntVar(&flags.offset, "offset", -1, "content offset to start at (default: end of block)")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "print the surface after every keystroke")
	cmd.Flags().BoolVar(&flags.save, "save", false, "write the edited Markdown back to the --load file")
	cmd.Flags().BoolVar(&flags.backup, "backup", false, "keep the original as <file>.orig when saving")

	return cmd
}

// commitLog counts the committable states the engine reports.
type commitLog struct {
	logger *log.Logger
	count  int
}

func (c *commitLog) Commit(_ context.Context, reason string) {
	c.count++
	c.logger.Debug("commit", logging.FieldReason, reason)
}

func runType(cmd *cobra.Command, args []string, global *globalFlags, flags *typeFlags) error {
	res, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}

	keys, err := parseScript(strings.Join(args, " "))
	if err != nil {
		return err
	}

	var (
		initial string
		snap    *fsutil.Snapshot
	)
	if flags.load != "" {
		if initial, snap, err = readSource(cmd, flags.load); err != nil {
			return err
		}
	}

	commits := &commitLog{logger: res.logger}
	ed, err := editor.New(res.cfg, editor.WithLogger(res.logger), editor.WithCommitter(commits))
	if err != nil {
		return fmt.Errorf("create editor: %w", err)
	}

	ctx := commandContext(cmd)
	if err := ed.Load(ctx, initial); err != nil {
		return err
	}
	if err := placeStart(ctx, ed, flags.block, flags.offset); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(global.color, out))
	width := pretty.TerminalWidth(out)

	var sb strings.Builder
	for i, key := range keys {
		if err := press(ctx, ed, key); err != nil {
			return fmt.Errorf("keystroke %d %q: %w", i+1, key.label(), err)
		}
		if flags.trace {
			sb.WriteString(styles.FormatStep(step(ed, i+1, key), width))
		}
	}
	if flags.trace {
		sb.WriteString("\n")
	}

	md, err := ed.Markdown()
	if err != nil {
		return err
	}

	var fields []pretty.Field
	if flags.save {
		saved, err := save(ctx, snap, md, flags.backup)
		if err != nil {
			return err
		}
		res.logger.Debug("save", logging.FieldPath, flags.load, logging.FieldOutput, saved)
		fields = append(fields, pretty.Field{Label: "saved", Value: saved})
	}

	caret := "none"
	if block, offset, ok := ed.CaretPosition(); ok {
		caret = fmt.Sprintf("block %d, offset %d", block, offset)
	}

	sb.WriteString(styles.FormatSection("html", styles.HighlightMarks(ed.HTML())))
	sb.WriteString(styles.FormatSection("markdown", md))
	fields = append([]pretty.Field{
		{Label: "caret", Value: caret},
		{Label: "keystrokes", Value: strconv.Itoa(len(keys))},
		{Label: "commits", Value: strconv.Itoa(commits.count)},
	}, fields...)
	sb.WriteString(styles.FormatSection("state", styles.FormatFields(fields)))

	_, err = fmt.Fprint(out, sb.String())
	return err
}

// save writes md back to the loaded file with a trailing newline and
// reports what happened.
func save(ctx context.Context, snap *fsutil.Snapshot, md string, backup bool) (string, error) {
	if snap == nil {
		return "", errors.New("--save needs a --load file, not standard input")
	}
	written, err := fsutil.Save(ctx, snap, []byte(md+"\n"), fsutil.SaveOptions{Backup: backup})
	if err != nil {
		return "", fmt.Errorf("save %s: %w", snap.Path, err)
	}
	if !written {
		return "unchanged", nil
	}
	return snap.Path, nil
}

// placeStart puts the caret where typing begins. Negative values select
// the last block and the end of the block.
func placeStart(ctx context.Context, ed *editor.Editor, block, offset int) error {
	blocks := ed.Blocks()
	if block < 0 {
		block = len(blocks) - 1
	}
	if offset < 0 && block < len(blocks) {
		offset = len(dom.ContentText(blocks[block]))
	}
	return ed.Place(ctx, block, offset)
}

func press(ctx context.Context, ed *editor.Editor, key keystroke) error {
	switch key.action {
	case keyEnter:
		return ed.NewParagraph(ctx)
	case keyBackspace:
		return ed.DeleteBackward(ctx)
	case keyBlur:
		ed.Blur(ctx)
		return nil
	case keyEnd:
		return placeStart(ctx, ed, -1, -1)
	case keyText:
		return ed.Insert(ctx, key.text)
	default:
		return errors.New("unhandled key")
	}
}

func step(ed *editor.Editor, index int, key keystroke) pretty.Step {
	block, offset, ok := ed.CaretPosition()
	return pretty.Step{
		Index:    index,
		Key:      key.label(),
		HTML:     ed.HTML(),
		Block:    block,
		Offset:   offset,
		HasCaret: ok,
	}
}
