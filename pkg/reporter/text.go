package reporter

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/yaklabco/mdlive/internal/ui/pretty"
	"github.com/yaklabco/mdlive/pkg/runner"
)

type textReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

func newTextReporter(opts Options) *textReporter {
	return &textReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

func (r *textReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("No files to check."))
		return 0, nil
	}

	for _, file := range result.Files {
		path := displayPath(file.Path, r.opts.WorkingDir)
		switch {
		case file.Error != nil:
			fmt.Fprintf(r.bw, "%s: %s\n", r.styles.Bold.Render(path),
				r.styles.Failure.Render(fmt.Sprintf("error: %v", file.Error)))
		case file.Drift != nil:
			fmt.Fprintf(r.bw, "%s:%d: %s\n", r.styles.Bold.Render(path), file.Drift.Line,
				r.styles.Warning.Render("changes on round trip"))
			fmt.Fprint(r.bw, r.styles.FormatFields([]pretty.Field{
				{Label: "want", Value: strconv.Quote(file.Drift.Want)},
				{Label: "got", Value: strconv.Quote(file.Drift.Got)},
			}))
		case r.opts.ShowStable:
			fmt.Fprintf(r.bw, "%s: %s\n", r.styles.Bold.Render(path), r.styles.Success.Render("stable"))
		}
	}

	stats := result.Stats
	summary := fmt.Sprintf("%d checked, %d stable, %d drifted, %d errored",
		stats.FilesDiscovered, stats.FilesStable, stats.FilesDrifted, stats.FilesErrored)
	style := r.styles.Success
	if result.HasDrift() || result.HasErrors() {
		style = r.styles.Failure
	}
	fmt.Fprintln(r.bw)
	fmt.Fprintln(r.bw, style.Render(summary))

	return stats.FilesDrifted, nil
}
