// Package reporter writes round-trip check results.
package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdlive/pkg/runner"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Reporter formats and writes check results.
type Reporter interface {
	// Report writes the result and returns the number of drifted files.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// Format represents an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q; valid formats: text, json", s)
	}
}

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output. Defaults to os.Stdout.
	Writer io.Writer

	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// ShowStable lists documents that round-trip unchanged too.
	ShowStable bool

	// Compact writes JSON without indentation.
	Compact bool

	// WorkingDir makes reported paths relative when set.
	WorkingDir string
}

// New creates a Reporter for opts.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	switch opts.Format {
	case FormatText, "":
		return newTextReporter(opts), nil
	case FormatJSON:
		return newJSONReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// displayPath makes path relative to workDir when that stays inside it.
func displayPath(path, workDir string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
