package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/mdlive/internal/configloader"
	"github.com/yaklabco/mdlive/pkg/editor"
)

// Exit codes for mdlive.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a failed run not covered by a specific code,
	// including documents that drift on a round trip.
	ExitFailure = 1

	// ExitInvalidUsage indicates invalid command-line usage or input.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	var pathErr *fs.PathError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &validation):
		return ExitConfigError
	case errors.Is(err, ErrBadScript),
		errors.Is(err, editor.ErrBlockIndex),
		errors.Is(err, editor.ErrNoCaret),
		errors.Is(err, editor.ErrUnknownFlavor):
		return ExitInvalidUsage
	case errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitFailure
	}
}
