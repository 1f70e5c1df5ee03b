package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/mdlive/pkg/runner"
)

// jsonVersion is bumped on incompatible output changes.
const jsonVersion = "1"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string      `json:"version"`
	Files   []JSONFile  `json:"files"`
	Summary JSONSummary `json:"summary"`
}

// JSONFile is one document's result.
type JSONFile struct {
	Path   string     `json:"path"`
	Stable bool       `json:"stable"`
	Drift  *JSONDrift `json:"drift,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// JSONDrift locates the first changed line.
type JSONDrift struct {
	Line int    `json:"line"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked int `json:"filesChecked"`
	FilesStable  int `json:"filesStable"`
	FilesDrifted int `json:"filesDrifted"`
	FilesErrored int `json:"filesErrored"`
}

type jsonReporter struct {
	opts Options
	bw   *bufio.Writer
}

func newJSONReporter(opts Options) *jsonReporter {
	return &jsonReporter{opts: opts, bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

func (r *jsonReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}
	return output.Summary.FilesDrifted, nil
}

func (r *jsonReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{Version: jsonVersion, Files: []JSONFile{}}
	if result == nil {
		return output
	}

	for _, file := range result.Files {
		entry := JSONFile{Path: displayPath(file.Path, r.opts.WorkingDir)}
		switch {
		case file.Error != nil:
			entry.Error = file.Error.Error()
		case file.Drift != nil:
			entry.Drift = &JSONDrift{Line: file.Drift.Line, Want: file.Drift.Want, Got: file.Drift.Got}
		default:
			entry.Stable = true
		}
		output.Files = append(output.Files, entry)
	}

	output.Summary = JSONSummary{
		FilesChecked: result.Stats.FilesDiscovered,
		FilesStable:  result.Stats.FilesStable,
		FilesDrifted: result.Stats.FilesDrifted,
		FilesErrored: result.Stats.FilesErrored,
	}
	return output
}
