package runner

import "strings"

// Drift locates the first line where a document and its round trip differ.
type Drift struct {
	// Line is 1-based.
	Line int

	// Want is the original line; Got is what the editor produced. Either
	// is empty when that side ran out of lines.
	Want string
	Got  string
}

// FileOutcome is the result of checking one document.
type FileOutcome struct {
	Path string

	// Drift is nil when the document round-trips unchanged.
	Drift *Drift

	// Error is set when the document could not be checked.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesStable     int
	FilesDrifted    int
	FilesErrored    int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome
	Stats Stats
}

// HasDrift reports whether any document changed on its round trip.
func (r *Result) HasDrift() bool {
	return r != nil && r.Stats.FilesDrifted > 0
}

// HasErrors reports whether any document could not be checked.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
	case outcome.Drift != nil:
		r.Stats.FilesDrifted++
	default:
		r.Stats.FilesStable++
	}
}

// compare reports the first differing line of want and got. Line endings
// are normalized and trailing newlines ignored, since the serializer
// never emits a final newline.
func compare(want, got string) *Drift {
	want, got = normalize(want), normalize(got)
	if want == got {
		return nil
	}

	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	for i := range max(len(wantLines), len(gotLines)) {
		var w, g string
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if w != g || i >= len(wantLines) || i >= len(gotLines) {
			return &Drift{Line: i + 1, Want: w, Got: g}
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
