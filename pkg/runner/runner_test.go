package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yaklabco/mdlive/pkg/runner"
)

// identity returns documents unchanged.
func identity(_ context.Context, markdown string) (string, error) {
	return markdown, nil
}

// starsToUnderscores rewrites every '*' the way a lossy serializer would.
func starsToUnderscores(_ context.Context, markdown string) (string, error) {
	return strings.ReplaceAll(markdown, "*", "_"), nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"notes.txt": "x"})

	result, err := runner.New(identity).Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Files) != 0 || result.Stats.FilesDiscovered != 0 {
		t.Errorf("expected no files, got %+v", result.Stats)
	}
	if result.HasDrift() || result.HasErrors() {
		t.Error("empty run reports problems")
	}
}

func TestRunner_Run_Stable(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"a.md":      "# A\n",
		"b.md":      "*b*\r\n",
		"sub/c.md":  "c",
		"sub/d.txt": "not markdown",
	})

	result, err := runner.New(identity).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.FilesStable != 3 {
		t.Errorf("FilesStable = %d, want 3", result.Stats.FilesStable)
	}
	for i, want := range []string{"a.md", "b.md", "sub/c.md"} {
		if got := result.Files[i].Path; got != filepath.Join(dir, want) {
			t.Errorf("Files[%d].Path = %q, want %q", i, got, want)
		}
	}
}

func TestRunner_Run_Drift(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"plain.md": "# Title\n\nbody\n",
		"stars.md": "# Title\n\n*em*\n",
	})

	result, err := runner.New(starsToUnderscores).Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasDrift() || result.Stats.FilesDrifted != 1 || result.Stats.FilesStable != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}

	drift := result.Files[1].Drift
	if drift == nil {
		t.Fatal("stars.md reported stable")
	}
	if drift.Line != 3 || drift.Want != "*em*" || drift.Got != "_em_" {
		t.Errorf("drift = %+v, want line 3 *em* -> _em_", drift)
	}
}

func TestRunner_Run_RoundTripError(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.md": "a", "b.md": "b"})
	failing := func(_ context.Context, markdown string) (string, error) {
		if markdown == "b" {
			return "", errors.New("boom")
		}
		return markdown, nil
	}

	result, err := runner.New(failing).Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasErrors() || result.Stats.FilesErrored != 1 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if result.Files[1].Error == nil {
		t.Error("b.md has no error")
	}
}

func TestRunner_Run_UsesEveryFileOnce(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	for _, name := range []string{"1.md", "2.md", "3.md", "4.md", "5.md", "6.md", "7.md"} {
		files[name] = name
	}
	dir := writeTree(t, files)

	var calls atomic.Int32
	counting := func(_ context.Context, markdown string) (string, error) {
		calls.Add(1)
		return markdown, nil
	}

	result, err := runner.New(counting).Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 3})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls.Load() != 7 || len(result.Files) != 7 {
		t.Errorf("calls = %d, files = %d, want 7 each", calls.Load(), len(result.Files))
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"a.md": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.New(identity).Run(ctx, runner.Options{WorkingDir: dir}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
