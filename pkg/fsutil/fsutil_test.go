package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/mdlive/pkg/fsutil"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("reads content and state", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "# Title")
		content, snap, err := fsutil.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if string(content) != "# Title" {
			t.Errorf("content = %q, want %q", content, "# Title")
		}
		if snap.Size != 7 {
			t.Errorf("Size = %d, want 7", snap.Size)
		}
		if snap.Mode != 0o600 {
			t.Errorf("Mode = %v, want 0600", snap.Mode)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.Open(context.Background(), filepath.Join(t.TempDir(), "none.md"))
		if !errors.Is(err, fsutil.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			t.Errorf("error %v does not carry the *os.PathError", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.Open(context.Background(), t.TempDir())
		if !errors.Is(err, fsutil.ErrIsDirectory) {
			t.Errorf("error = %v, want ErrIsDirectory", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, _, err := fsutil.Open(ctx, writeFile(t, "x")); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestChangedOnDisk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("untouched", func(t *testing.T) {
		t.Parallel()

		_, snap, err := fsutil.Open(ctx, writeFile(t, "body"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		changed, err := snap.ChangedOnDisk(ctx)
		if err != nil || changed {
			t.Errorf("ChangedOnDisk() = %v, %v; want false, nil", changed, err)
		}
	})

	t.Run("rewritten", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "body")
		_, snap, err := fsutil.Open(ctx, path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := os.WriteFile(path, []byte("someone else"), 0o600); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		if changed, _ := snap.ChangedOnDisk(ctx); !changed {
			t.Error("ChangedOnDisk() = false after an external write")
		}
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "body")
		_, snap, err := fsutil.Open(ctx, path)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if changed, _ := snap.ChangedOnDisk(ctx); !changed {
			t.Error("ChangedOnDisk() = false after the file was deleted")
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()

		var snap *fsutil.Snapshot
		if _, err := snap.ChangedOnDisk(ctx); !errors.Is(err, fsutil.ErrNilSnapshot) {
			t.Errorf("error = %v, want ErrNilSnapshot", err)
		}
	})
}
