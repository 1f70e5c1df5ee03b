package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission mode for newly created files.
const DefaultFileMode os.FileMode = 0o644

// BackupSuffix is appended to a document path to name its backup.
const BackupSuffix = ".orig"

// SaveOptions controls Save.
type SaveOptions struct {
	// Backup keeps the loaded content next to the document the first
	// time it is overwritten. An existing backup is never replaced.
	Backup bool
}

// Save writes content over the document described by snap. It returns
// false without touching the file when the content is unchanged. On
// success snap is updated to describe the new file.
func Save(ctx context.Context, snap *Snapshot, content []byte, opts SaveOptions) (bool, error) {
	if snap == nil {
		return false, ErrNilSnapshot
	}

	changed, err := snap.ChangedOnDisk(ctx)
	if err != nil {
		return false, err
	}
	if changed {
		return false, fmt.Errorf("%w: %s", ErrChangedOnDisk, snap.Path)
	}

	if sha256.Sum256(content) == snap.Hash {
		return false, nil
	}

	if opts.Backup {
		if err := backup(snap.Path); err != nil {
			return false, err
		}
	}

	if err := WriteAtomic(ctx, snap.Path, content, snap.Mode); err != nil {
		return false, err
	}

	stat, err := os.Stat(snap.Path)
	if err != nil {
		return true, fmt.Errorf("stat %s: %w", snap.Path, err)
	}
	*snap = *snapshotOf(snap.Path, stat, content)
	return true, nil
}

func backup(path string) error {
	target := path + BackupSuffix
	if _, err := os.Stat(target); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat backup: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read for backup: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat for backup: %w", err)
	}
	if err := os.WriteFile(target, content, stat.Mode().Perm()); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// WriteAtomic writes content to a temp file in the target's directory and
// renames it over path, so readers see either the old or the new file. A
// zero mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write atomic: %w", err)
	}
	if mode == 0 {
		mode = DefaultFileMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
