package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mdlive"

// Layer identifies where a configuration file sits in the precedence
// order. Later layers override earlier ones.
type Layer int

const (
	LayerSystem Layer = iota
	LayerUser
	LayerProject
	LayerExplicit
)

func (l Layer) String() string {
	switch l {
	case LayerSystem:
		return "system"
	case LayerUser:
		return "user"
	case LayerProject:
		return "project"
	case LayerExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// Source is a configuration file found for one layer.
type Source struct {
	Layer Layer
	Path  string
}

// Project files a document tree can carry, most specific first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectNames = []string{".mdlive.yml", ".mdlive.yaml", "mdlive.yml", "mdlive.yaml"}

// Directories that end the upward project search.
//
//nolint:gochecknoglobals // Read-only lookup table.
var repoMarkers = []string{".git", ".hg", ".svn"}

// Discover returns the configuration files that apply to documents under
// workDir, lowest precedence first. Layers without a file are omitted.
// An explicit path is returned as is; the loader reports it if missing.
func Discover(ctx context.Context, workDir, explicit string) ([]Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var sources []Source
	add := func(layer Layer, path string) {
		if path != "" {
			sources = append(sources, Source{Layer: layer, Path: path})
		}
	}

	add(LayerSystem, configIn(systemDir()))
	add(LayerUser, configIn(userDir()))

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}
	add(LayerProject, project)
	add(LayerExplicit, explicit)

	return sources, nil
}

func systemDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	if data := os.Getenv("ProgramData"); data != "" {
		return filepath.Join(data, appName)
	}
	return filepath.Join(`C:\ProgramData`, appName)
}

func userDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

func configIn(dir string) string {
	if dir == "" {
		return ""
	}
	return firstFile(dir, "config.yaml", "config.yml")
}

func firstFile(dir string, names ...string) string {
	for _, name := range names {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig walks up from startDir looking for a project config.
// The walk ends at a repository root, the home directory or the
// filesystem root; an empty result means none was found.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}

		if path := firstFile(dir, projectNames...); path != "" {
			return path, nil
		}
		if isRepoRoot(dir) || dir == home {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isRepoRoot(dir string) bool {
	for _, marker := range repoMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
