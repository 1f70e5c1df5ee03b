// Package runner checks many Markdown documents concurrently.
package runner

// Options controls discovery and concurrency for a run.
type Options struct {
	// Paths are files or directories to check. Empty means the working
	// directory.
	Paths []string

	// WorkingDir resolves relative Paths and is the base for ExcludeGlobs.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions are the lowercase file extensions, with leading dot,
	// treated as Markdown. Empty means DefaultExtensions.
	Extensions []string

	// ExcludeGlobs skip matching files and directories, e.g. "vendor/**".
	ExcludeGlobs []string

	// FollowSymlinks walks into symlinked directories.
	FollowSymlinks bool

	// Jobs is the number of concurrent workers; 0 or less uses one per CPU.
	Jobs int
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) paths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
