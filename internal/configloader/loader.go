// Package configloader resolves the editor configuration from layered
// YAML files, MDLIVE_* environment variables and command-line flags.
package configloader

import (
	"context"
	"fmt"
	"slices"

	"github.com/yaklabco/mdlive/pkg/config"
	"github.com/yaklabco/mdlive/pkg/fsutil"
)

const configFilePermissions = 0o644

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir anchors the project config search. Empty means the
	// process working directory.
	WorkingDir string

	// ExplicitPath is the --config file. It overrides every discovered file.
	ExplicitPath string

	// Skip excludes discovered layers, mainly so tests stay hermetic.
	// The explicit layer cannot be skipped.
	Skip []Layer

	IgnoreEnv bool

	// CLIConfig holds values set by command-line flags; they win over
	// every other source.
	CLIConfig *config.Config
}

func (o LoadOptions) skips(layer Layer) bool {
	if layer == LayerExplicit {
		return false
	}
	return slices.Contains(o.Skip, layer)
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	Config *config.Config

	// Sources lists the files that were merged, lowest precedence first.
	Sources []Source

	// LoadedFrom holds the paths of Sources.
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load resolves the configuration an editor session runs with. Sources
// are merged over the defaults in this order, later ones winning: system,
// user and project files, the explicit file, MDLIVE_* environment
// variables, then CLIConfig. Each file is validated before it is merged.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	sources, err := Discover(ctx, opts.WorkingDir, opts.ExplicitPath)
	if err != nil {
		return nil, fmt.Errorf("discover config files: %w", err)
	}

	result := &LoadResult{}
	cfg := config.NewConfig()

	for _, src := range sources {
		if opts.skips(src.Layer) {
			continue
		}

		fileCfg, err := loadConfigFile(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", src.Layer, err)
		}
		if validation := ValidateWithFile(fileCfg, src.Path); !validation.Valid() {
			return nil, &validation.Errors[0]
		}

		cfg = merge(cfg, fileCfg)
		result.Sources = append(result.Sources, src)
		result.LoadedFrom = append(result.LoadedFrom, src.Path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

func loadConfigFile(ctx context.Context, path string) (*config.Config, error) {
	content, _, err := fsutil.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// WriteTemplate writes a commented starter config to path. It refuses to
// overwrite an existing file unless force is set.
func WriteTemplate(ctx context.Context, path string, force bool) error {
	if !force && isFile(path) {
		return fmt.Errorf("%s already exists", path)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := fsutil.WriteAtomic(ctx, path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
