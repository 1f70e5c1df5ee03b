package configloader

import "github.com/yaklabco/mdlive/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Strings: override overwrites base if non-empty
//   - Optional booleans: override overwrites base if non-nil
//   - Verbose: true in override wins
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.FocusMarks.Enabled != nil {
		result.FocusMarks.Enabled = config.Bool(*override.FocusMarks.Enabled)
	}
	if override.SuppressMarksAfterTransform != nil {
		result.SuppressMarksAfterTransform = config.Bool(*override.SuppressMarksAfterTransform)
	}
	if override.Verbose {
		result.Verbose = true
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
