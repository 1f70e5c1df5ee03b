// Package config defines core configuration types for mdlive.
// These types are pure data structures with no dependency on the loader.
package config

// Flavor specifies the Markdown flavor used by the bridge and the detector.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// Log levels accepted by LogLevel.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// FocusMarksConfig controls the focus-mark manager.
type FocusMarksConfig struct {
	// Enabled turns focus marks on. Nil means enabled.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`
}

// Config is the root configuration structure for mdlive.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`

	// FocusMarks configures the focus-mark manager.
	FocusMarks FocusMarksConfig `mapstructure:"focus_marks" yaml:"focus_marks"`

	// SuppressMarksAfterTransform skips focus-mark injection for the
	// caret update that immediately follows an inline transform. Nil means
	// enabled.
	SuppressMarksAfterTransform *bool `mapstructure:"suppress_marks_after_transform" yaml:"suppress_marks_after_transform,omitempty"`

	// CLI-level options (not persisted to config files).

	// Verbose enables debug logging regardless of LogLevel.
	Verbose bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Flavor:                      FlavorCommonMark,
		LogLevel:                    LogLevelWarn,
		FocusMarks:                  FocusMarksConfig{Enabled: boolPtr(true)},
		SuppressMarksAfterTransform: boolPtr(true),
	}
}

// FocusMarksEnabled reports whether focus marks should be shown.
func (c *Config) FocusMarksEnabled() bool {
	if c == nil || c.FocusMarks.Enabled == nil {
		return true
	}
	return *c.FocusMarks.Enabled
}

// SuppressAfterTransform reports whether the caret update following an
// inline transform skips focus-mark injection.
func (c *Config) SuppressAfterTransform() bool {
	if c == nil || c.SuppressMarksAfterTransform == nil {
		return true
	}
	return *c.SuppressMarksAfterTransform
}

// EffectiveLogLevel returns the level the logger should run at.
func (c *Config) EffectiveLogLevel() string {
	switch {
	case c == nil:
		return LogLevelWarn
	case c.Verbose:
		return LogLevelDebug
	case c.LogLevel == "":
		return LogLevelWarn
	default:
		return c.LogLevel
	}
}

// Bool returns a pointer to b, for populating optional fields.
func Bool(b bool) *bool {
	return boolPtr(b)
}

func boolPtr(b bool) *bool {
	return &b
}
