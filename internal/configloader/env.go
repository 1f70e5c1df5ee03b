package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yaklabco/mdlive/pkg/config"
)

// envVarPrefix is the prefix for all mdlive environment variables.
const envVarPrefix = "MDLIVE_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
)

type envMapping struct {
	field string
	typ   envFieldType
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                         {field: "flavor", typ: envTypeString},
	"LOG_LEVEL":                      {field: "log_level", typ: envTypeString},
	"FOCUS_MARKS":                    {field: "focus_marks.enabled", typ: envTypeBool},
	"SUPPRESS_MARKS_AFTER_TRANSFORM": {field: "suppress_marks_after_transform", typ: envTypeBool},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDLIVE_ (e.g., MDLIVE_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "focus_marks.enabled":
		cfg.FocusMarks.Enabled = config.Bool(value)
	case "suppress_marks_after_transform":
		cfg.SuppressMarksAfterTransform = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	return map[string]string{
		"MDLIVE_FLAVOR":                         "Markdown flavor: commonmark or gfm",
		"MDLIVE_LOG_LEVEL":                      "Log level: debug, info, warn or error",
		"MDLIVE_FOCUS_MARKS":                    "Show focus marks: true or false",
		"MDLIVE_SUPPRESS_MARKS_AFTER_TRANSFORM": "Skip focus marks right after an inline transform: true or false",
	}
}
