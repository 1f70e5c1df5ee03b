package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

const templateYAML = `# mdlive configuration
# See: https://github.com/yaklabco/mdlive

# Markdown flavor: commonmark or gfm
flavor: commonmark

# Log level: debug, info, warn or error
log_level: warn

# Focus marks reveal the delimiters of the formatted span under the caret
focus_marks:
  enabled: true

# Skip focus marks for the keystroke right after an inline transform
suppress_marks_after_transform: true
`

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON([]byte(templateYAML))
	}
	return []byte(templateYAML), nil
}

// templateToJSON converts the YAML template to indented JSON.
// Comments are lost in the conversion.
func templateToJSON(yamlData []byte) ([]byte, error) {
	var data map[string]any
	if err := yaml.Unmarshal(yamlData, &data); err != nil {
		return nil, fmt.Errorf("parse template yaml: %w", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal template json: %w", err)
	}
	return append(out, '\n'), nil
}
