package cli

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/mdlive/internal/ui/pretty"
)

const usageTemplate = `{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Available Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{with (or .Long .Short)}}{{ trimLines . }}

{{end}}` + usageTemplate

// helpFormatter renders help and usage with the CLI's styles. Color is
// decided per invocation from the --color flag.
type helpFormatter struct {
	color *string
}

func applyHelp(root *cobra.Command, color *string) {
	h := &helpFormatter{color: color}

	root.SetUsageFunc(func(cmd *cobra.Command) error {
		return h.render(cmd, "usage", usageTemplate)
	})
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		if err := h.render(cmd, "help", helpTemplate); err != nil {
			cmd.PrintErrln(err)
		}
	})
}

func (h *helpFormatter) render(cmd *cobra.Command, name, text string) error {
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(*h.color, out))

	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"heading":    styles.Heading.Render,
		"command":    styles.Key.Render,
		"subcommand": styles.Success.Render,
		"flags":      func(fs *pflag.FlagSet) string { return styleFlags(styles, fs) },
		"rpad":       rpad,
		"trimLines":  trimLines,
	}).Parse(text)
	if err != nil {
		return fmt.Errorf("parse %s template: %w", name, err)
	}
	return tmpl.Execute(out, cmd)
}

// styleFlags colors the flag names in pflag's aligned usage block and dims
// the value type that follows them.
func styleFlags(styles *pretty.Styles, fs *pflag.FlagSet) string {
	usages := strings.TrimSuffix(fs.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]

		// pflag pads the flag column with at least two spaces.
		idx := strings.Index(trimmed, "  ")
		if idx < 0 {
			continue
		}
		names, rest := trimmed[:idx], trimmed[idx:]

		tokens := strings.Fields(names)
		for j, tok := range tokens {
			if strings.HasPrefix(tok, "-") {
				name, comma := strings.CutSuffix(tok, ",")
				tokens[j] = styles.Label.Render(name)
				if comma {
					tokens[j] += ","
				}
				continue
			}
			tokens[j] = styles.Dim.Render(tok)
		}
		lines[i] = indent + strings.Join(tokens, " ") + rest
	}
	return strings.Join(lines, "\n")
}

func rpad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
