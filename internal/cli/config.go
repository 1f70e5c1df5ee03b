package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/pkg/config"
)

type configFlags struct {
	template bool
	format   string
}

func newConfigCommand(global *globalFlags) *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration mdlive would run with after merging the system,
user, project and explicit config files, MDLIVE_* environment variables and
command-line flags.

Examples:
  mdlive config                          Show the resolved configuration
  mdlive config --flavor gfm             Show the effect of a flag
  mdlive config --template --format json Print a starter config as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd, global, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.template, "template", false, "print a commented starter config instead")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "template format: yaml or json")

	return cmd
}

func runConfig(cmd *cobra.Command, global *globalFlags, flags *configFlags) error {
	out := cmd.OutOrStdout()

	if flags.template {
		if flags.format != "yaml" && flags.format != "json" {
			return fmt.Errorf("invalid format %q: must be yaml or json", flags.format)
		}
		content, err := config.GenerateTemplate(config.TemplateOptions{Format: flags.format})
		if err != nil {
			return fmt.Errorf("generate template: %w", err)
		}
		_, err = out.Write(content)
		return err
	}

	res, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}

	header := "# resolved from defaults"
	if len(res.loadedFrom) > 0 {
		header = "# resolved from " + strings.Join(res.loadedFrom, ", ")
	}
	content, err := res.cfg.ToYAMLWithHeader(header)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = out.Write(content)
	return err
}
