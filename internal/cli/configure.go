package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdlive/internal/configloader"
	"github.com/yaklabco/mdlive/internal/logging"
	"github.com/yaklabco/mdlive/pkg/config"
)

// resolved is a loaded configuration together with the logger it selects.
type resolved struct {
	cfg        *config.Config
	logger     *log.Logger
	loadedFrom []string
}

// loadConfig resolves the configuration for a command run. Only flags the
// user actually set override file and environment values.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*resolved, error) {
	cliCfg := &config.Config{Verbose: flags.debug}
	if cmd.Flags().Changed("flavor") {
		cliCfg.Flavor = config.Flavor(flags.flavor)
	}
	if flags.noFocusMarks {
		cliCfg.FocusMarks.Enabled = config.Bool(false)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(commandContext(cmd), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: flags.configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	cfg := result.Config
	logger := logging.New(cfg.EffectiveLogLevel())
	logger.SetOutput(cmd.ErrOrStderr())

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	logger.Debug("configuration loaded",
		logging.FieldPath, strings.Join(result.LoadedFrom, ","),
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldFocusMarks, cfg.FocusMarksEnabled(),
		logging.FieldLogLevel, cfg.EffectiveLogLevel())

	return &resolved{cfg: cfg, logger: logger, loadedFrom: result.LoadedFrom}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
