package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/config"
)

// DefaultConfigFile is read by commands when --config is not given.
const DefaultConfigFile = "gateway.yaml"

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Mercator gateway - policy executing API gateway",
	Long: `Mercator gateway serves apis defined as trees of policy functions.

Each api is loaded from a YAML definition with a context root and a list
of functions: authentication, variables, arithmetic, response content and
headers, combined with all/any/try blocks. Function configuration may
reference the request, the transport, the authenticated account and
variables through ${...} placeholders.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, cli.ErrValidationFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", DefaultConfigFile, "config file path")
}

// loadConfig loads cfgFile with environment overrides and installs it as
// the process configuration. The built-in defaults are used when the
// default file does not exist and --config was not given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit := cmd != nil && cmd.Flags().Changed("config")
	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg := config.Default()
		config.SetConfig(cfg)
		return cfg, nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError("config", fmt.Sprintf("failed to load %s", cfgFile), err)
	}
	config.SetConfig(cfg)
	return cfg, nil
}
