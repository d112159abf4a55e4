// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"

	"earshot/internal/build"
	"earshot/internal/config"
	applog "earshot/internal/log"

	"github.com/spf13/cobra"
)

// options holds values shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

// Execute parses args and runs the selected command.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML configuration file (default: ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.AddCommand(
		newRecognizeCmd(opts),
		newHistoryCmd(opts),
		newToneCmd(),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the configuration and applies its log level. --verbose and
// debug: true both force debug logging.
func (o *options) load() error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level, _ := applog.ParseLevel(cfg.LogLevel)
	if o.verbose || cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)
	applog.Debugf("configuration loaded (log level %s)", level)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), build.GetBuildFlags().String())
			return err
		},
	}
}
