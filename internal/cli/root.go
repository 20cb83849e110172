// Package cli wires the cobra commands: the TUI on the root command plus
// one-shot commands for scripts and status bars.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/j-veylop/openai-cost-tui/internal/config"
	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/version"
)

type options struct {
	cfgFile string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "OpenAI cost tracker",
		Long: `Tracks your OpenAI organization spend from the billing API.

Run without arguments for the interactive dashboard, or use the
subcommands from scripts and status bars.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default is $HOME/.config/oct/config.yaml)")

	rootCmd.AddCommand(
		newSetKeyCmd(opts),
		newDeleteKeyCmd(opts),
		newStatusCmd(opts),
		newStatsCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// setup loads the configuration and points logging at the log file. The
// returned closer flushes the log.
func setup(opts *options) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	closer, err := logger.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	return cfg, closer, nil
}

// withManager runs fn with a manager that is not started: nothing polls and
// no desktop notifications fire.
func withManager(opts *options, fn func(*services.Manager) error) error {
	cfg, closer, err := setup(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	return fn(mgr)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.cfgFile
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Save(config.Default(), path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.File)
			return nil
		},
	}

	configCmd.AddCommand(initCmd, pathCmd)
	return configCmd
}
