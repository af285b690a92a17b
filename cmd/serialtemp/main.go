package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nvandessel/serialtemp/internal/config"
	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "serialtemp",
		Short: "Serial temperature testbench stimulus generator",
		Long: `serialtemp generates simulated temperature readings for HDL testbenches.

Each reading is emitted as a SendSerialTemperature call, and can be
inspected as the bit-serial pulse plan used to transmit it. Past the
warm-up window a reading occasionally jumps into the anomaly range.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.serialtemp/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newGenerateCmd(),
		newEncodeCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// configPath returns the file named by --config, or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

// loadSettings reads the effective configuration: the file named by
// --config (or the default location), SERIALTEMP_* variables, then
// --log-level. A missing file yields the defaults.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
