package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/serialtemp/internal/logging"
	"github.com/nvandessel/serialtemp/internal/pathutil"
	"github.com/nvandessel/serialtemp/internal/render"
	"github.com/nvandessel/serialtemp/internal/sequence"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate SendSerialTemperature calls for a testbench",
		Long: `Generate a sequence of temperature readings and render one
SendSerialTemperature call per reading, earliest first.

Readings are drawn from 92..98. After the first 21 readings each one has a
25% chance of being replaced by an anomaly from 130..139.

Examples:
  serialtemp generate                         # 10 readings to stdout
  serialtemp generate --count 50 --seed 7     # reproducible run
  serialtemp generate --format verilog -o tb/temps.vh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			count := cfg.Generation.Count
			if cmd.Flags().Changed("count") {
				count, _ = cmd.Flags().GetInt("count")
			}
			seed := cfg.Generation.Seed
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetUint64("seed")
			}
			formatName := cfg.Output.Format
			if cmd.Flags().Changed("format") {
				formatName, _ = cmd.Flags().GetString("format")
			} else if jsonOut {
				formatName = string(render.FormatJSON)
			}
			format, err := render.ParseFormat(formatName)
			if err != nil {
				return err
			}

			runID := logging.NewRunID()
			logger := logging.ForRun(newLogger(cmd, cfg), runID)
			decisions := logging.NewDecisionLogger(filepath.Join(root, ".serialtemp"), cfg.Logging.Level)
			defer decisions.Close()

			driver, err := render.NewDriver(cfg.Generation.Sequence(), cfg.Timing, sequence.WithDecisionLogger(decisions, runID))
			if err != nil {
				return err
			}
			driver.Logger = logger
			driver.Decisions = decisions
			run, err := driver.Run(runID, count, sequence.NewSource(seed))
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := render.Write(&buf, run, format); err != nil {
				return fmt.Errorf("failed to render run: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", pathutil.RedactPath(output), err)
			}
			logger.Info("artifact written", "path", output, "count", run.Count, "anomalies", run.Anomalies)
			return nil
		},
	}

	cmd.Flags().IntP("count", "n", 0, "Number of readings (default from config, normally 10)")
	cmd.Flags().Uint64("seed", 0, "Seed for a reproducible run (0 seeds from the clock)")
	cmd.Flags().StringP("format", "f", "", "Output format: calls, verilog, json")
	cmd.Flags().StringP("output", "o", "", "Write the artifact to a file instead of stdout")

	return cmd
}
