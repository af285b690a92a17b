package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/serialtemp/internal/models"
	"github.com/nvandessel/serialtemp/internal/pulse"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <value>",
		Short: "Show the serial pulse plan for one value",
		Long: `Encode a non-negative integer as MSB-first bits and print the timing
used to pulse it out: each bit gets a delay_per_pulse slot, of which
delay_data_set signals data-valid and the rest is idle.

Examples:
  serialtemp encode 97
  serialtemp encode 97 --slots
  serialtemp encode 133 --json
  serialtemp encode -- 133    # values after -- are never read as flags`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: encode requires exactly one value, got %d", models.ErrInvalidArgument, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", models.ErrInvalidArgument, args[0])
			}

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			encoder, err := pulse.NewEncoder(cfg.Timing)
			if err != nil {
				return err
			}
			plan, err := encoder.Encode(value)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			showSlots, _ := cmd.Flags().GetBool("slots")
			out := cmd.OutOrStdout()

			if jsonOut {
				result := map[string]any{
					"plan":     plan,
					"duration": plan.Duration(),
				}
				if showSlots {
					result["slots"] = pulse.Slots(plan)
				}
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "value:                %d\n", plan.Value)
			fmt.Fprintf(out, "bits:                 %s\n", plan.Bits)
			fmt.Fprintf(out, "delay_per_pulse:      %d\n", plan.DelayPerPulse)
			fmt.Fprintf(out, "delay_data_set:       %d\n", plan.DelayDataSet)
			fmt.Fprintf(out, "delay_after_data_set: %d\n", plan.DelayAfterDataSet)
			fmt.Fprintf(out, "duration:             %d\n", plan.Duration())
			if showSlots {
				fmt.Fprintln(out)
				fmt.Fprintln(out, formatSlots(pulse.Slots(plan)))
			}
			return nil
		},
	}

	cmd.Flags().Bool("slots", false, "Also print the per-bit timeline")

	// A negative value such as -3 reaches the flag parser as an unknown
	// shorthand. Report it as the invalid value it is.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if value, ok := negativeArg(err); ok {
			return fmt.Errorf("%w: value must be non-negative, got %d", models.ErrInvalidArgument, value)
		}
		return err
	})

	return cmd
}

// formatSlots renders one line per bit: start time, bit, data-valid and idle.
func formatSlots(slots []models.PulseSlot) string {
	lines := make([]string, 0, len(slots)+1)
	lines = append(lines, "start  bit  data_set  after_data_set")
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("%5d  %3d  %8d  %14d", s.Start, s.Bit, s.DataSet, s.AfterDataSet))
	}
	return strings.Join(lines, "\n")
}

// negativeArg reports the integer n when err is an unknown shorthand
// error for the argument -n.
func negativeArg(err error) (int, bool) {
	var notExist *pflag.NotExistError
	if !errors.As(err, &notExist) {
		return 0, false
	}
	shorthands := notExist.GetSpecifiedShortnames()
	if shorthands == "" {
		return 0, false
	}
	n, convErr := strconv.Atoi(shorthands)
	if convErr != nil {
		return 0, false
	}
	return -n, true
}
