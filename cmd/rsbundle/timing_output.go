package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rsbundle/internal/observ"
)

// newTimer returns a stage timer when --timings is set, nil otherwise.
// observ.Timer methods accept a nil receiver.
func newTimer(cmd *cobra.Command) (*observ.Timer, error) {
	on, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !on {
		return nil, nil
	}
	return observ.NewTimer(), nil
}

func printTimings(cmd *cobra.Command, out io.Writer, timer *observ.Timer) error {
	if timer == nil || out == nil {
		return nil
	}
	format, err := cmd.Root().PersistentFlags().GetString("timings-format")
	if err != nil {
		return fmt.Errorf("failed to get timings-format flag: %w", err)
	}
	return timer.Write(out, format)
}
