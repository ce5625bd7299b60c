package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// toggle is the auto|on|off value of --color and --ui.
type toggle string

const (
	toggleAuto toggle = "auto"
	toggleOn   toggle = "on"
	toggleOff  toggle = "off"
)

func readToggle(flag, value string) (toggle, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return toggleAuto, nil
	case "on", "always", "true":
		return toggleOn, nil
	case "off", "never", "false":
		return toggleOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// resolve turns auto into on when f is a terminal.
func (t toggle) resolve(f *os.File) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	default:
		return isTerminal(f)
	}
}

// setupColor applies --color to fatih/color for everything printed to
// stderr. NO_COLOR keeps colours off in auto mode.
func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readToggle("color", value)
	if err != nil {
		return err
	}
	switch {
	case mode == toggleAuto && os.Getenv("NO_COLOR") != "":
		color.NoColor = true
	default:
		color.NoColor = !mode.resolve(os.Stderr)
	}
	return nil
}

func useColor() bool { return !color.NoColor }

func errorLabel() string {
	return color.New(color.FgRed, color.Bold).Sprint("error:")
}
