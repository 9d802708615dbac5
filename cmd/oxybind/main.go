// Command oxybind inspects binding layouts: it prints the descriptor tables built from layout
// description files, resolves cursor paths to binding coordinates, checks that cursors and tables
// agree (and optionally that WGSL shaders match them), and runs a write/bind demo.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Carmen-Shannon/oxy-bind/common"
)

// errCheckFailed is returned by commands that found problems they already printed.
var errCheckFailed = errors.New("check failed")

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	badColor    = color.New(color.FgRed, color.Bold)
	dimColor    = color.New(color.Faint)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "oxybind",
		Short:             "Inspect shader binding layouts",
		Long:              `oxybind builds descriptor tables from layout description files and checks them against cursor coordinates and WGSL shaders`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: configure,
	}
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(newLayoutCmd())
	root.AddCommand(newCursorCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newDemoCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, badColor.Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

func configure(cmd *cobra.Command, _ []string) error {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown color mode %q", colorFlag)
	}

	level, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	return common.SetLogLevel(level)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
