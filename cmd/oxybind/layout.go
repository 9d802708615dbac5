package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout [flags] file.toml",
		Short: "Print the descriptor table of a layout",
		Args:  cobra.ExactArgs(1),
		RunE:  runLayout,
	}
	cmd.Flags().Bool("digest", false, "print the layout digest")
	return cmd
}

func runLayout(cmd *cobra.Command, args []string) error {
	root, err := layout.Load(args[0])
	if err != nil {
		return err
	}
	table, err := reflection.BuildBindingLayout(root)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if digest, _ := cmd.Flags().GetBool("digest"); digest {
		fmt.Fprintf(out, "%s %s\n", dimColor.Sprint("digest"), layout.DigestOf(root))
	}
	printTable(out, table)
	return nil
}

func printTable(out io.Writer, table reflection.BindingTable) {
	if len(table) == 0 {
		fmt.Fprintln(out, dimColor.Sprint("no bindings"))
		return
	}
	for _, set := range table.Sets() {
		fmt.Fprintln(out, headerColor.Sprintf("set %d", set))
		for _, d := range table[set] {
			detail := ""
			switch {
			case d.Kind.IsBuffer():
				detail = fmt.Sprintf("%d bytes", d.Capacity)
			case d.Kind == reflection.BindingTexture:
				detail = d.ViewDimension.String()
			}
			fmt.Fprintf(out, "  %-3d %-28s %-10s %s\n", d.Slot, d.Kind, detail, displayPath(d.Name))
		}
	}
}

// displayPath names the root scope, whose path is empty.
func displayPath(path string) string {
	if path == "" {
		return "(global)"
	}
	return path
}
