package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

func newCursorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cursor file.toml path",
		Short: "Resolve a path to its binding coordinate",
		Long:  `Navigate a path such as "surface.$.points[3].pos" from the layout root ("$" enters a container) and print the offset it lands on`,
		Args:  cobra.ExactArgs(2),
		RunE:  runCursor,
	}
}

func runCursor(cmd *cobra.Command, args []string) error {
	root, err := layout.Load(args[0])
	if err != nil {
		return err
	}
	c, err := reflection.Navigate(reflection.Fresh(root), args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	n := c.Node()
	off := c.Offset()
	fmt.Fprintf(out, "%s %s\n", headerColor.Sprint(displayPath(c.Path())), dimColor.Sprint(n.Kind()))
	fmt.Fprintf(out, "  set     %d\n", off.Set)
	fmt.Fprintf(out, "  slot    %d\n", off.Slot)
	fmt.Fprintf(out, "  uniform %d\n", off.Uniform)
	if size := n.Size(layout.CategoryUniform); size > 0 {
		fmt.Fprintf(out, "  size    %d\n", size)
	}
	return nil
}
