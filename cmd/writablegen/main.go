// Command writablegen generates static WriteAt methods for struct types, so values of those
// types can be written into binding resources without reflection. Fields are written in
// declaration order; unexported fields and fields tagged `writable:"-"` are skipped.
//
//	//go:generate go run github.com/Carmen-Shannon/oxy-bind/cmd/writablegen --type Camera,Light
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "writablegen --type T[,T...] [dir]",
	Short: "Generate WriteAt methods for struct types",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.Flags().StringSlice("type", nil, "comma-separated struct type names")
	rootCmd.Flags().StringP("output", "o", "", "output file, relative to dir (default <first type>_writable.go)")
	_ = rootCmd.MarkFlagRequired("type")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	types, err := cmd.Flags().GetStringSlice("type")
	if err != nil {
		return fmt.Errorf("failed to get type flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	if output == "" && len(types) > 0 {
		output = strings.ToLower(types[0]) + "_writable.go"
	}

	src, err := generate(dir, types)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(dir, output)
	}
	return os.WriteFile(output, src, 0o644)
}
