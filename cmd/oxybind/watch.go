package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/watcher"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] file.toml...",
		Short: "Re-run check whenever a layout file changes",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runWatch,
	}
	cmd.Flags().StringSlice("wgsl", nil, "WGSL shaders to verify against the tables")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	wgsl, err := cmd.Flags().GetStringSlice("wgsl")
	if err != nil {
		return fmt.Errorf("failed to get wgsl flag: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	reports, err := checkFiles(ctx, args, wgsl, 0)
	if err != nil {
		common.Logger().Warn("initial check failed", "err", err)
	} else {
		printReports(out, reports)
	}

	// The watcher calls back from its own goroutine.
	var mu sync.Mutex
	w, err := watcher.NewWatcher(func(path string, root *layout.Node, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", badColor.Sprint("FAIL"), path, err)
			return
		}
		report, err := checkLayout(path, root, wgsl)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", badColor.Sprint("FAIL"), err)
			return
		}
		printReports(out, []checkReport{report})
	})
	if err != nil {
		return err
	}
	defer w.Close()
	for _, path := range args {
		if err := w.Add(path); err != nil {
			return err
		}
	}

	common.Logger().Info("watching layouts", "files", len(args))
	<-ctx.Done()
	return nil
}
