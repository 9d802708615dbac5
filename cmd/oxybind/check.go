package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/shader"
)

// checkReport is the outcome of checking one layout file.
type checkReport struct {
	path          string
	table         reflection.BindingTable
	disagreements []reflection.Disagreement
	mismatches    map[string][]shader.Mismatch
}

func (r checkReport) ok() bool {
	if len(r.disagreements) > 0 {
		return false
	}
	for _, m := range r.mismatches {
		if len(m) > 0 {
			return false
		}
	}
	return true
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] file.toml...",
		Short: "Check that cursor coordinates agree with the descriptor table",
		Long:  `Check walks every node of each layout with a cursor and verifies it lands on a descriptor of a compatible kind. With --wgsl, each shader is also verified against the table of every layout`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().StringSlice("wgsl", nil, "WGSL shaders to verify against the tables")
	cmd.Flags().Int("jobs", 0, "number of files checked in parallel (default GOMAXPROCS)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	wgsl, err := cmd.Flags().GetStringSlice("wgsl")
	if err != nil {
		return fmt.Errorf("failed to get wgsl flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	reports, err := checkFiles(cmd.Context(), args, wgsl, jobs)
	if err != nil {
		return err
	}
	if !printReports(cmd.OutOrStdout(), reports) {
		return errCheckFailed
	}
	return nil
}

// checkFiles loads and checks every layout file concurrently. Reports come back in the order of
// paths; the first load or build error cancels the rest.
func checkFiles(ctx context.Context, paths, wgsl []string, jobs int) ([]checkReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	reports := make([]checkReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			report, err := checkFile(path, wgsl)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func checkFile(path string, wgsl []string) (checkReport, error) {
	root, err := layout.Load(path)
	if err != nil {
		return checkReport{}, err
	}
	return checkLayout(path, root, wgsl)
}

func checkLayout(path string, root *layout.Node, wgsl []string) (checkReport, error) {
	table, err := reflection.BuildBindingLayout(root)
	if err != nil {
		return checkReport{}, fmt.Errorf("%s: %w", path, err)
	}
	disagreements, err := reflection.CheckAgreement(root, table)
	if err != nil {
		return checkReport{}, fmt.Errorf("%s: %w", path, err)
	}

	report := checkReport{
		path:          path,
		table:         table,
		disagreements: disagreements,
		mismatches:    make(map[string][]shader.Mismatch, len(wgsl)),
	}
	for _, src := range wgsl {
		key := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		sh, err := shader.LoadShader(key, src, shader.WithLayout(root, table))
		if err != nil {
			return checkReport{}, fmt.Errorf("%s: %w", path, err)
		}
		report.mismatches[src] = shader.Verify(table, sh)
	}
	return report, nil
}

// printReports writes one section per report and reports whether all of them passed.
func printReports(out io.Writer, reports []checkReport) bool {
	allOK := true
	for _, r := range reports {
		if r.ok() {
			fmt.Fprintf(out, "%s %s (%d sets)\n", okColor.Sprint("ok"), r.path, len(r.table))
			continue
		}
		allOK = false
		fmt.Fprintf(out, "%s %s\n", badColor.Sprint("FAIL"), r.path)
		for _, d := range r.disagreements {
			fmt.Fprintf(out, "  %s\n", d)
		}
		for src, mismatches := range r.mismatches {
			for _, m := range mismatches {
				fmt.Fprintf(out, "  %s: %s\n", src, m)
			}
		}
	}
	return allOK
}
