package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/layoutcache"
	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/writable"
)

const demoProgram = "scene"

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [flags]",
		Short: "Write a scene into binding resources for a number of frames",
		Long:  `Demo registers a built-in program, writes its parameters every frame and rebuilds its bind groups, then prints the upload statistics`,
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	cmd.Flags().Bool("gpu", false, "use a WebGPU device instead of host memory")
	cmd.Flags().Bool("software", false, "force the software fallback adapter (with --gpu)")
	cmd.Flags().Int("frames", 120, "number of frames to write")
	cmd.Flags().Bool("cache", false, "look binding tables up in the user cache directory")
	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	gpu, _ := cmd.Flags().GetBool("gpu")
	software, _ := cmd.Flags().GetBool("software")
	frames, _ := cmd.Flags().GetInt("frames")
	useCache, _ := cmd.Flags().GetBool("cache")

	var dev backend.Device
	if gpu {
		d, err := wgpu_backend.NewDevice(wgpu_backend.WithLabel("oxybind demo"), wgpu_backend.WithForceSoftwareRenderer(software))
		if err != nil {
			return err
		}
		dev = d
	} else {
		dev = backend.NewMemoryDevice()
	}
	defer dev.Release()

	stats := profiler.NewProfiler(profiler.WithUpdateInterval(time.Second))
	options := []renderer.RendererBuilderOption{renderer.WithProfiler(stats)}
	if useCache {
		cache, err := layoutcache.NewCache()
		if err != nil {
			common.Logger().Warn("table cache unavailable", "err", err)
		} else {
			options = append(options, renderer.WithLayoutCache(cache))
		}
	}
	r := renderer.NewRenderer(dev, options...)
	defer r.Release()

	summary, err := runScene(r, frames)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerColor.Sprintf("program %s", demoProgram))
	printTable(out, r.Program(demoProgram).Table())
	fmt.Fprintf(out, "%d frames, %d writes, %d bytes, %d reallocations\n",
		summary.Frames, summary.Writes, summary.BytesWritten, summary.Reallocations)
	return nil
}

// demoSummary is what a demo run reports.
type demoSummary struct {
	Frames        int
	Writes        uint64
	BytesWritten  uint64
	Reallocations uint64
	BindGroups    int
}

func (s *demoSummary) add(snap profiler.Snapshot) {
	s.Writes += snap.Writes
	s.BytesWritten += snap.BytesWritten
}

// runScene registers the scene program on r and writes frames of it.
func runScene(r renderer.Renderer, frames int) (demoSummary, error) {
	root, err := layout.Parse([]byte(sceneLayout))
	if err != nil {
		return demoSummary{}, err
	}
	if err := r.RegisterPrograms(renderer.NewProgram(demoProgram, root)); err != nil {
		return demoSummary{}, err
	}

	sky := gradientSky(4)
	summary := demoSummary{Frames: frames}
	for frame := range frames {
		params := newSceneParams(frame, sky)
		if err := r.Write(demoProgram, writable.ConstantBuffer[SceneParams]{Value: params}); err != nil {
			return demoSummary{}, fmt.Errorf("frame %d (%s): %w", frame, params.Label, err)
		}
		groups, err := r.BindGroups(demoProgram)
		if err != nil {
			return demoSummary{}, fmt.Errorf("frame %d: %w", frame, err)
		}
		summary.BindGroups = len(groups)

		// Tick resets the interval counters when it reports.
		snap := r.Stats().Snapshot()
		if r.Stats().Tick() {
			summary.add(snap)
		}
	}
	summary.add(r.Stats().Snapshot())
	summary.Reallocations = r.Stats().Reallocations()
	return summary, nil
}
