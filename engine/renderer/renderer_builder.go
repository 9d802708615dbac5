package renderer

import (
	"github.com/Carmen-Shannon/oxy-bind/engine/layoutcache"
	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLayoutCache makes the renderer look binding tables up in c before building them, and store
// the ones it builds.
//
// Parameters:
//   - c: the table cache
//
// Returns:
//   - RendererBuilderOption: a function that sets the cache
func WithLayoutCache(c layoutcache.Cache) RendererBuilderOption {
	return func(r *renderer) {
		r.cache = c
	}
}

// WithProfiler counts every write and reallocation the renderer performs in p.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - RendererBuilderOption: a function that sets the profiler
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.stats = p
	}
}

// WithWorkers sets how many tables are built in parallel. Defaults to the number of CPUs.
//
// Parameters:
//   - n: the number of build workers
//
// Returns:
//   - RendererBuilderOption: a function that sets the worker count
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(n, 1)
	}
}
