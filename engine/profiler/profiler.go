package profiler

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-bind/common"
)

// Profiler tracks upload volume, resource churn and memory statistics for the render loop.
// Outputs stats to the log at a configurable interval. A nil *Profiler is valid and records
// nothing, so callers never need to check for one.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	writes        atomic.Uint64
	bytesWritten  atomic.Uint64
	reallocations atomic.Uint64
	totalReallocs atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters a Profiler accumulates between reports.
type Snapshot struct {
	Writes        uint64
	BytesWritten  uint64
	Reallocations uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// CountWrite records one upload of n bytes into a buffer or texture.
//
// Parameters:
//   - n: the number of bytes uploaded
func (p *Profiler) CountWrite(n int) {
	if p == nil {
		return
	}
	p.writes.Add(1)
	p.bytesWritten.Add(uint64(max(n, 0)))
}

// CountReallocation records that a pool entry was replaced because its size or extent changed.
func (p *Profiler) CountReallocation() {
	if p == nil {
		return
	}
	p.reallocations.Add(1)
	p.totalReallocs.Add(1)
}

// Reallocations returns the number of replacements recorded since the profiler was created.
//
// Returns:
//   - uint64: the lifetime reallocation count
func (p *Profiler) Reallocations() uint64 {
	if p == nil {
		return 0
	}
	return p.totalReallocs.Load()
}

// Snapshot returns the counters accumulated since the last report without resetting them.
//
// Returns:
//   - Snapshot: the current counters
func (p *Profiler) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	return Snapshot{
		Writes:        p.writes.Load(),
		BytesWritten:  p.bytesWritten.Load(),
		Reallocations: p.reallocations.Load(),
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed and resets the per-interval
// counters. Statistics include: FPS, writes and bytes uploaded, reallocations, heap usage,
// allocation rate and GC count/pause times.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	if p == nil {
		return false
	}
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", fps,
		"writes", p.writes.Swap(0),
		"upload_kb", float64(p.bytesWritten.Swap(0))/1024,
		"reallocs", p.reallocations.Swap(0),
		"heap_mb", allocMB,
		"alloc_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
