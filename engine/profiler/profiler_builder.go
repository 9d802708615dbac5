package profiler

import "time"

// ProfilerOption is a functional option used to configure a Profiler during construction.
type ProfilerOption func(*Profiler)

// WithUpdateInterval sets how often Tick logs and resets the per-interval counters.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerOption: a function that sets the interval
func WithUpdateInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = interval
	}
}
