package binding_resources

import "github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"

// BindingResourcesOption is a functional option used to configure a BindingResources pool during construction.
type BindingResourcesOption func(*bindingResources)

// WithSampler seeds the pool with a sampler at (set, slot) that the caller keeps owning, so one
// sampler can be shared across programs. The pool never releases it, neither when it is
// replaced nor when the pool is released.
//
// Parameters:
//   - set: the descriptor set index
//   - slot: the slot within the set
//   - samp: the sampler to store
//
// Returns:
//   - BindingResourcesOption: a function that stores the sampler
func WithSampler(set, slot int, samp backend.Sampler) BindingResourcesOption {
	return func(p *bindingResources) {
		p.samplers.put(set, slot, samp)
		p.borrowed[samp] = struct{}{}
	}
}
