package binding_resources

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
)

// ErrMissingResource is returned when a lookup addresses a (set, slot) that holds no resource
// of the requested type. It means the cursor and the binding layout disagree and must never be
// skipped over.
var ErrMissingResource = errors.New("no resource at coordinate")

// slots maps set -> slot -> handle.
type slots[T any] map[int]map[int]T

func (s slots[T]) get(set, slot int) (T, bool) {
	v, ok := s[set][slot]
	return v, ok
}

func (s slots[T]) put(set, slot int, v T) (T, bool) {
	if s[set] == nil {
		s[set] = make(map[int]T)
	}
	old, had := s[set][slot]
	s[set][slot] = v
	return old, had
}

// bindingResources is the unexported implementation of BindingResources.
type bindingResources struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are device resources and are released when replaced or when the pool is released.

	// buffers holds the buffers keyed by set, then slot.
	buffers slots[backend.Buffer]
	// textures holds the textures keyed by set, then slot.
	textures slots[backend.Texture]
	// textureViews holds the texture views keyed by set, then slot.
	textureViews slots[backend.TextureView]
	// samplers holds the samplers keyed by set, then slot.
	samplers slots[backend.Sampler]

	// borrowed holds the samplers seeded with WithSampler; their owner releases them.
	borrowed map[backend.Sampler]struct{}
}

// BindingResources is the pool of device resources a program's values are written into, keyed
// by (set, slot). Entries are created lazily by the writers, or up front from a binding table,
// and replaced when a written value no longer fits. The pool persists across frames.
//
// Usage pattern:
//  1. Renderer allocates one buffer per buffer descriptor with AllocateBuffers
//  2. Values write themselves through a Cursor; textures and samplers are created on first write
//  3. Renderer joins the pool against each set's descriptors with Entries and builds bind groups
//  4. Release frees every resource when the program is dropped
type BindingResources interface {
	// Label returns the debug label for this pool.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Buffer returns the buffer at (set, slot).
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//
	// Returns:
	//   - backend.Buffer: the buffer
	//   - error: ErrMissingResource if there is none
	Buffer(set, slot int) (backend.Buffer, error)

	// Texture returns the texture at (set, slot).
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//
	// Returns:
	//   - backend.Texture: the texture
	//   - error: ErrMissingResource if there is none
	Texture(set, slot int) (backend.Texture, error)

	// TextureView returns the texture view at (set, slot).
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//
	// Returns:
	//   - backend.TextureView: the view
	//   - error: ErrMissingResource if there is none
	TextureView(set, slot int) (backend.TextureView, error)

	// Sampler returns the sampler at (set, slot).
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//
	// Returns:
	//   - backend.Sampler: the sampler
	//   - error: ErrMissingResource if there is none
	Sampler(set, slot int) (backend.Sampler, error)

	// SetBuffer stores a buffer at (set, slot), releasing the buffer it replaces.
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//   - buf: the buffer to store
	SetBuffer(set, slot int, buf backend.Buffer)

	// SetTexture stores a texture at (set, slot), releasing the texture it replaces.
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//   - tex: the texture to store
	SetTexture(set, slot int, tex backend.Texture)

	// SetTextureView stores a texture view at (set, slot), releasing the view it replaces.
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//   - view: the view to store
	SetTextureView(set, slot int, view backend.TextureView)

	// SetSampler stores a sampler at (set, slot), releasing the sampler it replaces.
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - slot: the slot within the set
	//   - samp: the sampler to store
	SetSampler(set, slot int, samp backend.Sampler)

	// AllocateBuffers creates a buffer for every buffer descriptor of table that has none yet,
	// sized to the descriptor's capacity with the usage its kind requires.
	//
	// Parameters:
	//   - dev: the device to create buffers on
	//   - table: the program's binding table
	//
	// Returns:
	//   - int: the number of buffers created
	//   - error: the first creation error
	AllocateBuffers(dev backend.Device, table reflection.BindingTable) (int, error)

	// Entries joins the pool against one set's descriptors by slot, producing the entries a bind
	// group for that set needs.
	//
	// Parameters:
	//   - set: the descriptor set index
	//   - descs: the set's descriptors in slot order
	//
	// Returns:
	//   - []backend.BindGroupEntry: one entry per descriptor
	//   - error: ErrMissingResource naming the first slot without a resource
	Entries(set int, descs []reflection.BindingDescriptor) ([]backend.BindGroupEntry, error)

	// Sets returns every set index holding at least one resource, in ascending order.
	//
	// Returns:
	//   - []int: the set indices
	Sets() []int

	// Release releases every resource held by the pool and empties it.
	Release()
}

// Compile-time check that bindingResources implements BindingResources
var _ BindingResources = &bindingResources{}

// NewBindingResources creates an empty pool.
//
// Parameters:
//   - label: a debug label used in errors and resource labels
//   - options: a variadic list of options to configure the pool
//
// Returns:
//   - BindingResources: the new pool
func NewBindingResources(label string, options ...BindingResourcesOption) BindingResources {
	p := &bindingResources{
		label:        label,
		buffers:      make(slots[backend.Buffer]),
		textures:     make(slots[backend.Texture]),
		textureViews: make(slots[backend.TextureView]),
		samplers:     make(slots[backend.Sampler]),
		borrowed:     make(map[backend.Sampler]struct{}),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindingResources) Label() string {
	return p.label
}

func lookup[T any](p *bindingResources, s slots[T], what string, set, slot int) (T, error) {
	v, ok := s.get(set, slot)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s: no %s at set %d, slot %d", ErrMissingResource, p.label, what, set, slot)
	}
	return v, nil
}

func (p *bindingResources) Buffer(set, slot int) (backend.Buffer, error) {
	return lookup(p, p.buffers, "buffer", set, slot)
}

func (p *bindingResources) Texture(set, slot int) (backend.Texture, error) {
	return lookup(p, p.textures, "texture", set, slot)
}

func (p *bindingResources) TextureView(set, slot int) (backend.TextureView, error) {
	return lookup(p, p.textureViews, "texture view", set, slot)
}

func (p *bindingResources) Sampler(set, slot int) (backend.Sampler, error) {
	return lookup(p, p.samplers, "sampler", set, slot)
}

func (p *bindingResources) SetBuffer(set, slot int, buf backend.Buffer) {
	if old, had := p.buffers.put(set, slot, buf); had && old != nil && old != buf {
		old.Release()
	}
}

func (p *bindingResources) SetTexture(set, slot int, tex backend.Texture) {
	if old, had := p.textures.put(set, slot, tex); had && old != nil && old != tex {
		old.Release()
	}
}

func (p *bindingResources) SetTextureView(set, slot int, view backend.TextureView) {
	if old, had := p.textureViews.put(set, slot, view); had && old != nil && old != view {
		old.Release()
	}
}

func (p *bindingResources) SetSampler(set, slot int, samp backend.Sampler) {
	if old, had := p.samplers.put(set, slot, samp); had && old != nil && old != samp {
		p.releaseSampler(old)
	}
}

func (p *bindingResources) releaseSampler(samp backend.Sampler) {
	if _, ok := p.borrowed[samp]; ok {
		return
	}
	samp.Release()
}

func (p *bindingResources) AllocateBuffers(dev backend.Device, table reflection.BindingTable) (int, error) {
	created := 0
	for _, set := range table.Sets() {
		for _, d := range table[set] {
			if !d.Kind.IsBuffer() {
				continue
			}
			if _, ok := p.buffers.get(set, d.Slot); ok {
				continue
			}
			buf, err := dev.CreateBuffer(backend.BufferDescriptor{
				Label: fmt.Sprintf("%s %s [%d:%d]", p.label, d.Name, set, d.Slot),
				Size:  uint64(max(d.Capacity, 4)),
				Usage: backend.UsageFor(d.Kind),
			})
			if err != nil {
				return created, fmt.Errorf("%s: allocating %s at set %d, slot %d: %w", p.label, d.Kind, set, d.Slot, err)
			}
			p.SetBuffer(set, d.Slot, buf)
			created++
		}
	}
	return created, nil
}

func (p *bindingResources) Entries(set int, descs []reflection.BindingDescriptor) ([]backend.BindGroupEntry, error) {
	entries := make([]backend.BindGroupEntry, 0, len(descs))
	for _, d := range descs {
		e := backend.BindGroupEntry{Slot: d.Slot}
		var err error
		switch {
		case d.Kind.IsBuffer():
			e.Buffer, err = p.Buffer(set, d.Slot)
		case d.Kind == reflection.BindingTexture:
			e.TextureView, err = p.TextureView(set, d.Slot)
		case d.Kind == reflection.BindingSampler:
			e.Sampler, err = p.Sampler(set, d.Slot)
		default:
			err = fmt.Errorf("%s: unknown binding kind %s at set %d, slot %d", p.label, d.Kind, set, d.Slot)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (p *bindingResources) Sets() []int {
	seen := make(map[int]struct{})
	for set := range p.buffers {
		seen[set] = struct{}{}
	}
	for set := range p.textures {
		seen[set] = struct{}{}
	}
	for set := range p.textureViews {
		seen[set] = struct{}{}
	}
	for set := range p.samplers {
		seen[set] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (p *bindingResources) Release() {
	// Views go before the textures they reference.
	releaseAll(p.textureViews)
	releaseAll(p.textures)
	for set, bySlot := range p.samplers {
		for _, samp := range bySlot {
			if samp != nil {
				p.releaseSampler(samp)
			}
		}
		delete(p.samplers, set)
	}
	releaseAll(p.buffers)
}

func releaseAll[T interface{ Release() }](s slots[T]) {
	for set, bySlot := range s {
		for _, v := range bySlot {
			if any(v) != nil {
				v.Release()
			}
		}
		delete(s, set)
	}
}
