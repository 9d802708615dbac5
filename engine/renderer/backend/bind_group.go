package backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
)

// ValidateBindGroup checks that entries hold exactly one resource of the right type for every
// descriptor of a layout, and returns them ordered by slot.
//
// Parameters:
//   - descs: the layout's descriptors in slot order
//   - entries: the resources to bind, in any order
//
// Returns:
//   - []BindGroupEntry: the entries in slot order
//   - error: ErrBindGroupMismatch describing the first problem found
func ValidateBindGroup(descs []reflection.BindingDescriptor, entries []BindGroupEntry) ([]BindGroupEntry, error) {
	bySlot := make(map[int]BindGroupEntry, len(entries))
	for _, e := range entries {
		if _, dup := bySlot[e.Slot]; dup {
			return nil, fmt.Errorf("%w: slot %d bound twice", ErrBindGroupMismatch, e.Slot)
		}
		bySlot[e.Slot] = e
	}
	if len(bySlot) != len(descs) {
		return nil, fmt.Errorf("%w: layout has %d slots, got %d entries", ErrBindGroupMismatch, len(descs), len(bySlot))
	}

	ordered := make([]BindGroupEntry, len(descs))
	for i, d := range descs {
		e, ok := bySlot[d.Slot]
		if !ok {
			return nil, fmt.Errorf("%w: no entry for slot %d (%s)", ErrBindGroupMismatch, d.Slot, d.Name)
		}
		var matches bool
		switch {
		case d.Kind.IsBuffer():
			matches = e.Buffer != nil && e.TextureView == nil && e.Sampler == nil
			if matches && e.Buffer.Usage()&UsageFor(d.Kind) != UsageFor(d.Kind) {
				return nil, fmt.Errorf("%w: buffer at slot %d lacks %s usage", ErrBindGroupMismatch, d.Slot, d.Kind)
			}
		case d.Kind == reflection.BindingTexture:
			matches = e.TextureView != nil && e.Buffer == nil && e.Sampler == nil
			if matches && e.TextureView.Dimension() != d.ViewDimension {
				return nil, fmt.Errorf("%w: slot %d needs a %s view, got %s", ErrBindGroupMismatch, d.Slot, d.ViewDimension, e.TextureView.Dimension())
			}
		case d.Kind == reflection.BindingSampler:
			matches = e.Sampler != nil && e.Buffer == nil && e.TextureView == nil
		}
		if !matches {
			return nil, fmt.Errorf("%w: slot %d needs a %s", ErrBindGroupMismatch, d.Slot, d.Kind)
		}
		ordered[i] = e
	}
	return ordered, nil
}
