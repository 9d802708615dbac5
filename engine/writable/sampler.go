package writable

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/binding_resources"
)

// Sampler creates the sampler at the cursor's coordinate on its first write. Later writes
// keep the existing sampler even when the descriptor differs.
type Sampler struct {
	Descriptor backend.SamplerDescriptor
}

func (s Sampler) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	if err := expectKind(c, layout.KindSampler); err != nil {
		return err
	}
	off := c.Offset()
	_, err := ctx.Resources.Sampler(off.Set, off.Slot)
	if !errors.Is(err, binding_resources.ErrMissingResource) {
		return err
	}
	desc := s.Descriptor
	if desc.Label == "" {
		desc.Label = resourceLabel(ctx, c)
	}
	samp, err := ctx.Device.CreateSampler(desc)
	if err != nil {
		return fmt.Errorf("allocating %q: %w", c.Path(), err)
	}
	ctx.Resources.SetSampler(off.Set, off.Slot, samp)
	return nil
}
