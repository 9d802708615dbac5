package reflection

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Disagreement is a node whose cursor coordinate does not match the binding-layout table, or a
// table slot no cursor reaches. Either one means the set/slot aggregation rules do not fit the
// layout at hand.
type Disagreement struct {
	Path   string
	Offset Offset
	Reason string
}

func (d Disagreement) String() string {
	if d.Path == "" {
		return d.Reason
	}
	return fmt.Sprintf("%s [set %d, slot %d, uniform %d]: %s", d.Path, d.Offset.Set, d.Offset.Slot, d.Offset.Uniform, d.Reason)
}

type slotKey struct{ set, slot int }

// CheckAgreement walks every cursor reachable from root and checks that each binding node and
// each piece of uniform data lands in a table slot of a compatible kind, and that every slot in
// the table is reached by some cursor. Disagreements are reported, never repaired.
//
// Parameters:
//   - root: the program's root layout node
//   - table: the table BuildBindingLayout produced for root
//
// Returns:
//   - []Disagreement: every mismatch found, in walk order
//   - error: a traversal error for node kinds the walk does not support
func CheckAgreement(root *layout.Node, table BindingTable) ([]Disagreement, error) {
	var out []Disagreement
	reached := make(map[slotKey]bool)

	err := Walk(Fresh(root), func(c Cursor) error {
		want, ok := expectedKinds(c.Node())
		if !ok {
			return nil
		}
		off := c.Offset()
		d, found := table.Lookup(off.Set, off.Slot)
		if !found {
			out = append(out, Disagreement{Path: c.Path(), Offset: off, Reason: "no descriptor at this coordinate"})
			return nil
		}
		reached[slotKey{off.Set, off.Slot}] = true

		if !slices.Contains(want, d.Kind) {
			out = append(out, Disagreement{
				Path: c.Path(), Offset: off,
				Reason: fmt.Sprintf("%s needs %v, descriptor %q is %s", c.Node().Kind(), want, d.Name, d.Kind),
			})
			return nil
		}
		if d.Kind == BindingTexture && d.ViewDimension != c.Node().Shape().ViewDimension() {
			out = append(out, Disagreement{
				Path: c.Path(), Offset: off,
				Reason: fmt.Sprintf("texture shape %s needs a %s view, descriptor declares %s", c.Node().Shape(), c.Node().Shape().ViewDimension(), d.ViewDimension),
			})
		}
		if d.Kind == BindingUniformBuffer && isData(c.Node()) {
			end := off.Uniform + c.Node().Size(layout.CategoryUniform)
			if end > d.Capacity {
				out = append(out, Disagreement{
					Path: c.Path(), Offset: off,
					Reason: fmt.Sprintf("data ends at byte %d, past the %d-byte buffer", end, d.Capacity),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, set := range table.Sets() {
		for _, d := range table[set] {
			if !reached[slotKey{set, d.Slot}] {
				out = append(out, Disagreement{
					Path:   d.Name,
					Offset: Offset{Set: set, SetAccum: set, Slot: d.Slot, SlotAccum: d.Slot},
					Reason: fmt.Sprintf("%s descriptor is never addressed by a cursor", d.Kind),
				})
			}
		}
	}
	return out, nil
}

// expectedKinds returns the descriptor kinds a node may land in. Nodes that neither hold data
// nor own a binding report false.
func expectedKinds(n *layout.Node) ([]BindingKind, bool) {
	switch n.Kind() {
	case layout.KindScalar, layout.KindVector, layout.KindMatrix:
		return []BindingKind{BindingUniformBuffer, BindingStorageBuffer, BindingReadOnlyStorageBuffer}, true
	case layout.KindSampler:
		return []BindingKind{BindingSampler}, true
	case layout.KindResource:
		switch n.BindingType() {
		case layout.BindingTypeTexture:
			return []BindingKind{BindingTexture}, true
		case layout.BindingTypeRawBuffer:
			return []BindingKind{BindingReadOnlyStorageBuffer}, true
		case layout.BindingTypeMutableRawBuffer:
			return []BindingKind{BindingStorageBuffer}, true
		}
		return nil, false
	case layout.KindConstantBuffer, layout.KindParameterBlock:
		if n.ContainerSize(layout.CategorySlot) > 0 {
			return []BindingKind{BindingUniformBuffer}, true
		}
		return nil, false
	case layout.KindShaderStorageBuffer:
		return []BindingKind{BindingStorageBuffer}, true
	default:
		return nil, false
	}
}

func isData(n *layout.Node) bool {
	switch n.Kind() {
	case layout.KindScalar, layout.KindVector, layout.KindMatrix:
		return true
	default:
		return false
	}
}
