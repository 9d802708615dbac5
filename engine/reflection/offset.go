package reflection

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Offset is the binding coordinate of a cursor: the descriptor set and slot its data lives in,
// and the byte offset of that data inside the slot's buffer.
//
// SetAccum and SlotAccum are raw running sums of the set and slot offsets seen on the way down.
// Set and Slot are snapshots of those sums, taken only when a node opens a new set or takes a
// new slot, so SetAccum >= Set and SlotAccum >= Slot always hold.
type Offset struct {
	Set       int
	SetAccum  int
	Slot      int
	SlotAccum int
	Uniform   int
}

func (o Offset) String() string {
	return fmt.Sprintf("set=%d slot=%d uniform=%d (set_accum=%d slot_accum=%d)", o.Set, o.Slot, o.Uniform, o.SetAccum, o.SlotAccum)
}

// delta is the per-category distance from a parent to the node being entered.
type delta [3]int

func fieldDelta(f layout.Field) delta {
	return delta{
		f.Offset(layout.CategoryUniform),
		f.Offset(layout.CategorySlot),
		f.Offset(layout.CategorySet),
	}
}

func indexDelta(n *layout.Node, i int) delta {
	return delta{
		i * n.Stride(layout.CategoryUniform),
		i * n.Stride(layout.CategorySlot),
		i * n.Stride(layout.CategorySet),
	}
}

// step derives the offset of child, reached from o by d. Field, container-child and index
// navigation all go through here.
func (o Offset) step(d delta, child *layout.Node) Offset {
	next := Offset{
		Set:       o.Set,
		SetAccum:  o.SetAccum + d[layout.CategorySet],
		Slot:      o.Slot,
		SlotAccum: o.SlotAccum + d[layout.CategorySlot],
		Uniform:   o.Uniform + d[layout.CategoryUniform],
	}

	newSet := opensSet(child)
	if newSet {
		next.Set = next.SetAccum
		next.Slot, next.SlotAccum = 0, 0
	}
	newSlot := takesSlot(child)
	if newSlot {
		next.Slot = next.SlotAccum
	}
	if newSet || newSlot {
		next.Uniform = 0
	}
	return next
}

// opensSet reports whether entering n starts a new descriptor set.
func opensSet(n *layout.Node) bool {
	return n.Kind().IsSingleton() && n.ContainerSize(layout.CategorySet) > 0
}

// takesSlot reports whether entering n moves to a slot of its own. Singletons take one when
// their container needs a descriptor; samplers and resources always own theirs.
func takesSlot(n *layout.Node) bool {
	switch n.Kind() {
	case layout.KindSampler, layout.KindResource:
		return true
	case layout.KindConstantBuffer, layout.KindParameterBlock, layout.KindTextureBuffer, layout.KindShaderStorageBuffer:
		return n.ContainerSize(layout.CategorySlot) > 0
	default:
		return false
	}
}
