package writable

import (
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// Struct writes a struct node field by field. The values must match the struct's fields in
// number and declaration order.
//
// Parameters:
//   - fields: one value per struct field
//
// Returns:
//   - Writable: the struct writer
func Struct(fields ...Writable) Writable {
	return WriterFunc(func(c reflection.Cursor, ctx *UploadContext) error {
		if err := ExpectStruct(c, len(fields)); err != nil {
			return err
		}
		for i, v := range fields {
			if err := Field(c, i, v, ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// List writes the elements of a fixed-size array node in index order. Writing fewer elements
// than the array holds leaves the rest untouched.
type List[T Writable] []T

func (l List[T]) WriteAt(c reflection.Cursor, ctx *UploadContext) error {
	if err := expectKind(c, layout.KindArray); err != nil {
		return err
	}
	if n := c.Node().Count(); n > 0 && len(l) > n {
		return fmt.Errorf("%w: %d elements written at %q, which holds %d", ErrTypeMismatch, len(l), c.Path(), n)
	}
	for i, v := range l {
		ec, err := c.NavigateIndex(i)
		if err != nil {
			return err
		}
		if err := v.WriteAt(ec, ctx); err != nil {
			return err
		}
	}
	return nil
}

var writableType = reflect.TypeFor[Writable]()

// Derive builds a Writable for an arbitrary Go value by reflection. Exported struct fields map
// to layout fields in declaration order; a field tagged `writable:"-"` is skipped. float32,
// int32 and uint32 map to scalars, [N]float32 to vectors, [3][3]float32 and [4][4]float32 to
// matrices, other arrays and slices to List, and nested structs recurse. Values that already
// implement Writable are used as they are.
//
// Parameters:
//   - v: the value to derive from
//
// Returns:
//   - Writable: the derived writer
//   - error: an error naming the first field whose type has no mapping
func Derive(v any) (Writable, error) {
	return derive(reflect.ValueOf(v), "value")
}

func derive(rv reflect.Value, where string) (Writable, error) {
	if !rv.IsValid() {
		return nil, fmt.Errorf("%s: cannot derive a writer from nil", where)
	}
	if rv.Type().Implements(writableType) {
		return rv.Interface().(Writable), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, fmt.Errorf("%s: cannot derive a writer from nil", where)
		}
		return derive(rv.Elem(), where)
	case reflect.Float32:
		return F32(rv.Float()), nil
	case reflect.Int32:
		return I32(rv.Int()), nil
	case reflect.Uint32:
		return U32(rv.Uint()), nil
	case reflect.Array:
		if w, ok := floatArray(rv); ok {
			return w, nil
		}
		return deriveList(rv, where)
	case reflect.Slice:
		return deriveList(rv, where)
	case reflect.Struct:
		t := rv.Type()
		fields := make([]Writable, 0, t.NumField())
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() || sf.Tag.Get("writable") == "-" {
				continue
			}
			w, err := derive(rv.Field(i), where+"."+sf.Name)
			if err != nil {
				return nil, err
			}
			fields = append(fields, w)
		}
		return Struct(fields...), nil
	default:
		return nil, fmt.Errorf("%s: no layout mapping for %s", where, rv.Type())
	}
}

func floatArray(rv reflect.Value) (Writable, bool) {
	switch v := rv.Interface().(type) {
	case [2]float32:
		return Vec2(v), true
	case [3]float32:
		return Vec3(v), true
	case [4]float32:
		return Vec4(v), true
	case [3][3]float32:
		return Mat3(v), true
	case [4][4]float32:
		return Mat4(v), true
	default:
		return nil, false
	}
}

func deriveList(rv reflect.Value, where string) (Writable, error) {
	items := make(List[Writable], rv.Len())
	for i := range rv.Len() {
		w, err := derive(rv.Index(i), fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		items[i] = w
	}
	return items, nil
}
