package control

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Array is a composite node with indexed children. Its value is a []any of
// the enabled children's values.
type Array struct {
	base
	controls []Node
}

var _ Node = (*Array)(nil)

// NewArray returns an array over controls.
func NewArray(controls []Node, validator *Validator, async AsyncValidatorFunc) *Array {
	a := &Array{}
	a.init(a, validator, async)
	for _, c := range controls {
		c.setParent(a)
		a.controls = append(a.controls, c)
	}
	a.UpdateValueAndValidity(Opts{OnlySelf: true, NoEmit: true})
	return a
}

// Len returns the number of children.
func (a *Array) Len() int { return len(a.controls) }

// At returns the child at index i, or nil when out of range.
func (a *Array) At(i int) Node {
	if i < 0 || i >= len(a.controls) {
		return nil
	}
	return a.controls[i]
}

// Controls returns the children in order.
func (a *Array) Controls() []Node { return slices.Clone(a.controls) }

// Push appends n and recomputes validity.
func (a *Array) Push(n Node, opts ...Opts) {
	o := pick(opts)
	n.setParent(a)
	a.controls = append(a.controls, n)
	a.UpdateValueAndValidity(Opts{NoEmit: o.NoEmit})
}

// Insert places n at index i (clamped to the valid range).
func (a *Array) Insert(i int, n Node, opts ...Opts) {
	o := pick(opts)
	i = max(0, min(i, len(a.controls)))
	n.setParent(a)
	a.controls = slices.Insert(a.controls, i, n)
	a.UpdateValueAndValidity(Opts{NoEmit: o.NoEmit})
}

// RemoveAt drops the child at index i. Out of range indexes are ignored.
func (a *Array) RemoveAt(i int, opts ...Opts) {
	o := pick(opts)
	if i < 0 || i >= len(a.controls) {
		return
	}
	a.controls[i].setParent(nil)
	a.controls = slices.Delete(a.controls, i, i+1)
	a.UpdateValueAndValidity(Opts{NoEmit: o.NoEmit})
}

// Clear removes every child.
func (a *Array) Clear(opts ...Opts) {
	o := pick(opts)
	if len(a.controls) == 0 {
		return
	}
	for _, c := range a.controls {
		c.setParent(nil)
	}
	a.controls = nil
	a.UpdateValueAndValidity(Opts{NoEmit: o.NoEmit})
}

// RawValue returns every child's raw value, disabled ones included.
func (a *Array) RawValue() any {
	out := make([]any, len(a.controls))
	for i, c := range a.controls {
		out[i] = c.RawValue()
	}
	return out
}

// SetValue writes a value to every child. v must have exactly Len items;
// the array itself is never grown or shrunk.
func (a *Array) SetValue(v any, opts ...Opts) error {
	o := pick(opts)
	items, ok := asSlice(v)
	if !ok {
		return &ShapeError{Reason: fmt.Sprintf("expected an array, got %T", v)}
	}
	if len(items) < len(a.controls) {
		return &ShapeError{Path: strconv.Itoa(len(items)), Reason: "missing value for control"}
	}
	if len(items) > len(a.controls) {
		return &ShapeError{Path: strconv.Itoa(len(a.controls)), Reason: "no control registered"}
	}
	for i, c := range a.controls {
		if err := c.SetValue(items[i], Opts{OnlySelf: true, NoEmit: o.NoEmit}); err != nil {
			return prefixShape(err, strconv.Itoa(i))
		}
	}
	a.UpdateValueAndValidity(o)
	return nil
}

// PatchValue writes items to the children that exist at the same index.
func (a *Array) PatchValue(v any, opts ...Opts) {
	o := pick(opts)
	items, ok := asSlice(v)
	if !ok {
		return
	}
	for i, item := range items {
		if i < len(a.controls) {
			a.controls[i].PatchValue(item, Opts{OnlySelf: true, NoEmit: o.NoEmit})
		}
	}
	a.UpdateValueAndValidity(o)
}

// Reset resets each child with the matching item of v (nil when absent).
func (a *Array) Reset(v any, opts ...Opts) {
	o := pick(opts)
	items, _ := asSlice(v)
	for i, c := range a.controls {
		var item any
		if i < len(items) {
			item = items[i]
		}
		c.Reset(item, Opts{OnlySelf: true, NoEmit: o.NoEmit})
	}
	a.updatePristine(o)
	a.updateTouched(o)
	a.UpdateValueAndValidity(o)
}

func (a *Array) children() []Node { return a.controls }

func (a *Array) calcValue() any {
	out := make([]any, 0, len(a.controls))
	for _, c := range a.controls {
		if c.Enabled() || a.Disabled() {
			out = append(out, c.Value())
		}
	}
	return out
}

func (a *Array) allDisabled() bool {
	for _, c := range a.controls {
		if c.Enabled() {
			return false
		}
	}
	return len(a.controls) > 0 || a.Disabled()
}

// asSlice accepts []any or any slice/array kind.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsSlice converts a slice of any element type to []any.
func AsSlice(v any) ([]any, bool) { return asSlice(v) }

// AsMap converts a string-keyed map of any value type to map[string]any.
func AsMap(v any) (map[string]any, bool) { return asMap(v) }
