package control

import (
	"fmt"
	"reflect"
	"slices"
)

// Group is a composite node with named children. Its value is a
// map[string]any of the enabled children's values.
type Group struct {
	base
	keys     []string
	controls map[string]Node
}

var _ Node = (*Group)(nil)

// NewGroup returns a group over controls, registered in the order of keys.
// Keys missing from controls are ignored; controls missing from keys are
// appended in sorted order.
func NewGroup(keys []string, controls map[string]Node, validator *Validator, async AsyncValidatorFunc) *Group {
	g := &Group{controls: map[string]Node{}}
	g.init(g, validator, async)
	for _, k := range orderedKeys(keys, controls) {
		g.register(k, controls[k])
	}
	g.UpdateValueAndValidity(Opts{OnlySelf: true, NoEmit: true})
	return g
}

func orderedKeys(keys []string, controls map[string]Node) []string {
	out := make([]string, 0, len(controls))
	seen := map[string]struct{}{}
	for _, k := range keys {
		if _, ok := controls[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	var rest []string
	for k := range controls {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func (g *Group) register(name string, n Node) {
	if _, exists := g.controls[name]; !exists {
		g.keys = append(g.keys, name)
	}
	g.controls[name] = n
	n.setParent(g)
}

// Get returns the child registered under name.
func (g *Group) Get(name string) Node {
	return g.controls[name]
}

// Has reports whether a child is registered under name.
func (g *Group) Has(name string) bool {
	_, ok := g.controls[name]
	return ok
}

// Contains reports whether an enabled child is registered under name.
func (g *Group) Contains(name string) bool {
	n, ok := g.controls[name]
	return ok && n.Enabled()
}

// Keys returns child names in registration order.
func (g *Group) Keys() []string { return slices.Clone(g.keys) }

// Controls returns the children keyed by name.
func (g *Group) Controls() map[string]Node {
	out := make(map[string]Node, len(g.controls))
	for k, v := range g.controls {
		out[k] = v
	}
	return out
}

// AddControl registers n under name (replacing nothing if the name exists)
// and recomputes validity.
func (g *Group) AddControl(name string, n Node, opts ...Opts) {
	if g.Has(name) {
		return
	}
	g.register(name, n)
	g.UpdateValueAndValidity(opts...)
}

// RemoveControl unregisters the child named name.
func (g *Group) RemoveControl(name string, opts ...Opts) {
	n, ok := g.controls[name]
	if !ok {
		return
	}
	n.setParent(nil)
	delete(g.controls, name)
	g.keys = slices.DeleteFunc(g.keys, func(k string) bool { return k == name })
	g.UpdateValueAndValidity(opts...)
}

// RawValue returns every child's raw value, disabled ones included.
func (g *Group) RawValue() any {
	out := make(map[string]any, len(g.keys))
	for _, k := range g.keys {
		out[k] = g.controls[k].RawValue()
	}
	return out
}

// SetValue writes a value to every child. v must provide exactly the
// group's keys.
func (g *Group) SetValue(v any, opts ...Opts) error {
	o := pick(opts)
	m, ok := asMap(v)
	if !ok {
		return &ShapeError{Reason: fmt.Sprintf("expected an object, got %T", v)}
	}
	for _, k := range g.keys {
		if _, present := m[k]; !present {
			return &ShapeError{Path: k, Reason: "missing value for control"}
		}
	}
	for k := range m {
		if !g.Has(k) {
			return &ShapeError{Path: k, Reason: "no control registered"}
		}
	}
	for _, k := range g.keys {
		if err := g.controls[k].SetValue(m[k], Opts{OnlySelf: true, NoEmit: o.NoEmit}); err != nil {
			return prefixShape(err, k)
		}
	}
	g.UpdateValueAndValidity(o)
	return nil
}

// PatchValue writes the keys of v that match a child; other keys are
// ignored. A nil v is a no-op.
func (g *Group) PatchValue(v any, opts ...Opts) {
	o := pick(opts)
	m, ok := asMap(v)
	if !ok {
		return
	}
	for _, k := range g.keys {
		if item, present := m[k]; present {
			g.controls[k].PatchValue(item, Opts{OnlySelf: true, NoEmit: o.NoEmit})
		}
	}
	g.UpdateValueAndValidity(o)
}

// Reset resets every child with the matching entry of v (nil when absent).
func (g *Group) Reset(v any, opts ...Opts) {
	o := pick(opts)
	m, _ := asMap(v)
	for _, k := range g.keys {
		g.controls[k].Reset(m[k], Opts{OnlySelf: true, NoEmit: o.NoEmit})
	}
	g.updatePristine(o)
	g.updateTouched(o)
	g.UpdateValueAndValidity(o)
}

func (g *Group) children() []Node {
	out := make([]Node, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, g.controls[k])
	}
	return out
}

func (g *Group) calcValue() any {
	out := make(map[string]any, len(g.keys))
	for _, k := range g.keys {
		c := g.controls[k]
		if c.Enabled() || g.Disabled() {
			out[k] = c.Value()
		}
	}
	return out
}

func (g *Group) allDisabled() bool {
	for _, c := range g.controls {
		if c.Enabled() {
			return false
		}
	}
	return len(g.controls) > 0 || g.Disabled()
}

// asMap accepts map[string]any or any map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
