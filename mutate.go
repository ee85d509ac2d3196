package goform

import (
	"github.com/zoobzio/capitan"

	"github.com/reoring/goform/control"
)

// PatchValues writes the fields present in values; other fields keep their
// value. Array fields present in values are first grown or shrunk to the
// length of the incoming slice. With NoEmit set, select models are synced
// directly since no change notification reaches them.
//
// PatchValues panics when an element schema cannot be built, which New
// rules out for schemas it accepted.
func (f *Form) PatchValues(values map[string]any, opts ...control.Opts) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	f.patch(values, opts...)
}

func (f *Form) patch(values map[string]any, opts ...control.Opts) {
	if err := f.alignArrays(values); err != nil {
		panic(err)
	}
	o := control.Opts{}
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	f.root.PatchValue(values, o)
	if o.NoEmit {
		for _, k := range f.keys {
			if v, ok := values[k]; ok {
				f.syncSelect(k, v)
			}
		}
	}
}

// SetValues replaces every field value. values must name exactly the
// form's fields; a mismatch is reported as a *control.ShapeError.
func (f *Form) SetValues(values map[string]any) error {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if err := f.alignArrays(values); err != nil {
		return err
	}
	return f.root.SetValue(values)
}

// Reset writes values (nil for fields it does not name) and marks every
// node pristine and untouched.
func (f *Form) Reset(values map[string]any) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if err := f.reset(values); err != nil {
		panic(err)
	}
}

func (f *Form) reset(values map[string]any) error {
	if values != nil {
		if err := f.alignArrays(values); err != nil {
			return err
		}
	}
	f.root.Reset(values)
	return nil
}

// ResetInitialValue resets the form to the schema's initial values.
func (f *Form) ResetInitialValue() {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if err := f.reset(f.InitialValues()); err != nil {
		panic(err)
	}
}

// alignArrays makes the element count of every array field named in values
// match the length of its incoming slice. Nested forms align their own
// arrays.
func (f *Form) alignArrays(values map[string]any) error {
	for _, k := range f.keys {
		v, present := values[k]
		if !present {
			continue
		}
		fd := f.fields[k]
		if sub := f.nested[k]; sub != nil {
			if m, ok := control.AsMap(v); ok {
				if err := sub.alignArrays(m); err != nil {
					return err
				}
			}
			continue
		}
		arr, ok := f.nodes[k].(*control.Array)
		if !ok {
			continue
		}
		items, ok := control.AsSlice(v)
		if !ok {
			continue
		}
		from := arr.Len()
		for i := 0; i < min(from, len(items)); i++ {
			if sub := OwnerOf(arr.At(i)); sub != nil {
				if m, ok := control.AsMap(items[i]); ok {
					if err := sub.alignArrays(m); err != nil {
						return err
					}
				}
			}
		}
		for i := from; i < len(items); i++ {
			el, err := f.buildElement(fd, items[i])
			if err != nil {
				return err
			}
			arr.Push(el, control.Opts{NoEmit: true})
		}
		for arr.Len() > len(items) {
			last := arr.Len() - 1
			if sub := OwnerOf(arr.At(last)); sub != nil {
				sub.release()
			}
			arr.RemoveAt(last, control.Opts{NoEmit: true})
		}
		if arr.Len() != from {
			capitan.Emit(f.t.ctx, ArrayRealigned,
				KeyField.Field(k),
				KeyFrom.Field(from),
				KeyTo.Field(arr.Len()),
			)
		}
	}
	return nil
}

// Revalidate recomputes the validity of every field, then of the root. Use
// it when state read by a Conditional predicate changes.
func (f *Form) Revalidate() {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	f.revalidate()
}

func (f *Form) revalidate() {
	for _, k := range f.keys {
		f.nodes[k].UpdateValueAndValidity(control.Opts{OnlySelf: true})
	}
	f.root.UpdateValueAndValidity()
}

// MarkAsDirty marks fields dirty and touched (only invalid ones when
// onlyInvalid is set) and revalidates them. The elements of an array field
// are marked as well, but not the children of those elements.
func (f *Form) MarkAsDirty(onlyInvalid bool) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	marked := false
	for _, k := range f.keys {
		n := f.nodes[k]
		if onlyInvalid && !n.Invalid() {
			continue
		}
		if arr, ok := n.(*control.Array); ok {
			for _, el := range arr.Controls() {
				touch(el)
				el.UpdateValueAndValidity(control.Opts{OnlySelf: true, NoEmit: true})
			}
		}
		touch(n)
		n.UpdateValueAndValidity()
		marked = true
	}
	if marked {
		touch(f.root)
	}
}

// MarkAsDirtyRecursive is MarkAsDirty applied to every descendant of every
// field.
func (f *Form) MarkAsDirtyRecursive(onlyInvalid bool) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	queue := make([]control.Node, 0, len(f.keys))
	for _, k := range f.keys {
		queue = append(queue, f.nodes[k])
	}
	marked := false
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if onlyInvalid && !n.Invalid() {
			continue
		}
		for _, c := range control.Children(n) {
			touch(c)
			c.UpdateValueAndValidity(control.Opts{OnlySelf: true, NoEmit: true})
			queue = append(queue, c)
		}
		touch(n)
		n.UpdateValueAndValidity()
		marked = true
	}
	if marked {
		touch(f.root)
	}
}

func touch(n control.Node) {
	n.MarkAsDirty(control.Opts{OnlySelf: true})
	n.MarkAsTouched(control.Opts{OnlySelf: true})
}

// RestorePristineState marks every field pristine and untouched and
// revalidates it.
func (f *Form) RestorePristineState() {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	for _, k := range f.keys {
		n := f.nodes[k]
		n.MarkAsPristine(control.Opts{OnlySelf: true})
		n.MarkAsUntouched(control.Opts{OnlySelf: true})
		n.UpdateValueAndValidity()
	}
	f.root.MarkAsPristine(control.Opts{OnlySelf: true})
	f.root.MarkAsUntouched(control.Opts{OnlySelf: true})
}
