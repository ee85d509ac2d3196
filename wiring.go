package goform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zoobzio/capitan"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rx"
)

// validateSchema rejects schemas the builder cannot wire. Element and
// nested schemas are checked recursively.
func validateSchema(s Schema, path string) error {
	seen := map[string]struct{}{}
	for _, fd := range s.Fields {
		if fd.Name == "" {
			return fmt.Errorf("goform: %sfield without a name", path)
		}
		if _, dup := seen[fd.Name]; dup {
			return fmt.Errorf("goform: %sduplicate field %q", path, fd.Name)
		}
		seen[fd.Name] = struct{}{}
	}
	for _, fd := range s.Fields {
		where := path + fd.Name
		if fd.ElementSchema != nil && fd.ElementControl != nil {
			return fmt.Errorf("goform: field %q: ElementSchema and ElementControl are exclusive", where)
		}
		if fd.Group != nil && fd.IsArray() {
			return fmt.Errorf("goform: field %q: a nested group cannot be an array", where)
		}
		if r := fd.DisabledWhen; r != nil {
			if r.Stream == nil && len(r.Conditions) == 0 {
				return fmt.Errorf("goform: field %q: empty disable rule", where)
			}
			for _, c := range r.Conditions {
				if _, ok := seen[c.Field]; !ok {
					return fmt.Errorf("goform: field %q: disable rule: %w", where, &UnknownFieldError{Field: c.Field})
				}
			}
		}
		for _, dep := range fd.Validator.Dependencies() {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("goform: field %q: validator dependency: %w", where, &UnknownFieldError{Field: dep})
			}
		}
		if fd.ElementSchema != nil {
			if err := validateSchema(fd.ElementSchema(), where+"/*/"); err != nil {
				return err
			}
		}
		if fd.Group != nil {
			if err := validateSchema(*fd.Group, where+"/"); err != nil {
				return err
			}
		}
	}
	return nil
}

// external wraps a caller-owned stream so that values it pushes later, from
// any goroutine, are applied under the tree mutex. Values pushed while the
// subscription is being set up are queued and delivered before Subscribe
// returns: the wiring code already owns the tree at that point. Values
// arriving after the form is released are dropped.
func (f *Form) external(src rx.Observable[bool]) rx.Observable[bool] {
	return guarded(f, src)
}

func guarded[T any](f *Form, src rx.Observable[T]) rx.Observable[T] {
	return rx.ObservableFunc[T](func(next func(T)) rx.Subscription {
		var (
			mu     sync.Mutex
			wiring = true
			queued []T
		)
		sub := src.Subscribe(func(v T) {
			mu.Lock()
			if wiring {
				queued = append(queued, v)
				mu.Unlock()
				return
			}
			mu.Unlock()

			f.t.mu.Lock()
			defer f.t.mu.Unlock()
			if !f.released {
				next(v)
			}
		})
		mu.Lock()
		wiring = false
		early := queued
		queued = nil
		mu.Unlock()
		for _, v := range early {
			next(v)
		}
		return sub
	})
}

// async wraps fn so that the results of the checks it starts are applied
// under the tree mutex, like the streams passed through external.
func (f *Form) async(fn control.AsyncValidatorFunc) control.AsyncValidatorFunc {
	if fn == nil {
		return nil
	}
	return func(n control.Node) rx.Observable[control.Errors] {
		src := fn(n)
		if src == nil {
			return nil
		}
		return guarded(f, src)
	}
}

// wireDisable combines the form-wide disable stream with the field's own
// rule and enables or disables the field on every combined value. Every
// stream starts with its current value, so fields settle immediately
// whatever order the schema declares them in.
func (f *Form) wireDisable(key string) error {
	node := f.nodes[key]
	rule := f.fields[key].DisabledWhen

	formWide := f.cfg.disabled
	if formWide == nil {
		formWide = rx.Of(false)
	} else {
		formWide = f.external(formWide)
	}
	streams := []rx.Observable[bool]{rx.DistinctUntilChanged(formWide)}

	if rule != nil {
		if rule.Stream != nil {
			streams = append(streams, f.external(rule.Stream))
		}
		for _, c := range rule.Conditions {
			src, ok := f.nodes[c.Field]
			if !ok {
				return &UnknownFieldError{Field: c.Field}
			}
			test := c.Test
			if test == nil {
				test = truthy
			}
			streams = append(streams, rx.DistinctUntilChanged(
				rx.Map(rx.StartWith(src.ValueChanges(), src.Value()), test),
			))
		}
	}
	join := rule.join()

	f.subs.Add(rx.CombineLatest(streams...).Subscribe(func(vals []bool) {
		own := vals[1:]
		off := vals[0] || (len(own) > 0 && join(own))
		was := f.off[key]
		f.off[key] = off
		switch {
		case off && !was:
			node.Disable()
			capitan.Emit(f.t.ctx, FieldDisabled, KeyField.Field(key))
		case !off && was:
			node.Enable()
			f.reapplyDisabled(node)
			capitan.Emit(f.t.ctx, FieldEnabled, KeyField.Field(key))
		}
	}))
	return nil
}

// reapplyDisabled disables again the fields of forms below n whose rules
// still hold. Enabling a node enables all of its descendants.
func (f *Form) reapplyDisabled(n control.Node) {
	var forms []*Form
	if sub := OwnerOf(n); sub != nil && sub != f {
		forms = append(forms, sub)
	}
	if arr, ok := n.(*control.Array); ok {
		for _, el := range arr.Controls() {
			if sub := OwnerOf(el); sub != nil {
				forms = append(forms, sub)
			}
		}
	}
	for _, sub := range forms {
		for _, k := range sub.keys {
			child := sub.nodes[k]
			if sub.off[k] {
				child.Disable()
				continue
			}
			sub.reapplyDisabled(child)
		}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	return true
}

// markDependents makes every field in keys revalidate when a field its
// validator depends on changes.
func (f *Form) markDependents(keys []string) error {
	for _, k := range keys {
		for _, dep := range f.nodes[k].Validator().Dependencies() {
			if err := f.dependOn(dep, k, f.cfg.dirtyDependent); err != nil {
				return fmt.Errorf("goform: field %q: %w", k, err)
			}
		}
	}
	return nil
}

// MarkAsDependent revalidates target, and marks it dirty when markDirty is
// set, whenever the value of source changes. Revalidation is queued and
// settles after the debounce period or on Flush.
func (f *Form) MarkAsDependent(source, target string, markDirty bool) error {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.dependOn(source, target, markDirty)
}

func (f *Form) dependOn(source, target string, markDirty bool) error {
	src, ok := f.nodes[source]
	if !ok {
		return &UnknownFieldError{Field: source}
	}
	if _, ok := f.nodes[target]; !ok {
		return &UnknownFieldError{Field: target}
	}
	skip := true
	changes := rx.DistinctUntilChanged(rx.StartWith(src.ValueChanges(), src.Value()))
	f.subs.Add(changes.Subscribe(func(any) {
		if skip {
			skip = false
			return
		}
		capitan.Emit(f.t.ctx, DependencyScheduled,
			KeyField.Field(source),
			KeyTarget.Field(target),
		)
		f.t.sched.schedule(f, target, markDirty)
	}))
	return nil
}

// revalidateDependent runs one queued revalidation. It reports false when
// the form was released in the meantime.
func (f *Form) revalidateDependent(target string, markDirty bool) bool {
	if f.released {
		return false
	}
	n := f.nodes[target]
	n.UpdateValueAndValidity()
	if markDirty {
		n.MarkAsDirty()
	}
	return true
}

// UpdateValidators attaches validators to fields that have none. Nothing is
// applied when a field is unknown or already has the kind of validator
// being attached. With fire set every field is revalidated afterwards.
func (f *Form) UpdateValidators(defs map[string]ValidatorSet, fire bool) error {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()

	var updated []string
	for _, k := range f.keys {
		if _, ok := defs[k]; ok {
			updated = append(updated, k)
		}
	}
	if len(updated) != len(defs) {
		for k := range defs {
			if _, ok := f.nodes[k]; !ok {
				return &UnknownFieldError{Field: k}
			}
		}
	}

	var errs []error
	for _, k := range updated {
		def, n := defs[k], f.nodes[k]
		if def.Validator != nil && n.Validator() != nil {
			errs = append(errs, &ValidatorConflictError{Field: k})
		}
		if def.AsyncValidator != nil && n.AsyncValidator() != nil {
			errs = append(errs, &ValidatorConflictError{Field: k, Async: true})
		}
		for _, dep := range def.Validator.Dependencies() {
			if _, ok := f.nodes[dep]; !ok {
				errs = append(errs, fmt.Errorf("goform: field %q: %w", k, &UnknownFieldError{Field: dep}))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, k := range updated {
		def, n := defs[k], f.nodes[k]
		if def.Validator != nil {
			n.SetValidator(def.Validator)
		}
		if def.AsyncValidator != nil {
			n.SetAsyncValidator(f.async(def.AsyncValidator))
		}
	}
	if f.cfg.autoDependents {
		if err := f.markDependents(withValidator(updated, defs)); err != nil {
			return err
		}
	}
	capitan.Emit(f.t.ctx, ValidatorsUpdated,
		KeyCount.Field(len(updated)),
	)
	if fire {
		f.revalidate()
	}
	return nil
}

func withValidator(keys []string, defs map[string]ValidatorSet) []string {
	var out []string
	for _, k := range keys {
		if defs[k].Validator != nil {
			out = append(out, k)
		}
	}
	return out
}
