// Package validators builds dependency-tagged validators and composes them.
//
// Every validator is a *control.Validator: a function plus the names of the
// sibling fields it reads. Composition operators union those names so a form
// can re-run the composed validator whenever one of the siblings changes.
package validators

import (
	"maps"

	"github.com/reoring/goform/control"
)

// Func wraps fn as a validator that reads no sibling fields.
func Func(fn control.ValidatorFunc) *control.Validator {
	return control.NewValidator(fn)
}

// Dependent tags fn with the sibling fields it reads.
func Dependent(fields []string, fn control.ValidatorFunc) *control.Validator {
	return control.NewValidator(fn, fields...)
}

// Sibling returns the current value of the field called name in the form
// that owns n. ok is false while n is not attached to a form or when no such
// field exists.
func Sibling(n control.Node, name string) (any, bool) {
	o := control.EnclosingOwner(n)
	if o == nil {
		return nil, false
	}
	f, ok := o.Lookup(name)
	if !ok || f == nil {
		return nil, false
	}
	return f.Value(), true
}

func depsOf(vs []*control.Validator) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.Dependencies()...)
	}
	return out
}

func merge(dst, src control.Errors) control.Errors {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = control.Errors{}
	}
	maps.Copy(dst, src)
	return dst
}

// Compose runs every validator and merges their errors. The result is nil
// only when all of them pass.
func Compose(vs ...*control.Validator) *control.Validator {
	return control.NewValidator(func(n control.Node) control.Errors {
		var out control.Errors
		for _, v := range vs {
			out = merge(out, v.Validate(n))
		}
		return out
	}, depsOf(vs)...)
}

// Or passes when any validator passes. When all fail the merged errors are
// returned. With no validators it always passes.
func Or(vs ...*control.Validator) *control.Validator {
	return control.NewValidator(func(n control.Node) control.Errors {
		var out control.Errors
		for _, v := range vs {
			errs := v.Validate(n)
			if len(errs) == 0 {
				return nil
			}
			out = merge(out, errs)
		}
		return out
	}, depsOf(vs)...)
}

// Transform maps the errors of a wrapped validator to the warnings stored on
// the node.
type Transform func(control.Errors) control.Warnings

// Identity stores errors as warnings unchanged.
func Identity(errs control.Errors) control.Warnings { return control.Warnings(errs) }

// Warning turns v into a warning producer: the returned validator always
// passes, and whenever v fails, transform(errors) is added to the node's
// warning store. A nil transform is Identity.
func Warning(v *control.Validator, transform Transform) *control.Validator {
	if transform == nil {
		transform = Identity
	}
	return control.NewValidator(func(n control.Node) control.Errors {
		if errs := v.Validate(n); len(errs) > 0 {
			n.AddWarning(transform(errs))
		}
		return nil
	}, v.Dependencies()...)
}

// Conditional runs v only while pred reports true. pred is not tracked as
// a dependency; call Form.Revalidate when the state it reads changes.
func Conditional(pred func() bool, v *control.Validator) *control.Validator {
	return control.NewValidator(func(n control.Node) control.Errors {
		if pred != nil && !pred() {
			return nil
		}
		return v.Validate(n)
	}, v.Dependencies()...)
}
