package goform

import (
	"slices"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rx"
	"github.com/reoring/goform/selectmodel"
)

// Schema declares the fields of a form in display order. A schema is read
// once by New; the form keeps it for InitialValues and ResetInitialValue.
type Schema struct {
	Fields []Field
}

// Field declares one entry of a form.
type Field struct {
	Name    string
	Initial any

	Validator      *control.Validator
	AsyncValidator control.AsyncValidatorFunc

	// Options attaches a select model seeded with these options. Multiple
	// allows several selected ids.
	Options  []selectmodel.Option
	Multiple bool

	DisabledWhen *DisableRule

	// Array makes the field an array node with one element per item of
	// Initial. ElementSchema or ElementControl (at most one) build the
	// element nodes; without either every element is a plain leaf control.
	// Setting either implies Array.
	Array          bool
	ElementSchema  func() Schema
	ElementControl func() control.Node

	// Group makes the field a nested group built from its own schema.
	// Initial is ignored; the nested schema's initial values apply.
	Group *Schema
}

// IsArray reports whether the field builds an array node.
func (f Field) IsArray() bool {
	return f.Array || f.ElementSchema != nil || f.ElementControl != nil
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (Field, bool) {
	i := slices.IndexFunc(s.Fields, func(f Field) bool { return f.Name == name })
	if i < 0 {
		return Field{}, false
	}
	return s.Fields[i], true
}

// DisableRule decides when a field is disabled. Either Stream is set, or
// Conditions (each reading one sibling) are joined by Join.
type DisableRule struct {
	Stream     rx.Observable[bool]
	Conditions []FieldCondition
	// Join combines the per-condition results. Nil means "any true".
	Join func([]bool) bool
}

// FieldCondition projects the value of the sibling Field to a bool.
type FieldCondition struct {
	Field string
	Test  func(v any) bool
}

// DisabledBy disables the field while stream's latest value is true.
func DisabledBy(stream rx.Observable[bool]) *DisableRule {
	return &DisableRule{Stream: stream}
}

// DisabledWhen disables the field while test holds for the value of the
// sibling field.
func DisabledWhen(field string, test func(v any) bool) *DisableRule {
	return &DisableRule{Conditions: []FieldCondition{{Field: field, Test: test}}}
}

// DisabledWhenFields disables the field while join over conds holds. A nil
// join is AnyTrue.
func DisabledWhenFields(join func([]bool) bool, conds ...FieldCondition) *DisableRule {
	return &DisableRule{Conditions: conds, Join: join}
}

// AnyTrue reports whether any value is true.
func AnyTrue(vs []bool) bool { return slices.Contains(vs, true) }

// AllTrue reports whether every value is true. It is false for no values.
func AllTrue(vs []bool) bool {
	return len(vs) > 0 && !slices.Contains(vs, false)
}

func (r *DisableRule) join() func([]bool) bool {
	if r == nil || r.Join == nil {
		return AnyTrue
	}
	return r.Join
}

// ValidatorSet is the validator pair UpdateValidators attaches to a field.
type ValidatorSet struct {
	Validator      *control.Validator
	AsyncValidator control.AsyncValidatorFunc
}
