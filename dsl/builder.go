package dsl

import (
	"fmt"
	"regexp"

	"github.com/reoring/goform"
	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rules"
	"github.com/reoring/goform/rx"
	"github.com/reoring/goform/selectmodel"
	v "github.com/reoring/goform/validators"
)

type formBuilder struct {
	fields []*fieldDef
	index  map[string]*fieldDef
	errs   []error
}

type fieldDef struct {
	field    goform.Field
	checks   []*control.Validator
	warnings []*control.Validator
	disable  []goform.FieldCondition
	joinAll  bool
	elements SchemaSource
	group    SchemaSource
}

// SchemaSource is anything that assembles a schema: a builder, a step of
// one, or a fixed schema wrapped with Static.
type SchemaSource interface {
	Schema() (goform.Schema, error)
}

type static goform.Schema

func (s static) Schema() (goform.Schema, error) { return goform.Schema(s), nil }

// Static wraps an already assembled schema.
func Static(s goform.Schema) SchemaSource { return static(s) }

type fieldStep struct {
	b *formBuilder
	d *fieldDef
}

// Form creates an empty form builder.
func Form() *formBuilder {
	return &formBuilder{index: map[string]*fieldDef{}}
}

// Field registers a field and returns a step to configure it. Registering a
// name twice returns the existing step.
func (b *formBuilder) Field(name string) *fieldStep {
	if d, ok := b.index[name]; ok {
		return &fieldStep{b: b, d: d}
	}
	d := &fieldDef{field: goform.Field{Name: name}}
	b.fields = append(b.fields, d)
	b.index[name] = d
	return &fieldStep{b: b, d: d}
}

// Schema assembles the declared fields.
func (b *formBuilder) Schema() (goform.Schema, error) {
	if len(b.errs) > 0 {
		return goform.Schema{}, b.errs[0]
	}
	s := goform.Schema{Fields: make([]goform.Field, 0, len(b.fields))}
	for _, d := range b.fields {
		fd, err := d.build()
		if err != nil {
			return goform.Schema{}, err
		}
		s.Fields = append(s.Fields, fd)
	}
	return s, nil
}

// Build assembles the schema and constructs the form.
func (b *formBuilder) Build(opts ...goform.Option) (*goform.Form, error) {
	s, err := b.Schema()
	if err != nil {
		return nil, err
	}
	return goform.New(s, opts...)
}

// MustBuild is like Build but panics on error.
func (b *formBuilder) MustBuild(opts ...goform.Option) *goform.Form {
	f, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (d *fieldDef) build() (goform.Field, error) {
	fd := d.field
	var all []*control.Validator
	if fd.Validator != nil {
		all = append(all, fd.Validator)
	}
	all = append(all, d.checks...)
	for _, w := range d.warnings {
		all = append(all, v.Warning(w, nil))
	}
	switch len(all) {
	case 0:
	case 1:
		fd.Validator = all[0]
	default:
		fd.Validator = v.Compose(all...)
	}

	if len(d.disable) > 0 {
		join := goform.AnyTrue
		if d.joinAll {
			join = goform.AllTrue
		}
		fd.DisabledWhen = goform.DisabledWhenFields(join, d.disable...)
	}

	if d.elements != nil {
		sub, err := d.elements.Schema()
		if err != nil {
			return goform.Field{}, fmt.Errorf("dsl: field %q elements: %w", fd.Name, err)
		}
		fd.ElementSchema = func() goform.Schema { return sub }
	}
	if d.group != nil {
		sub, err := d.group.Schema()
		if err != nil {
			return goform.Field{}, fmt.Errorf("dsl: field %q group: %w", fd.Name, err)
		}
		fd.Group = &sub
	}
	return fd, nil
}

// ---- field configuration ----

// Initial sets the initial value.
func (s *fieldStep) Initial(x any) *fieldStep {
	s.d.field.Initial = x
	return s
}

// Validate adds validators; every validator added to a field is composed.
func (s *fieldStep) Validate(vs ...*control.Validator) *fieldStep {
	s.d.checks = append(s.d.checks, vs...)
	return s
}

// Warn adds validators whose failures are reported as warnings.
func (s *fieldStep) Warn(vs ...*control.Validator) *fieldStep {
	s.d.warnings = append(s.d.warnings, vs...)
	return s
}

// Async sets the asynchronous validator.
func (s *fieldStep) Async(fn control.AsyncValidatorFunc) *fieldStep {
	s.d.field.AsyncValidator = fn
	return s
}

func (s *fieldStep) Required() *fieldStep       { return s.Validate(v.Required) }
func (s *fieldStep) MinLength(n int) *fieldStep { return s.Validate(v.MinLength(n)) }
func (s *fieldStep) MaxLength(n int) *fieldStep { return s.Validate(v.MaxLength(n)) }
func (s *fieldStep) Min(n float64) *fieldStep   { return s.Validate(v.Min(n)) }
func (s *fieldStep) Max(n float64) *fieldStep   { return s.Validate(v.Max(n)) }
func (s *fieldStep) Email() *fieldStep          { return s.Validate(v.Email) }
func (s *fieldStep) Numeric() *fieldStep        { return s.Validate(v.Numeric) }
func (s *fieldStep) Tag(tag string) *fieldStep  { return s.Validate(v.Tag(tag)) }
func (s *fieldStep) Pattern(expr string) *fieldStep {
	re, err := regexp.Compile(anchor(expr))
	if err != nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("dsl: field %q: pattern: %w", s.d.field.Name, err))
		return s
	}
	return s.Validate(v.PatternRegexp(re))
}

// RequiredIf requires a value while the sibling field compares to want
// under op.
func (s *fieldStep) RequiredIf(field string, op rules.Op, want any) *fieldStep {
	return s.Validate(v.RequiredIf(field, op, want))
}

// RequiredWhen requires a value while cond holds, reporting message.
func (s *fieldStep) RequiredWhen(cond rules.Condition, message string) *fieldStep {
	return s.Validate(v.RequiredWhen(cond, message))
}

// Options attaches a select model.
func (s *fieldStep) Options(opts ...selectmodel.Option) *fieldStep {
	s.d.field.Options = append(s.d.field.Options, opts...)
	return s
}

// Multiple allows several selected options.
func (s *fieldStep) Multiple() *fieldStep {
	s.d.field.Multiple = true
	return s
}

// DisabledWhen disables the field while the sibling compares to want under
// op. Several conditions disable it when any holds, or all with AllConditions.
func (s *fieldStep) DisabledWhen(field string, op rules.Op, want any) *fieldStep {
	s.d.disable = append(s.d.disable, goform.FieldCondition{
		Field: field,
		Test:  func(x any) bool { return rules.Compare(x, op, want) },
	})
	return s
}

// AllConditions requires every DisabledWhen condition to hold.
func (s *fieldStep) AllConditions() *fieldStep {
	s.d.joinAll = true
	return s
}

// DisabledBy disables the field while stream's latest value is true.
func (s *fieldStep) DisabledBy(stream rx.Observable[bool]) *fieldStep {
	s.d.field.DisabledWhen = goform.DisabledBy(stream)
	return s
}

// Array makes the field an array of plain leaf elements.
func (s *fieldStep) Array() *fieldStep {
	s.d.field.Array = true
	return s
}

// Elements makes the field an array whose elements are forms built from
// sub.
func (s *fieldStep) Elements(sub SchemaSource) *fieldStep {
	s.d.elements = sub
	s.d.field.Array = true
	return s
}

// ElementControl makes the field an array whose elements are built by fn.
func (s *fieldStep) ElementControl(fn func() control.Node) *fieldStep {
	s.d.field.ElementControl = fn
	return s
}

// Group makes the field a nested form built from sub.
func (s *fieldStep) Group(sub SchemaSource) *fieldStep {
	s.d.group = sub
	return s
}

// Chaining back to the builder.

func (s *fieldStep) Field(name string) *fieldStep                      { return s.b.Field(name) }
func (s *fieldStep) Schema() (goform.Schema, error)                    { return s.b.Schema() }
func (s *fieldStep) Build(opts ...goform.Option) (*goform.Form, error) { return s.b.Build(opts...) }
func (s *fieldStep) MustBuild(opts ...goform.Option) *goform.Form      { return s.b.MustBuild(opts...) }

func anchor(expr string) string {
	if len(expr) == 0 || expr[0] != '^' {
		expr = "^" + expr
	}
	if expr[len(expr)-1] != '$' {
		expr += "$"
	}
	return expr
}
