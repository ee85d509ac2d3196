package goform

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zoobzio/capitan"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rx"
	"github.com/reoring/goform/selectmodel"
)

// tree is the state shared by a form and every form nested in it.
type tree struct {
	mu     sync.Mutex
	ctx    context.Context
	sched  *scheduler
	closed bool
}

// Form is a control tree built from a Schema. It owns the root group, one
// node per field, the select models and the subscriptions that keep
// disable rules and dependent validators live.
//
// Form methods are safe for concurrent use. Nodes reached through Group or
// Control must only be touched inside Do, or from the goroutine that owns
// the form exclusively.
//
// Streams handed to the form (disable streams, async validator results)
// may emit from any goroutine; their values are applied under the form's
// lock, so they must not emit from inside Do.
type Form struct {
	t      *tree
	cfg    config
	parent *Form

	schema  Schema
	keys    []string
	fields  map[string]Field
	nodes   map[string]control.Node
	nested  map[string]*Form
	selects map[string]*selectmodel.Manager
	root    *control.Group
	off     map[string]bool // fields a disable rule currently turns off

	subs     *rx.Composite
	released bool
}

var _ control.Owner = (*Form)(nil)

// New builds the control tree for schema and wires its select models,
// disable rules and dependent validators.
func New(schema Schema, opts ...Option) (*Form, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateSchema(schema, ""); err != nil {
		return nil, err
	}
	t := &tree{ctx: cfg.ctx}
	t.sched = newScheduler(t, cfg.clock, cfg.debounce)

	f, err := build(schema, cfg, t, nil)
	if err != nil {
		return nil, err
	}
	capitan.Emit(cfg.ctx, FormCreated,
		KeyCount.Field(len(f.keys)),
		KeyDebounce.Field(cfg.debounce),
	)
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(schema Schema, opts ...Option) *Form {
	f, err := New(schema, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func build(schema Schema, cfg config, t *tree, parent *Form) (*Form, error) {
	f := &Form{
		t:       t,
		cfg:     cfg,
		parent:  parent,
		schema:  schema,
		fields:  make(map[string]Field, len(schema.Fields)),
		nodes:   make(map[string]control.Node, len(schema.Fields)),
		nested:  map[string]*Form{},
		selects: map[string]*selectmodel.Manager{},
		off:     map[string]bool{},
		subs:    &rx.Composite{},
	}
	for _, fd := range schema.Fields {
		n, err := f.buildField(fd)
		if err != nil {
			return nil, fmt.Errorf("goform: field %q: %w", fd.Name, err)
		}
		f.keys = append(f.keys, fd.Name)
		f.fields[fd.Name] = fd
		f.nodes[fd.Name] = n
	}

	f.root = control.NewGroup(f.keys, f.nodes, f.groupValidator(), nil)
	f.root.SetAsyncValidator(f.groupAsyncValidator())
	f.root.SetOwner(f)
	for _, k := range f.keys {
		if _, isNested := f.nested[k]; !isNested {
			f.nodes[k].SetOwner(f)
		}
	}
	// Validators reading siblings saw no owner while the nodes were built.
	for _, k := range f.keys {
		f.nodes[k].UpdateValueAndValidity(control.Opts{OnlySelf: true, NoEmit: true})
	}
	f.root.UpdateValueAndValidity(control.Opts{OnlySelf: true, NoEmit: true})

	if err := f.wireSelects(); err != nil {
		return nil, err
	}
	for _, k := range f.keys {
		if err := f.wireDisable(k); err != nil {
			return nil, err
		}
	}
	if cfg.autoDependents {
		if err := f.markDependents(f.keys); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// childConfig is the configuration of forms built for nested groups and
// array elements.
func (f *Form) childConfig() config {
	c := defaultConfig()
	c.autoDependents = f.cfg.autoDependents
	c.dirtyDependent = f.cfg.dirtyDependent
	c.debounce = f.cfg.debounce
	c.clock = f.cfg.clock
	c.ctx = f.cfg.ctx
	return c
}

func (f *Form) child(schema Schema) (*Form, error) {
	return build(schema, f.childConfig(), f.t, f)
}

func (f *Form) buildField(fd Field) (control.Node, error) {
	switch {
	case fd.Group != nil:
		sub, err := f.child(*fd.Group)
		if err != nil {
			return nil, err
		}
		f.nested[fd.Name] = sub
		return sub.root, nil

	case fd.IsArray():
		items, ok := control.AsSlice(fd.Initial)
		if !ok && fd.Initial != nil {
			return nil, fmt.Errorf("initial value of array field must be a slice, got %T", fd.Initial)
		}
		elements := make([]control.Node, 0, len(items))
		for _, item := range items {
			el, err := f.buildElement(fd, item)
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}
		arr := control.NewArray(elements, fd.Validator, nil)
		arr.SetAsyncValidator(f.async(fd.AsyncValidator))
		return arr, nil

	default:
		// The async check is attached after the first validity pass; build
		// runs it once the owner is set.
		c := control.NewControl(fd.Initial, fd.Validator, nil)
		c.SetAsyncValidator(f.async(fd.AsyncValidator))
		return c, nil
	}
}

// buildElement builds one array element seeded with item.
func (f *Form) buildElement(fd Field, item any) (control.Node, error) {
	switch {
	case fd.ElementSchema != nil:
		sub, err := f.child(fd.ElementSchema())
		if err != nil {
			return nil, err
		}
		m, _ := control.AsMap(item)
		if err := sub.reset(m); err != nil {
			return nil, err
		}
		return sub.root, nil

	case fd.ElementControl != nil:
		if n := fd.ElementControl(); n != nil {
			n.SetAsyncValidator(f.async(n.AsyncValidator()))
			n.Reset(item)
			return n, nil
		}
	}
	return control.NewControl(item, nil, nil), nil
}

func (f *Form) groupValidator() *control.Validator {
	fn := f.cfg.groupValidator
	if fn == nil {
		return nil
	}
	return control.NewValidator(func(n control.Node) control.Errors {
		g, _ := n.(*control.Group)
		return fn(g)
	})
}

func (f *Form) groupAsyncValidator() control.AsyncValidatorFunc {
	fn := f.cfg.groupAsync
	if fn == nil {
		return nil
	}
	return f.async(func(n control.Node) rx.Observable[control.Errors] {
		g, _ := n.(*control.Group)
		return fn(g)
	})
}

func (f *Form) wireSelects() error {
	for _, k := range f.keys {
		fd := f.fields[k]
		if fd.Options == nil {
			continue
		}
		m := selectmodel.New(fd.Multiple)
		m.SetValues(fd.Options)
		f.selects[k] = m

		name := k
		f.subs.Add(f.nodes[k].ValueChanges().Subscribe(func(v any) {
			f.syncSelect(name, v)
		}))
		if fd.Initial != nil {
			if err := m.SetSelected(fd.Initial); err != nil {
				return fmt.Errorf("goform: field %q: %w", k, err)
			}
		}
	}
	return nil
}

func (f *Form) syncSelect(name string, v any) {
	m := f.selects[name]
	if m == nil {
		return
	}
	if err := m.SetSelected(v); err != nil {
		capitan.Emit(f.t.ctx, SelectSyncFailed,
			KeyField.Field(name),
			KeyError.Field(err.Error()),
		)
	}
}

// Lookup returns the node of the field called name. It does not lock and is
// meant for validators running inside the form.
func (f *Form) Lookup(name string) (control.Node, bool) {
	n, ok := f.nodes[name]
	return n, ok
}

// OwnerOf returns the form whose root group is n, or nil.
func OwnerOf(n control.Node) *Form {
	if n == nil {
		return nil
	}
	f, ok := n.Owner().(*Form)
	if !ok || f == nil || control.Node(f.root) != n {
		return nil
	}
	return f
}

// EnclosingForm returns the nearest form n belongs to, walking up through
// its ancestors, or nil.
func EnclosingForm(n control.Node) *Form {
	if n == nil {
		return nil
	}
	f, _ := control.EnclosingOwner(n).(*Form)
	return f
}

// ---- reads ----

// Group returns the root group.
func (f *Form) Group() *control.Group { return f.root }

// Keys returns the field names in schema order.
func (f *Form) Keys() []string { return slices.Clone(f.keys) }

// Schema returns the schema the form was built from.
func (f *Form) Schema() Schema { return f.schema }

// Values returns the field values. Disabled fields are left out unless
// includeDisabled is set.
func (f *Form) Values(includeDisabled bool) map[string]any {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.values(includeDisabled)
}

func (f *Form) values(includeDisabled bool) map[string]any {
	var v any
	if includeDisabled {
		v = f.root.RawValue()
	} else {
		v = f.root.Value()
	}
	m, _ := v.(map[string]any)
	return maps.Clone(m)
}

// Value returns the value of field key, or nil for an unknown field.
func (f *Form) Value(key string) any {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if n, ok := f.nodes[key]; ok {
		return n.Value()
	}
	return nil
}

// Control returns the node of field key, or nil.
func (f *Form) Control(key string) control.Node {
	return f.nodes[key]
}

// HasControl reports whether the form has a field called key.
func (f *Form) HasControl(key string) bool {
	_, ok := f.nodes[key]
	return ok
}

// Valid reports whether the root group is valid.
func (f *Form) Valid() bool {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.root.Valid()
}

// Status returns the status of the root group.
func (f *Form) Status() control.Status {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.root.Status()
}

// Dirty reports whether any field was marked dirty.
func (f *Form) Dirty() bool {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.root.Dirty()
}

// SelectModel returns the select model of field key, or nil.
func (f *Form) SelectModel(key string) *selectmodel.Manager {
	return f.selects[key]
}

// SelectValues returns the options of field key, or nil when it has no
// select model.
func (f *Form) SelectValues(key string) []selectmodel.Option {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if m := f.selects[key]; m != nil {
		return m.Values()
	}
	return nil
}

// SelectValue returns the selected option of single-select field key.
func (f *Form) SelectValue(key string) (selectmodel.Option, bool) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	if m := f.selects[key]; m != nil {
		return m.SelectedValue()
	}
	return selectmodel.Option{}, false
}

// InitialValues returns the initial values declared by the schema. Array
// fields are reported as []any.
func (f *Form) InitialValues() map[string]any {
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		fd := f.fields[k]
		switch {
		case fd.Group != nil:
			out[k] = f.nested[k].InitialValues()
		case fd.IsArray():
			items, _ := control.AsSlice(fd.Initial)
			if items == nil {
				items = []any{}
			}
			out[k] = slices.Clone(items)
		default:
			out[k] = fd.Initial
		}
	}
	return out
}

// Do runs fn with exclusive access to the node tree.
func (f *Form) Do(fn func(root *control.Group)) {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	fn(f.root)
}

// Flush settles every queued dependent revalidation now instead of waiting
// for the settle timer.
func (f *Form) Flush() {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	f.t.sched.settle()
}

// Pending reports how many dependent revalidations are queued.
func (f *Form) Pending() int {
	f.t.mu.Lock()
	defer f.t.mu.Unlock()
	return f.t.sched.pending()
}

// Close stops the settle timer and releases every subscription the form
// holds. Closing a nested form only releases that form.
func (f *Form) Close() {
	if f.parent != nil {
		f.t.mu.Lock()
		f.release()
		f.t.mu.Unlock()
		return
	}
	f.t.mu.Lock()
	if f.t.closed {
		f.t.mu.Unlock()
		return
	}
	f.t.closed = true
	f.t.sched.closed = true
	f.t.mu.Unlock()

	f.t.sched.stop()

	f.t.mu.Lock()
	f.release()
	f.t.mu.Unlock()
	capitan.Emit(f.t.ctx, FormClosed,
		KeyCount.Field(len(f.keys)),
	)
}

func (f *Form) release() {
	if f.released {
		return
	}
	f.released = true
	f.subs.Unsubscribe()
	for _, k := range f.keys {
		if sub := f.nested[k]; sub != nil {
			sub.release()
		}
		if arr, ok := f.nodes[k].(*control.Array); ok {
			for _, el := range arr.Controls() {
				if sub := OwnerOf(el); sub != nil {
					sub.release()
				}
			}
		}
	}
}
