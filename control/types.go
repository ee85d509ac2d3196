// Package control implements the stateful node tree forms are built from.
//
// Three concrete node kinds exist: Control (a leaf holding one value), Array
// (indexed children) and Group (named children). Every node tracks value,
// validity, dirty/touched state and exposes a ValueChanges stream. On top of
// the native error channel every node carries a warning store (see Warnable)
// which is cleared whenever the node recomputes its validity or is disabled.
package control

import (
	"fmt"
	"slices"

	"github.com/reoring/goform/rx"
)

// Status is the validation status of a node.
type Status int

const (
	StatusValid Status = iota
	StatusInvalid
	StatusPending
	StatusDisabled
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusInvalid:
		return "INVALID"
	case StatusPending:
		return "PENDING"
	case StatusDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// Errors maps a validation key (for example "required" or "minlength") to a
// payload describing the failure. A nil or empty Errors means valid.
type Errors map[string]any

// Has reports whether key is present.
func (e Errors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Warnings has the same shape as Errors but never affects validity.
type Warnings map[string]any

// Has reports whether key is present.
func (w Warnings) Has(key string) bool {
	_, ok := w[key]
	return ok
}

// Opts tunes propagation of a state change.
//
// OnlySelf stops the change from bubbling to the parent. NoEmit suppresses
// ValueChanges/StatusChanges notifications.
type Opts struct {
	OnlySelf bool
	NoEmit   bool
}

func pick(opts []Opts) Opts {
	if len(opts) == 0 {
		return Opts{}
	}
	return opts[len(opts)-1]
}

// ValidatorFunc inspects a node and returns the failures it finds.
type ValidatorFunc func(n Node) Errors

// Validator is a validator function together with the names of the sibling
// fields it reads. The dependency list lets a form re-run the validator when
// one of those siblings changes.
type Validator struct {
	fn   ValidatorFunc
	deps []string
}

// NewValidator wraps fn and tags it with deps (duplicates dropped, order kept).
func NewValidator(fn ValidatorFunc, deps ...string) *Validator {
	return &Validator{fn: fn, deps: uniq(deps)}
}

// Validate runs the validator. A nil validator reports no errors.
func (v *Validator) Validate(n Node) Errors {
	if v == nil || v.fn == nil {
		return nil
	}
	return v.fn(n)
}

// Dependencies returns the sibling field names the validator reads.
func (v *Validator) Dependencies() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.deps)
}

// Func returns the underlying function.
func (v *Validator) Func() ValidatorFunc {
	if v == nil {
		return nil
	}
	return v.fn
}

func uniq(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// AsyncValidatorFunc starts an asynchronous check of n. The node stays
// Pending until the returned stream emits; a new validity computation
// unsubscribes from the previous stream.
type AsyncValidatorFunc func(n Node) rx.Observable[Errors]

// Owner is the tree a node was built for. Validators use it to read sibling
// values without holding a reference to the tree themselves.
type Owner interface {
	// Lookup returns the field node registered under name.
	Lookup(name string) (Node, bool)
}

// Warnable is the warning channel every node carries next to its errors.
type Warnable interface {
	// AddWarning merges w into the store; keys of w replace existing keys.
	AddWarning(w Warnings)
	// SetWarning replaces the whole store.
	SetWarning(w Warnings)
	// ClearWarning empties the store.
	ClearWarning()
	// Warnings returns a copy of the store, or nil when it is empty.
	Warnings() Warnings
	// HasWarnings reports whether the store is non-empty.
	HasWarnings() bool
}

// Node is the capability set shared by Control, Array and Group.
type Node interface {
	Warnable

	Value() any
	RawValue() any
	Status() Status
	Valid() bool
	Invalid() bool
	Pending() bool
	Disabled() bool
	Enabled() bool
	Errors() Errors
	SetErrors(errs Errors, opts ...Opts)

	Dirty() bool
	Pristine() bool
	Touched() bool
	Untouched() bool

	Parent() Node
	Owner() Owner
	SetOwner(o Owner)

	Validator() *Validator
	SetValidator(v *Validator)
	AsyncValidator() AsyncValidatorFunc
	SetAsyncValidator(fn AsyncValidatorFunc)

	UpdateValueAndValidity(opts ...Opts)
	Disable(opts ...Opts)
	Enable(opts ...Opts)

	SetValue(v any, opts ...Opts) error
	PatchValue(v any, opts ...Opts)
	Reset(v any, opts ...Opts)

	MarkAsDirty(opts ...Opts)
	MarkAsPristine(opts ...Opts)
	MarkAsTouched(opts ...Opts)
	MarkAsUntouched(opts ...Opts)

	ValueChanges() rx.Observable[any]
	StatusChanges() rx.Observable[Status]

	children() []Node
	calcValue() any
	allDisabled() bool
	setParent(p Node)
	updatePristine(o Opts)
	updateTouched(o Opts)
	updateControlsErrors(emit bool)
}

// EnclosingOwner returns the owner of n or of its nearest ancestor that has
// one.
func EnclosingOwner(n Node) Owner {
	for cur := n; cur != nil; cur = cur.Parent() {
		if o := cur.Owner(); o != nil {
			return o
		}
	}
	return nil
}

// Children returns the direct children of a composite node, or nil for a leaf.
func Children(n Node) []Node {
	if n == nil {
		return nil
	}
	return slices.Clone(n.children())
}

// ShapeError reports a value whose structure does not match the node tree.
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return "control: " + e.Reason
	}
	return fmt.Sprintf("control: %s at %s", e.Reason, e.Path)
}

func prefixShape(err error, seg string) error {
	se, ok := err.(*ShapeError)
	if !ok {
		return err
	}
	if se.Path == "" {
		return &ShapeError{Path: seg, Reason: se.Reason}
	}
	return &ShapeError{Path: seg + "/" + se.Path, Reason: se.Reason}
}
