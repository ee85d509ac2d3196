package control

import (
	"maps"

	"github.com/reoring/goform/rx"
)

// base carries the state and behavior shared by every node kind. Kind
// specific pieces (children, value projection) are reached through self.
type base struct {
	self Node

	value    any
	status   Status
	errors   Errors
	warnings Warnings
	pristine bool
	touched  bool

	parent Node
	owner  Owner

	validator      *Validator
	asyncValidator AsyncValidatorFunc
	asyncSub       rx.Subscription
	asyncPending   bool
	asyncRun       int // bumped on every start and cancel; stale results are dropped

	valueChanges  *rx.Subject[any]
	statusChanges *rx.Subject[Status]
}

func (b *base) init(self Node, validator *Validator, async AsyncValidatorFunc) {
	b.self = self
	b.pristine = true
	b.validator = validator
	b.asyncValidator = async
	b.valueChanges = rx.NewSubject[any]()
	b.statusChanges = rx.NewSubject[Status]()
}

// ---- warnings ----

func (b *base) AddWarning(w Warnings) {
	if len(w) == 0 {
		return
	}
	if b.warnings == nil {
		b.warnings = Warnings{}
	}
	maps.Copy(b.warnings, w)
}

func (b *base) SetWarning(w Warnings) {
	if len(w) == 0 {
		b.warnings = nil
		return
	}
	b.warnings = maps.Clone(w)
}

func (b *base) ClearWarning() { b.warnings = nil }

func (b *base) Warnings() Warnings {
	if len(b.warnings) == 0 {
		return nil
	}
	return maps.Clone(b.warnings)
}

func (b *base) HasWarnings() bool { return len(b.warnings) > 0 }

// ---- state accessors ----

func (b *base) Value() any     { return b.value }
func (b *base) Status() Status { return b.status }
func (b *base) Valid() bool    { return b.status == StatusValid }
func (b *base) Invalid() bool  { return b.status == StatusInvalid }
func (b *base) Pending() bool  { return b.status == StatusPending }
func (b *base) Disabled() bool { return b.status == StatusDisabled }
func (b *base) Enabled() bool  { return b.status != StatusDisabled }

func (b *base) Errors() Errors {
	if len(b.errors) == 0 {
		return nil
	}
	return maps.Clone(b.errors)
}

func (b *base) Dirty() bool     { return !b.pristine }
func (b *base) Pristine() bool  { return b.pristine }
func (b *base) Touched() bool   { return b.touched }
func (b *base) Untouched() bool { return !b.touched }

func (b *base) Parent() Node     { return b.parent }
func (b *base) setParent(p Node) { b.parent = p }
func (b *base) Owner() Owner     { return b.owner }
func (b *base) SetOwner(o Owner) { b.owner = o }

func (b *base) Validator() *Validator                   { return b.validator }
func (b *base) SetValidator(v *Validator)               { b.validator = v }
func (b *base) AsyncValidator() AsyncValidatorFunc      { return b.asyncValidator }
func (b *base) SetAsyncValidator(fn AsyncValidatorFunc) { b.asyncValidator = fn }

func (b *base) ValueChanges() rx.Observable[any]     { return b.valueChanges }
func (b *base) StatusChanges() rx.Observable[Status] { return b.statusChanges }

// ---- validity ----

// UpdateValueAndValidity recomputes value, errors and status, clearing the
// warning store first so warning validators repopulate it.
func (b *base) UpdateValueAndValidity(opts ...Opts) {
	o := pick(opts)
	b.warnings = nil
	b.setInitialStatus()
	b.value = b.self.calcValue()

	if b.Enabled() {
		b.cancelAsync()
		b.errors = b.validator.Validate(b.self)
		b.status = b.calculateStatus()
		if b.status == StatusValid {
			b.runAsync(o.NoEmit)
		}
	}

	if !o.NoEmit {
		b.valueChanges.Next(b.value)
		b.statusChanges.Next(b.status)
	}
	if b.parent != nil && !o.OnlySelf {
		b.parent.UpdateValueAndValidity(o)
	}
}

// SetErrors overrides the error store and recomputes status up the tree.
func (b *base) SetErrors(errs Errors, opts ...Opts) {
	o := pick(opts)
	b.errors = errs
	b.updateControlsErrors(!o.NoEmit)
}

func (b *base) updateControlsErrors(emit bool) {
	b.status = b.calculateStatus()
	if emit {
		b.statusChanges.Next(b.status)
	}
	if b.parent != nil {
		b.parent.updateControlsErrors(emit)
	}
}

func (b *base) setInitialStatus() {
	if b.self.allDisabled() {
		b.status = StatusDisabled
	} else {
		b.status = StatusValid
	}
}

func (b *base) calculateStatus() Status {
	if b.self.allDisabled() {
		return StatusDisabled
	}
	if len(b.errors) > 0 {
		return StatusInvalid
	}
	if b.asyncPending || b.anyChildHas(StatusPending) {
		return StatusPending
	}
	if b.anyChildHas(StatusInvalid) {
		return StatusInvalid
	}
	return StatusValid
}

func (b *base) anyChildHas(s Status) bool {
	for _, c := range b.self.children() {
		if c.Status() == s {
			return true
		}
	}
	return false
}

func (b *base) runAsync(noEmit bool) {
	if b.asyncValidator == nil {
		return
	}
	b.status = StatusPending
	b.asyncPending = true
	stream := b.asyncValidator(b.self)
	if stream == nil {
		b.asyncPending = false
		b.status = b.calculateStatus()
		return
	}
	b.asyncRun++
	run := b.asyncRun
	var done bool
	sub := stream.Subscribe(func(errs Errors) {
		if done || run != b.asyncRun {
			return
		}
		done = true
		b.asyncPending = false
		b.SetErrors(errs, Opts{NoEmit: noEmit})
	})
	if !done {
		b.asyncSub = sub
	} else if sub != nil {
		sub.Unsubscribe()
	}
}

func (b *base) cancelAsync() {
	if b.asyncSub != nil {
		b.asyncSub.Unsubscribe()
		b.asyncSub = nil
	}
	b.asyncRun++
	b.asyncPending = false
}

// ---- enable / disable ----

// Disable clears the warning store, marks the node and its descendants
// disabled and drops their errors.
func (b *base) Disable(opts ...Opts) {
	o := pick(opts)
	b.warnings = nil
	b.cancelAsync()
	b.status = StatusDisabled
	b.errors = nil
	for _, c := range b.self.children() {
		c.Disable(Opts{OnlySelf: true, NoEmit: o.NoEmit})
	}
	b.value = b.self.calcValue()

	if !o.NoEmit {
		b.valueChanges.Next(b.value)
		b.statusChanges.Next(b.status)
	}
	b.updateAncestors(o)
}

// Enable re-enables the node and its descendants and recomputes validity.
func (b *base) Enable(opts ...Opts) {
	o := pick(opts)
	b.status = StatusValid
	for _, c := range b.self.children() {
		c.Enable(Opts{OnlySelf: true, NoEmit: o.NoEmit})
	}
	b.UpdateValueAndValidity(Opts{OnlySelf: true, NoEmit: o.NoEmit})
	b.updateAncestors(o)
}

func (b *base) updateAncestors(o Opts) {
	if b.parent == nil || o.OnlySelf {
		return
	}
	b.parent.UpdateValueAndValidity(o)
	b.parent.updatePristine(Opts{})
	b.parent.updateTouched(Opts{})
}

// ---- interaction state ----

func (b *base) MarkAsDirty(opts ...Opts) {
	o := pick(opts)
	b.pristine = false
	if b.parent != nil && !o.OnlySelf {
		b.parent.MarkAsDirty(o)
	}
}

func (b *base) MarkAsTouched(opts ...Opts) {
	o := pick(opts)
	b.touched = true
	if b.parent != nil && !o.OnlySelf {
		b.parent.MarkAsTouched(o)
	}
}

func (b *base) MarkAsPristine(opts ...Opts) {
	o := pick(opts)
	b.pristine = true
	for _, c := range b.self.children() {
		c.MarkAsPristine(Opts{OnlySelf: true})
	}
	if b.parent != nil && !o.OnlySelf {
		b.parent.updatePristine(o)
	}
}

func (b *base) MarkAsUntouched(opts ...Opts) {
	o := pick(opts)
	b.touched = false
	for _, c := range b.self.children() {
		c.MarkAsUntouched(Opts{OnlySelf: true})
	}
	if b.parent != nil && !o.OnlySelf {
		b.parent.updateTouched(o)
	}
}

func (b *base) updatePristine(o Opts) {
	dirty := false
	for _, c := range b.self.children() {
		if c.Dirty() {
			dirty = true
			break
		}
	}
	b.pristine = !dirty
	if b.parent != nil && !o.OnlySelf {
		b.parent.updatePristine(o)
	}
}

func (b *base) updateTouched(o Opts) {
	touched := false
	for _, c := range b.self.children() {
		if c.Touched() {
			touched = true
			break
		}
	}
	b.touched = touched
	if b.parent != nil && !o.OnlySelf {
		b.parent.updateTouched(o)
	}
}
