package control

// Control is a leaf node holding a single value.
type Control struct {
	base
}

var _ Node = (*Control)(nil)

// NewControl returns a leaf holding value, validated by validator and async
// (either may be nil). Validity is computed immediately.
func NewControl(value any, validator *Validator, async AsyncValidatorFunc) *Control {
	c := &Control{}
	c.init(c, validator, async)
	c.value = value
	c.UpdateValueAndValidity(Opts{OnlySelf: true, NoEmit: true})
	return c
}

// NewDisabledControl returns a leaf that starts disabled.
func NewDisabledControl(value any, validator *Validator, async AsyncValidatorFunc) *Control {
	c := &Control{}
	c.init(c, validator, async)
	c.value = value
	c.status = StatusDisabled
	c.UpdateValueAndValidity(Opts{OnlySelf: true, NoEmit: true})
	return c
}

// RawValue equals Value for a leaf.
func (c *Control) RawValue() any { return c.value }

// SetValue stores v and recomputes validity. It never fails for a leaf.
func (c *Control) SetValue(v any, opts ...Opts) error {
	c.value = v
	c.UpdateValueAndValidity(opts...)
	return nil
}

// PatchValue is SetValue for a leaf.
func (c *Control) PatchValue(v any, opts ...Opts) {
	_ = c.SetValue(v, opts...)
}

// Reset stores v and marks the control pristine and untouched.
func (c *Control) Reset(v any, opts ...Opts) {
	c.value = v
	c.MarkAsPristine(opts...)
	c.MarkAsUntouched(opts...)
	_ = c.SetValue(v, opts...)
}

func (c *Control) children() []Node { return nil }
func (c *Control) calcValue() any    { return c.value }
func (c *Control) allDisabled() bool { return c.Disabled() }
