package goform

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/reoring/goform/control"
	"github.com/reoring/goform/rx"
)

// Option configures a Form.
type Option func(*config)

type config struct {
	groupValidator func(*control.Group) control.Errors
	groupAsync     func(*control.Group) rx.Observable[control.Errors]
	disabled       rx.Observable[bool]
	autoDependents bool
	dirtyDependent bool
	debounce       time.Duration
	clock          clockz.Clock
	ctx            context.Context
}

func defaultConfig() config {
	return config{
		autoDependents: true,
		dirtyDependent: true,
		clock:          clockz.RealClock,
		ctx:            context.Background(),
	}
}

// WithGroupValidator validates the root group as a whole. Its errors are
// reported under "groupErrors".
func WithGroupValidator(fn func(*control.Group) control.Errors) Option {
	return func(c *config) {
		c.groupValidator = fn
	}
}

// WithGroupAsyncValidator attaches an asynchronous validator to the root
// group.
func WithGroupAsyncValidator(fn func(*control.Group) rx.Observable[control.Errors]) Option {
	return func(c *config) {
		c.groupAsync = fn
	}
}

// WithDisabled disables every field while stream's latest value is true.
func WithDisabled(stream rx.Observable[bool]) Option {
	return func(c *config) {
		c.disabled = stream
	}
}

// WithoutAutoDependents turns off automatic revalidation of fields whose
// validators declare dependencies. MarkAsDependent still works.
func WithoutAutoDependents() Option {
	return func(c *config) {
		c.autoDependents = false
	}
}

// WithoutDirtyDependents keeps automatically revalidated fields pristine.
func WithoutDirtyDependents() Option {
	return func(c *config) {
		c.dirtyDependent = false
	}
}

// WithDebounce sets how long dependent revalidation waits for further
// changes before it settles. The default is 0: settle on the next tick.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithClock sets a custom clock for the settle timer.
// Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithContext sets the context events are emitted with.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
