package goform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/reoring/goform/control"
)

func pairForm(t *testing.T, opts ...Option) *Form {
	t.Helper()
	dep := control.NewValidator(func(control.Node) control.Errors { return nil }, "a")
	f, err := New(Schema{Fields: []Field{
		{Name: "a", Initial: 1},
		{Name: "b", Validator: dep},
	}}, opts...)
	require.NoError(t, err)
	return f
}

func TestScheduler_CoalescesAndKeepsDirtyFlag(t *testing.T) {
	f := pairForm(t, WithClock(clockz.NewFakeClock()), WithDebounce(time.Second))
	defer f.Close()

	f.t.mu.Lock()
	f.t.sched.schedule(f, "b", false)
	f.t.sched.schedule(f, "b", true)
	f.t.sched.schedule(f, "a", false)
	assert.Equal(t, 2, f.t.sched.pending())
	assert.True(t, f.t.sched.dirty[pendingKey{form: f, target: "b"}])
	assert.Equal(t, 2, f.t.sched.settle())
	assert.Equal(t, 0, f.t.sched.pending())
	f.t.mu.Unlock()

	assert.True(t, f.Control("b").Dirty())
	assert.True(t, f.Control("a").Pristine())
}

func TestScheduler_IdleGoroutineExits(t *testing.T) {
	clock := clockz.NewFakeClock()
	f := pairForm(t, WithClock(clock), WithDebounce(10*time.Millisecond))
	defer f.Close()

	f.PatchValues(map[string]any{"a": 2})
	assert.Eventually(t, func() bool {
		clock.Advance(20 * time.Millisecond)
		f.t.mu.Lock()
		defer f.t.mu.Unlock()
		return !f.t.sched.running
	}, time.Second, 5*time.Millisecond)

	// A later change starts a fresh goroutine.
	f.PatchValues(map[string]any{"a": 3})
	assert.Equal(t, 1, f.Pending())
	f.Flush()
	assert.Equal(t, 0, f.Pending())
}

func TestScheduler_ClosedIgnoresSchedule(t *testing.T) {
	f := pairForm(t, WithDebounce(time.Hour))
	f.PatchValues(map[string]any{"a": 2})
	f.Close()

	f.t.mu.Lock()
	f.t.sched.schedule(f, "b", true)
	pending := f.t.sched.pending()
	f.t.mu.Unlock()
	assert.Equal(t, 1, pending, "queued before close, nothing added after")

	assert.Equal(t, 0, f.subs.Len())
}

func TestScheduler_ReleasedFormSkipped(t *testing.T) {
	f := pairForm(t, WithDebounce(time.Hour))
	defer f.Close()

	f.PatchValues(map[string]any{"a": 2})
	f.t.mu.Lock()
	f.released = true
	n := f.t.sched.settle()
	f.released = false
	f.t.mu.Unlock()
	assert.Equal(t, 0, n)
}
