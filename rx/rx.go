// Package rx provides the small set of synchronous push streams the form tree
// is wired with.
//
// Every operator delivers values on the goroutine that produced them, in
// subscription order, before the producing call returns. There is no
// scheduler: asynchronous boundaries are owned by the caller.
package rx

import (
	"reflect"
	"sync"
)

// Subscription releases a subscriber registered through Observable.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// Observable is a push stream of T.
type Observable[T any] interface {
	Subscribe(fn func(T)) Subscription
}

// ObservableFunc adapts a subscribe function to Observable.
type ObservableFunc[T any] func(fn func(T)) Subscription

// Subscribe implements Observable.
func (f ObservableFunc[T]) Subscribe(fn func(T)) Subscription { return f(fn) }

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

// Unsubscribe implements Subscription.
func (f SubscriptionFunc) Unsubscribe() {
	if f != nil {
		f()
	}
}

// noop is returned by streams that complete on subscribe.
var noop = SubscriptionFunc(nil)

type subscriber[T any] struct {
	fn     func(T)
	closed bool
}

// Subject is a hot multicast stream. Values pushed with Next reach every
// subscriber registered at the time of the call.
type Subject[T any] struct {
	mu   sync.Mutex
	subs []*subscriber[T]
}

// NewSubject returns an empty Subject.
func NewSubject[T any]() *Subject[T] { return &Subject[T]{} }

// Subscribe registers fn.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	sub := &subscriber[T]{fn: fn}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return SubscriptionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.closed = true
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	})
}

// Next pushes v to the current subscribers.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	snapshot := make([]*subscriber[T], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()
	for _, sub := range snapshot {
		s.mu.Lock()
		closed := sub.closed
		s.mu.Unlock()
		if !closed {
			sub.fn(v)
		}
	}
}

// Observers returns the number of live subscribers.
func (s *Subject[T]) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Of returns a cold stream that emits values to each subscriber on subscribe.
func Of[T any](values ...T) Observable[T] {
	return ObservableFunc[T](func(fn func(T)) Subscription {
		for _, v := range values {
			fn(v)
		}
		return noop
	})
}

// Map projects every value of src through fn.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return ObservableFunc[U](func(next func(U)) Subscription {
		return src.Subscribe(func(v T) { next(fn(v)) })
	})
}

// DistinctUntilChanged drops values deeply equal to the previous one seen by
// the same subscriber.
func DistinctUntilChanged[T any](src Observable[T]) Observable[T] {
	return ObservableFunc[T](func(next func(T)) Subscription {
		var (
			last T
			seen bool
		)
		return src.Subscribe(func(v T) {
			if seen && reflect.DeepEqual(last, v) {
				return
			}
			last, seen = v, true
			next(v)
		})
	})
}

// StartWith emits values before forwarding src.
func StartWith[T any](src Observable[T], values ...T) Observable[T] {
	return ObservableFunc[T](func(next func(T)) Subscription {
		for _, v := range values {
			next(v)
		}
		return src.Subscribe(next)
	})
}

// CombineLatest emits the latest value of every source once each source has
// emitted at least once, and again on every later emission of any source.
// The emitted slice is a fresh copy.
func CombineLatest[T any](srcs ...Observable[T]) Observable[[]T] {
	return ObservableFunc[[]T](func(next func([]T)) Subscription {
		if len(srcs) == 0 {
			next([]T{})
			return noop
		}
		latest := make([]T, len(srcs))
		has := make([]bool, len(srcs))
		ready := 0
		var subs Composite
		for i, src := range srcs {
			subs.Add(src.Subscribe(func(v T) {
				latest[i] = v
				if !has[i] {
					has[i] = true
					ready++
				}
				if ready == len(srcs) {
					out := make([]T, len(latest))
					copy(out, latest)
					next(out)
				}
			}))
		}
		return &subs
	})
}

// Composite groups subscriptions released together.
type Composite struct {
	mu   sync.Mutex
	subs []Subscription
	done bool
}

// Add registers s. When the composite is already released, s is released
// immediately.
func (c *Composite) Add(s Subscription) {
	if s == nil {
		return
	}
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		s.Unsubscribe()
		return
	}
	c.subs = append(c.subs, s)
	c.mu.Unlock()
}

// Len returns the number of held subscriptions.
func (c *Composite) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Unsubscribe releases every held subscription.
func (c *Composite) Unsubscribe() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.done = true
	c.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}
