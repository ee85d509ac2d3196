package rx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goform/rx"
)

func TestSubject_MulticastAndUnsubscribe(t *testing.T) {
	s := rx.NewSubject[int]()
	var a, b []int
	subA := s.Subscribe(func(v int) { a = append(a, v) })
	s.Subscribe(func(v int) { b = append(b, v) })

	s.Next(1)
	subA.Unsubscribe()
	s.Next(2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
	assert.Equal(t, 1, s.Observers())
}

func TestSubject_UnsubscribeDuringEmission(t *testing.T) {
	s := rx.NewSubject[int]()
	var got []int
	var second rx.Subscription
	s.Subscribe(func(int) { second.Unsubscribe() })
	second = s.Subscribe(func(v int) { got = append(got, v) })

	s.Next(1)
	assert.Empty(t, got)
}

func TestOperators_MapDistinctStartWith(t *testing.T) {
	s := rx.NewSubject[int]()
	var got []bool
	obs := rx.DistinctUntilChanged(rx.Map[int, bool](rx.StartWith[int](s, 12), func(v int) bool { return v > 10 }))
	obs.Subscribe(func(v bool) { got = append(got, v) })

	s.Next(11)
	s.Next(3)
	s.Next(4)
	s.Next(20)

	assert.Equal(t, []bool{true, false, true}, got)
}

func TestDistinctUntilChanged_DeepEquality(t *testing.T) {
	s := rx.NewSubject[any]()
	count := 0
	rx.DistinctUntilChanged[any](s).Subscribe(func(any) { count++ })

	s.Next([]any{"a"})
	s.Next([]any{"a"})
	s.Next([]any{"b"})

	assert.Equal(t, 2, count)
}

func TestCombineLatest(t *testing.T) {
	a := rx.NewSubject[bool]()
	b := rx.NewSubject[bool]()
	var got [][]bool
	sub := rx.CombineLatest[bool](a, b).Subscribe(func(v []bool) { got = append(got, v) })

	a.Next(true)
	require.Empty(t, got, "waits for every source")
	b.Next(false)
	a.Next(false)

	assert.Equal(t, [][]bool{{true, false}, {false, false}}, got)

	sub.Unsubscribe()
	b.Next(true)
	assert.Len(t, got, 2)
	assert.Equal(t, 0, a.Observers())
}

func TestCombineLatest_ColdSourcesEmitOnSubscribe(t *testing.T) {
	var got [][]bool
	rx.CombineLatest(rx.Of(false), rx.Of(true)).Subscribe(func(v []bool) { got = append(got, v) })
	assert.Equal(t, [][]bool{{false, true}}, got)

	got = nil
	rx.CombineLatest[bool]().Subscribe(func(v []bool) { got = append(got, v) })
	assert.Equal(t, [][]bool{{}}, got)
}

func TestComposite_ReleasesLateAdds(t *testing.T) {
	s := rx.NewSubject[int]()
	var c rx.Composite
	c.Add(s.Subscribe(func(int) {}))
	require.Equal(t, 1, c.Len())

	c.Unsubscribe()
	assert.Equal(t, 0, s.Observers())

	c.Add(s.Subscribe(func(int) {}))
	assert.Equal(t, 0, s.Observers())
}
