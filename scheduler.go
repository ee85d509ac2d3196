package goform

import (
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// maxSettleRounds bounds how many times one settle pass re-drains work that
// revalidation itself queued.
const maxSettleRounds = 32

type pendingKey struct {
	form   *Form
	target string
}

// scheduler coalesces dependent-field revalidation. Changes queue targets in
// a pending set; a timer goroutine settles the set once no new change has
// arrived for the debounce period. Every field of scheduler is guarded by
// the tree mutex except kick and stopCh.
type scheduler struct {
	t        *tree
	clock    clockz.Clock
	debounce time.Duration

	order   []pendingKey
	dirty   map[pendingKey]bool
	running bool
	closed  bool

	kick     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newScheduler(t *tree, clock clockz.Clock, debounce time.Duration) *scheduler {
	return &scheduler{
		t:        t,
		clock:    clock,
		debounce: debounce,
		dirty:    map[pendingKey]bool{},
		kick:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// schedule queues target of f. Callers hold the tree mutex.
func (s *scheduler) schedule(f *Form, target string, markDirty bool) {
	if s.closed {
		return
	}
	k := pendingKey{form: f, target: target}
	if d, queued := s.dirty[k]; queued {
		s.dirty[k] = d || markDirty
	} else {
		s.order = append(s.order, k)
		s.dirty[k] = markDirty
	}
	if !s.running {
		s.running = true
		s.wg.Add(1)
		go s.loop()
		return
	}
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *scheduler) pending() int { return len(s.order) }

// settle drains the pending set. Callers hold the tree mutex.
func (s *scheduler) settle() int {
	n := 0
	for round := 0; round < maxSettleRounds && len(s.order) > 0; round++ {
		batch, dirty := s.order, s.dirty
		s.order, s.dirty = nil, map[pendingKey]bool{}
		for _, k := range batch {
			if k.form.revalidateDependent(k.target, dirty[k]) {
				n++
			}
		}
	}
	if n > 0 {
		capitan.Emit(s.t.ctx, DependenciesSettled,
			KeyCount.Field(n),
		)
	}
	return n
}

func (s *scheduler) loop() {
	defer s.wg.Done()
	timer := s.clock.NewTimer(s.debounce)
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return

		case <-s.kick:
			// Restart the quiet period.
			if !timer.Stop() {
				select {
				case <-timer.C():
				default:
				}
			}
			timer.Reset(s.debounce)

		case <-timer.C():
			s.t.mu.Lock()
			s.settle()
			idle := len(s.order) == 0 || s.closed
			if idle {
				s.running = false
			}
			s.t.mu.Unlock()
			if idle {
				return
			}
			timer.Reset(s.debounce)
		}
	}
}

// stop ends the timer goroutine and waits for it. Callers must not hold the
// tree mutex.
func (s *scheduler) stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
