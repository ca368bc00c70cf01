// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import (
	"container/heap"
	"sync"
	"time"
)

// rlTimer is a single entry in a RunLoopDispatcher's pending-fire heap.
type rlTimer struct {
	index  int
	fireAt time.Time
	armed  bool
	cb     Callback
	d      *RunLoopDispatcher
}

// Enable arms the timer by submitting a command to the owning dispatcher's
// run loop. The timer will fire on that loop's goroutine, never concurrently
// with any other command.
func (t *rlTimer) Enable(delay time.Duration) {
	t.d.submit(func() { t.d.arm(t, delay) })
}

// Disable cancels a pending fire.
func (t *rlTimer) Disable() {
	t.d.submit(func() { t.d.disarm(t) })
}

// rlHeap orders pending timers by fire time, tracking each entry's slot index
// on every swap so arbitrary entries can be removed in O(log n). Same shape as
// the timer heaps used throughout this corpus.
type rlHeap []*rlTimer

func (h rlHeap) Len() int            { return len(h) }
func (h rlHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h rlHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *rlHeap) Push(x any) {
	t := x.(*rlTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *rlHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.index = -1
	return t
}

// RunLoopDispatcher is a single-threaded Dispatcher backed by one owned
// goroutine. Every Timer callback, and every Enable/Disable request, is
// serialized onto that goroutine, which is exactly the cooperative,
// single-threaded model ScaledManager and RangeTimer assume.
type RunLoopDispatcher struct {
	cmds chan func()
	done chan struct{}
	wg   sync.WaitGroup

	pending rlHeap
	scope   Scope
}

func newRunLoopDispatcher() *RunLoopDispatcher {
	return &RunLoopDispatcher{
		cmds: make(chan func(), 16),
		done: make(chan struct{}),
	}
}

// NewRunLoopDispatcher creates a RunLoopDispatcher. Start must be called
// before any Timer created from it will ever fire.
func NewRunLoopDispatcher() *RunLoopDispatcher {
	return newRunLoopDispatcher()
}

// Start launches the run loop goroutine.
func (d *RunLoopDispatcher) Start() error {
	d.wg.Add(1)
	go d.run()
	return nil
}

// Stop terminates the run loop goroutine and waits for it to exit. Any timers
// still pending at that point never fire.
func (d *RunLoopDispatcher) Stop() error {
	close(d.done)
	d.wg.Wait()
	return nil
}

func (d *RunLoopDispatcher) submit(fn func()) {
	select {
	case d.cmds <- fn:
	case <-d.done:
	}
}

// Submit queues fn to run on the dispatcher's own goroutine, serialized with
// every timer callback and every RangeTimer/ScaledManager call already
// scheduled there. Unlike RunWithScope, Submit is safe to call from any
// goroutine; it is how code outside the dispatcher's own loop — for example
// a background watcher polling an external signal — reaches into a
// ScaledManager without breaking its single-threaded, lock-free discipline.
// fn is dropped without running if the dispatcher has already stopped.
func (d *RunLoopDispatcher) Submit(fn func()) {
	d.submit(fn)
}

// CreateTimer implements Dispatcher.
func (d *RunLoopDispatcher) CreateTimer(cb Callback) Timer {
	return &rlTimer{cb: cb, d: d}
}

// RunWithScope implements Dispatcher. Called from the run loop goroutine
// itself (a timer's callback runs there already), so no synchronization is
// needed around d.scope.
func (d *RunLoopDispatcher) RunWithScope(scope Scope, fn func()) {
	prev := d.scope
	d.scope = scope
	defer func() { d.scope = prev }()
	fn()
}

func (d *RunLoopDispatcher) arm(t *rlTimer, delay time.Duration) {
	if t.armed {
		heap.Remove(&d.pending, t.index)
	}

	t.fireAt = time.Now().Add(delay)
	t.armed = true
	heap.Push(&d.pending, t)
}

func (d *RunLoopDispatcher) disarm(t *rlTimer) {
	if !t.armed {
		return
	}

	heap.Remove(&d.pending, t.index)
	t.armed = false
}

func (d *RunLoopDispatcher) run() {
	defer d.wg.Done()

	wakeup := time.NewTimer(time.Hour)
	defer wakeup.Stop()

	for {
		wakeup.Stop()
		select {
		case <-wakeup.C:
		default:
		}

		var wake <-chan time.Time
		if d.pending.Len() > 0 {
			delay := time.Until(d.pending[0].fireAt)
			if delay < 0 {
				delay = 0
			}

			wakeup.Reset(delay)
			wake = wakeup.C
		}

		select {
		case <-d.done:
			return

		case fn := <-d.cmds:
			fn()

		case <-wake:
			now := time.Now()
			for d.pending.Len() > 0 && !d.pending[0].fireAt.After(now) {
				t := heap.Pop(&d.pending).(*rlTimer)
				t.armed = false
				t.cb()
			}
		}
	}
}
