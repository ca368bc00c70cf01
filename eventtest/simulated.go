// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package eventtest provides deterministic test doubles for envoy.Clock and
// envoy.Dispatcher, so that tests can drive a ScaledManager through virtual
// time without ever sleeping a real goroutine.
package eventtest

import (
	"container/heap"
	"time"

	"github.com/akonradi/envoy"
)

// Clock is a deterministic envoy.Clock whose Now only moves when Advance is
// called. The zero value starts at the zero time.Time (January 1, year 1,
// UTC); use NewClock to start at another instant.
type Clock struct {
	now time.Time
}

// NewClock creates a Clock starting at the given instant.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now implements envoy.Clock.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the simulated clock forward by d. It does not, by itself,
// fire any timers; pair it with Dispatcher.Advance.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// simTimer is one entry in a Dispatcher's pending-fire heap. It implements
// envoy.Timer.
type simTimer struct {
	index  int
	fireAt time.Time
	armed  bool
	cb     envoy.Callback
	d      *Dispatcher
}

func (t *simTimer) Enable(delay time.Duration) {
	t.d.arm(t, delay)
}

func (t *simTimer) Disable() {
	t.d.disarm(t)
}

type simHeap []*simTimer

func (h simHeap) Len() int           { return len(h) }
func (h simHeap) Less(i, j int) bool { return h[i].fireAt.Before(h[j].fireAt) }
func (h simHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *simHeap) Push(x any) {
	t := x.(*simTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *simHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.index = -1
	return t
}

// Dispatcher is a deterministic envoy.Dispatcher paired with a Clock. Timers
// only fire when Advance is called, and they fire synchronously, in deadline
// order, on the calling goroutine — there is no background goroutine at all,
// which is what makes tests using this type fully deterministic.
type Dispatcher struct {
	clock   *Clock
	pending simHeap
	scope   envoy.Scope
}

// NewDispatcher creates a Dispatcher bound to clock.
func NewDispatcher(clock *Clock) *Dispatcher {
	return &Dispatcher{clock: clock}
}

// CreateTimer implements envoy.Dispatcher.
func (d *Dispatcher) CreateTimer(cb envoy.Callback) envoy.Timer {
	return &simTimer{cb: cb, d: d}
}

// RunWithScope implements envoy.Dispatcher.
func (d *Dispatcher) RunWithScope(scope envoy.Scope, fn func()) {
	prev := d.scope
	d.scope = scope
	defer func() { d.scope = prev }()
	fn()
}

// CurrentScope returns whatever scope, if any, is currently established by a
// running callback. Useful for asserting scope propagation in tests.
func (d *Dispatcher) CurrentScope() envoy.Scope {
	return d.scope
}

// Submit runs fn immediately, on the calling goroutine. Since this
// Dispatcher has no background goroutine of its own, there is nothing to
// marshal onto; Submit exists so code written against a Submitter, such as
// envoysd's OverloadWatcher, can be tested against a Dispatcher without a
// real dispatcher loop.
func (d *Dispatcher) Submit(fn func()) {
	fn()
}

func (d *Dispatcher) arm(t *simTimer, delay time.Duration) {
	if t.armed {
		heap.Remove(&d.pending, t.index)
	}

	t.fireAt = d.clock.Now().Add(delay)
	t.armed = true
	heap.Push(&d.pending, t)
}

func (d *Dispatcher) disarm(t *simTimer) {
	if !t.armed {
		return
	}

	heap.Remove(&d.pending, t.index)
	t.armed = false
}

// PendingTimers reports how many timers are currently armed.
func (d *Dispatcher) PendingTimers() int {
	return d.pending.Len()
}

// Advance moves the clock forward by step, then fires every timer whose
// deadline falls at or before the new time, in deadline order. Firing a
// timer may arm new timers with deadlines at or before the new time; those
// fire too, in the same pass, matching a real dispatcher's next-turn
// semantics collapsed into a single virtual step.
func (d *Dispatcher) Advance(step time.Duration) {
	d.clock.Advance(step)
	now := d.clock.Now()

	for d.pending.Len() > 0 && !d.pending[0].fireAt.After(now) {
		t := heap.Pop(&d.pending).(*simTimer)
		t.armed = false
		t.cb()
	}
}
