package envoy

import (
	"container/heap"
	"time"
)

// testClock and testDispatcher are a minimal, internal-only simulated
// Clock/Dispatcher pair used by this package's white-box tests, which need
// direct access to ScaledManager's unexported fields to check invariants.
// The public, black-box equivalent used by external consumers (including
// the envoysd package) lives in eventtest; importing it here would create an
// import cycle, since eventtest itself depends on this package.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(0, 0)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

type testTimer struct {
	index  int
	fireAt time.Time
	armed  bool
	cb     Callback
	d      *testDispatcher
}

func (t *testTimer) Enable(delay time.Duration) {
	t.d.arm(t, delay)
}

func (t *testTimer) Disable() {
	t.d.disarm(t)
}

type testHeap []*testTimer

func (h testHeap) Len() int           { return len(h) }
func (h testHeap) Less(i, j int) bool { return h[i].fireAt.Before(h[j].fireAt) }
func (h testHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *testHeap) Push(x any) {
	t := x.(*testTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *testHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	t.index = -1
	return t
}

type testDispatcher struct {
	clock   *testClock
	pending testHeap
	scope   Scope
}

func newTestDispatcher(clock *testClock) *testDispatcher {
	return &testDispatcher{clock: clock}
}

func (d *testDispatcher) CreateTimer(cb Callback) Timer {
	return &testTimer{cb: cb, d: d}
}

func (d *testDispatcher) RunWithScope(scope Scope, fn func()) {
	prev := d.scope
	d.scope = scope
	defer func() { d.scope = prev }()
	fn()
}

func (d *testDispatcher) arm(t *testTimer, delay time.Duration) {
	if t.armed {
		heap.Remove(&d.pending, t.index)
	}

	t.fireAt = d.clock.now.Add(delay)
	t.armed = true
	heap.Push(&d.pending, t)
}

func (d *testDispatcher) disarm(t *testTimer) {
	if !t.armed {
		return
	}

	heap.Remove(&d.pending, t.index)
	t.armed = false
}

func (d *testDispatcher) advance(step time.Duration) {
	d.clock.now = d.clock.now.Add(step)
	now := d.clock.now

	for d.pending.Len() > 0 && !d.pending[0].fireAt.After(now) {
		t := heap.Pop(&d.pending).(*testTimer)
		t.armed = false
		t.cb()
	}
}
