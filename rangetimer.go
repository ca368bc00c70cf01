// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import (
	"container/list"
	"time"
)

// rangeTimerState is the tagged state a RangeTimer moves through:
// inactive -> pendingMin -> activeMax -> triggerable -> inactive.
type rangeTimerState uint8

const (
	rtInactive rangeTimerState = iota
	rtPendingMin
	rtActiveMax
	rtTriggerable
)

// RangeTimer is a timer armed with a [min, max] window that fires somewhere
// in that window, compressed toward min as its manager's scale factor drops
// toward zero. RangeTimer values are only ever produced by a ScaledManager's
// CreateTimer; the manager outlives every timer it creates, so the back
// reference below never dangles.
type RangeTimer struct {
	manager  *ScaledManager
	callback Callback
	scope    Scope

	minTimer Timer

	state         rangeTimerState
	latestTrigger time.Time
	active        *activeEntry
	triggerElem   *list.Element
}

// Enable arms the timer. If it was already armed, the previous arm is torn
// down first. A min greater than max is a precondition violation; per the
// infallible-API error handling design, max is silently raised to min rather
// than asserted against.
func (t *RangeTimer) Enable(min, max time.Duration, scope Scope) {
	t.Disable()

	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}

	t.scope = scope

	if min > 0 {
		now := t.manager.clock.Now()
		t.latestTrigger = now.Add(max)
		t.state = rtPendingMin
		t.minTimer.Enable(min)
		return
	}

	t.manager.add(t, max)
}

// Disable cancels any pending arm. It is idempotent: disabling an already
// inactive timer, including from within its own callback, is a no-op.
func (t *RangeTimer) Disable() {
	switch t.state {
	case rtPendingMin:
		t.minTimer.Disable()

	case rtActiveMax:
		t.manager.removeActive(t.active)
		t.active = nil

	case rtTriggerable:
		// triggerElem is nil when this timer has already been unlinked from
		// the triggerable list by an in-progress drain but hasn't had
		// trigger() called on it yet; there is nothing left to remove, and
		// trigger()'s own state guard is what makes this disable stick.
		if t.triggerElem != nil {
			t.manager.cancelTriggerable(t.triggerElem)
			t.triggerElem = nil
		}

	default:
		return
	}

	t.state = rtInactive
	t.scope = nil
}

// Enabled reports whether the timer is armed in any of PendingMin, ActiveMax,
// or Triggerable.
func (t *RangeTimer) Enabled() bool {
	return t.state != rtInactive
}

// onPendingMinElapsed is invoked by the per-timer HostTimer when min elapses.
// Precondition: state is PendingMin.
func (t *RangeTimer) onPendingMinElapsed() {
	if t.state != rtPendingMin {
		return
	}

	now := t.manager.clock.Now()
	remaining := t.latestTrigger.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	t.manager.add(t, remaining)
}

// trigger is invoked by the manager when this timer's deadline has arrived.
// Precondition: state is Triggerable. The timer transitions to Inactive
// before the callback runs, so the callback may freely re-arm or destroy it.
// A timer snapshotted into a drain can be disabled or re-armed by an earlier
// callback in the same drain before its own trigger runs. drainTriggerable
// nils triggerElem as it snapshots, so a non-nil triggerElem here means this
// RangeTimer was re-armed into a fresh triggerable entry since the snapshot
// was taken; that fresh entry, not this stale due-list slot, owns the fire.
// Combined with the state check, this is a no-op instead of firing a dead or
// superseded arm, mirroring onPendingMinElapsed's guard.
func (t *RangeTimer) trigger() {
	if t.state != rtTriggerable || t.triggerElem != nil {
		return
	}

	t.state = rtInactive
	t.triggerElem = nil

	cb := t.callback
	scope := t.scope
	t.scope = nil

	if scope != nil {
		t.manager.dispatcher.RunWithScope(scope, cb)
	} else {
		cb()
	}
}
