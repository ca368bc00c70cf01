// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import (
	"container/heap"
	"container/list"
	"time"

	"go.uber.org/zap"
)

// ScaledManager owns the global manager HostTimer, the ordered set of active
// timers keyed by scaled deadline, the set of triggerable timers, the current
// scaled-time cursor, and the scale factor. It reprograms the manager
// HostTimer after every state change. All of its state, and the state of
// every RangeTimer it creates, is touched only from its Dispatcher's thread
// of control; ScaledManager does no locking of its own.
type ScaledManager struct {
	dispatcher Dispatcher
	clock      Clock
	log        *zap.Logger

	managerTimer Timer
	scaleFactor  ScaleFactor

	cursor    ScaledTime
	lastEvent time.Time

	active      activeHeap
	triggerable list.List

	armSeq uint64
}

// NewScaledManager creates a ScaledManager driven by dispatcher and clock,
// with an initial scale factor clamped to [0,1]. The dispatcher and clock
// must outlive the manager and every RangeTimer it creates.
func NewScaledManager(dispatcher Dispatcher, clock Clock, initialScaleFactor float64, opts ...ManagerOption) *ScaledManager {
	m := &ScaledManager{
		dispatcher:  dispatcher,
		clock:       clock,
		log:         zap.NewNop(),
		scaleFactor: NewScaleFactor(initialScaleFactor),
		cursor:      scaledTimeMin,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.lastEvent = m.clock.Now()
	m.managerTimer = m.dispatcher.CreateTimer(m.onManagerTimer)

	return m
}

// CreateTimer creates a new, initially inactive RangeTimer owned by this
// manager.
func (m *ScaledManager) CreateTimer(cb Callback) *RangeTimer {
	t := &RangeTimer{manager: m, callback: cb}
	t.minTimer = m.dispatcher.CreateTimer(t.onPendingMinElapsed)
	return t
}

// ScaleFactor returns the manager's current scale factor.
func (m *ScaledManager) ScaleFactor() ScaleFactor {
	return m.scaleFactor
}

// SetScaleFactor clamps f to [0,1], advances the cursor, and — if the new
// factor is zero — migrates every active timer directly to the triggerable
// set. The manager HostTimer is reprogrammed last.
func (m *ScaledManager) SetScaleFactor(f float64) {
	m.scaleFactor = NewScaleFactor(f)
	m.advanceCursor()

	if m.scaleFactor.Zero() && m.active.Len() > 0 {
		m.log.Debug("scale factor zeroed, migrating active timers to triggerable", zap.Int("active", m.active.Len()))
		m.migrateAllActive()
	}

	m.reprogramManagerTimer()
}

// add inserts timer into the active set (or directly into the triggerable
// set, if the scale factor is zero) keyed off remainingMax, then reprograms
// the manager HostTimer.
func (m *ScaledManager) add(t *RangeTimer, remainingMax time.Duration) {
	m.advanceCursor()

	if m.scaleFactor.Zero() {
		t.state = rtTriggerable
		t.triggerElem = m.triggerable.PushBack(t)
	} else {
		m.armSeq++
		entry := &activeEntry{
			deadline: m.cursor + ScaledTime(clampRemaining(remainingMax)),
			seq:      m.armSeq,
			timer:    t,
		}
		heap.Push(&m.active, entry)
		t.state = rtActiveMax
		t.active = entry
	}

	m.reprogramManagerTimer()
}

// removeActive removes e from the active set and reprograms the manager
// HostTimer.
func (m *ScaledManager) removeActive(e *activeEntry) {
	heap.Remove(&m.active, e.index)
	m.reprogramManagerTimer()
}

// cancelTriggerable removes elem from the triggerable set and reprograms the
// manager HostTimer.
func (m *ScaledManager) cancelTriggerable(elem *list.Element) {
	m.triggerable.Remove(elem)
	m.reprogramManagerTimer()
}

// advanceCursor implements the seven-step cursor arithmetic: it folds the
// real time elapsed since the last call into the scaled-time cursor,
// migrating any now-due active timers into the triggerable set, and rebases
// the cursor back to its minimum whenever it would otherwise cross zero or
// overflow.
func (m *ScaledManager) advanceCursor() {
	now := m.clock.Now()
	deltaReal := now.Sub(m.lastEvent)

	if m.scaleFactor.Zero() || m.active.Len() == 0 {
		m.cursor = scaledTimeMin
		m.lastEvent = now
		return
	}

	deltaScaled := float64(deltaReal) / m.scaleFactor.Value()
	if deltaScaled > float64(halfDuration) {
		m.log.Debug("scaled delta overflowed half duration range, migrating all active timers")
		m.migrateAllActive()
		m.cursor = scaledTimeMin
		m.lastEvent = now
		return
	}

	m.cursor += ScaledTime(deltaScaled)

	if m.cursor >= 0 {
		for m.active.Len() > 0 && m.active[0].deadline <= m.cursor {
			e := heap.Pop(&m.active).(*activeEntry)
			m.migrateToTriggerable(e.timer)
		}

		if m.active.Len() > 0 {
			m.log.Debug("rebasing scaled-time cursor", zap.Duration("shift", time.Duration(m.cursor-scaledTimeMin)))
			shift := m.cursor - scaledTimeMin
			for _, e := range m.active {
				e.deadline -= shift
			}
		}

		m.cursor = scaledTimeMin
	} else {
		for m.active.Len() > 0 && m.active[0].deadline <= m.cursor {
			e := heap.Pop(&m.active).(*activeEntry)
			m.migrateToTriggerable(e.timer)
		}
	}

	m.lastEvent = now
}

func (m *ScaledManager) migrateToTriggerable(t *RangeTimer) {
	t.active = nil
	t.state = rtTriggerable
	t.triggerElem = m.triggerable.PushBack(t)
}

func (m *ScaledManager) migrateAllActive() {
	for m.active.Len() > 0 {
		e := heap.Pop(&m.active).(*activeEntry)
		m.migrateToTriggerable(e.timer)
	}
}

// reprogramManagerTimer re-arms or disables the manager HostTimer so that
// invariant 5 holds: enabled iff the active or triggerable set is non-empty,
// with a zero delay whenever the triggerable set is non-empty.
func (m *ScaledManager) reprogramManagerTimer() {
	switch {
	case m.triggerable.Len() > 0:
		m.managerTimer.Enable(0)

	case m.active.Len() == 0:
		m.managerTimer.Disable()

	default:
		delay := time.Duration(float64(m.active[0].deadline-m.cursor) * m.scaleFactor.Value())
		if delay < 0 {
			delay = 0
		}
		m.managerTimer.Enable(delay)
	}
}

// onManagerTimer is the manager HostTimer's callback: advance the cursor,
// drain whatever is now triggerable, then reprogram for what remains.
func (m *ScaledManager) onManagerTimer() {
	m.advanceCursor()
	m.drainTriggerable()
	m.reprogramManagerTimer()
}

// drainTriggerable snapshots the triggerable set before invoking any
// callback, since a callback may insert new timers into either set and must
// never observe or mutate the list being drained. Each element is removed
// individually, rather than via list.List.Init, so that a callback earlier in
// the drain that disables or re-enables a timer later in the snapshot is
// operating on a timer whose triggerElem is already nil, not on an orphaned
// element that still passes list.Remove's owning-list check.
func (m *ScaledManager) drainTriggerable() {
	if m.triggerable.Len() == 0 {
		return
	}

	due := make([]*RangeTimer, 0, m.triggerable.Len())
	for e := m.triggerable.Front(); e != nil; {
		next := e.Next()
		t := e.Value.(*RangeTimer)
		m.triggerable.Remove(e)
		t.triggerElem = nil
		due = append(due, t)
		e = next
	}

	for _, t := range due {
		t.trigger()
	}
}
