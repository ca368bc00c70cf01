// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import "time"

// Callback is a zero-argument function invoked by a Dispatcher when a Timer fires.
type Callback func()

// Scope is an opaque token a caller may associate with a RangeTimer. While the
// timer's callback runs, the Dispatcher establishes this scope for the duration
// of the call; it is not retained afterwards. A nil Scope means "no scope".
type Scope any

// Timer is a single-shot timer primitive created by a Dispatcher. It may be
// re-armed any number of times.
type Timer interface {
	// Enable arms the timer to fire once after delay elapses. A delay of zero
	// fires on the dispatcher's next turn. Any previously pending fire is
	// canceled first.
	Enable(delay time.Duration)

	// Disable cancels a pending fire. It is a no-op if the timer is not armed.
	Disable()
}

// Dispatcher is the host event loop collaborator that ScaledManager and
// RangeTimer schedule work against. Every Timer it creates fires its callback
// on the dispatcher's own thread of control.
type Dispatcher interface {
	// CreateTimer creates a new, initially-disabled Timer that invokes cb when
	// it fires.
	CreateTimer(cb Callback) Timer

	// RunWithScope invokes fn with scope established for its duration. A nil
	// scope simply invokes fn. Implementations that have no notion of scope may
	// just call fn directly.
	RunWithScope(scope Scope, fn func())
}
