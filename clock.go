// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import "time"

// Clock supplies a non-decreasing monotonic time point. ScaledManager and
// RangeTimer never call time.Now directly; every read of "now" goes through
// a Clock so that tests can substitute a deterministic, simulated one.
type Clock interface {
	// Now returns the current time. Successive calls never go backwards.
	Now() time.Time
}

// SystemClock is a Clock backed by the real wall/monotonic clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
