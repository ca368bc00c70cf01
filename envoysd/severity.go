// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import "time"

//go:generate stringer -type=Severity -linecomment

// Severity buckets an observed overload scale factor for reporting
// purposes. It has no bearing on the scale factor value actually applied
// to a ScaledManager; that is always the raw parsed value, clamped.
type Severity int

const (
	// Normal means the published scale factor is at or near 1: no
	// compression is being requested.
	Normal Severity = iota // normal

	// Elevated means the published scale factor is compressing timers but
	// has not yet reached zero.
	Elevated // elevated

	// Critical means the published scale factor is at or near zero: active
	// timers are being fired as soon as possible.
	Critical // critical
)

// elevatedThreshold and criticalThreshold bound the Severity buckets.
const (
	elevatedThreshold = 0.75
	criticalThreshold = 0.05
)

// classifySeverity buckets a clamped [0,1] scale factor into a Severity.
func classifySeverity(scaleFactor float64) Severity {
	switch {
	case scaleFactor <= criticalThreshold:
		return Critical
	case scaleFactor < elevatedThreshold:
		return Elevated
	default:
		return Normal
	}
}

// Reading is the most recently observed overload signal for one named
// manager.
type Reading struct {
	// Name is the ManagerDefinition this reading belongs to.
	Name string

	// ScaleFactor is the last value successfully applied to the bound
	// ScaledManager.
	ScaleFactor float64

	// Severity is ScaleFactor's bucket.
	Severity Severity

	// ObservedAt is when this reading was recorded.
	ObservedAt time.Time
}
