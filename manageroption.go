// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoy

import (
	"reflect"

	"go.uber.org/zap"
)

// ManagerOption is a functional option for tailoring a ScaledManager prior to
// use. This mirrors this module's consul-client Option/AsOption idiom, but
// targets *ScaledManager instead of *api.Config; the two option families are
// independent because the teacher's AsOption constraint is hardcoded to
// *api.Config and isn't generic over its target type.
type ManagerOption func(*ScaledManager)

var managerOptionType = reflect.TypeOf(ManagerOption(nil))

// ManagerOptionFunc represents the function types that can be coerced into a
// ManagerOption. There is exactly one shape today, unlike the consul Option
// family's two; the type is still exported so client code can define its own
// named ManagerOption-compatible function types, matching AsOption's intent.
type ManagerOptionFunc interface {
	~func(*ScaledManager)
}

// AsManagerOption coerces a function into a ManagerOption.
func AsManagerOption[OF ManagerOptionFunc](of OF) ManagerOption {
	if opt, ok := any(of).(ManagerOption); ok {
		return opt
	}

	return reflect.ValueOf(of).Convert(managerOptionType).Interface().(ManagerOption)
}

// WithLogger configures the manager to emit diagnostic events (cursor
// rebases, wholesale migrations) to log. These are never part of the public,
// infallible API surface — purely observability.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *ScaledManager) {
		if log != nil {
			m.log = log
		}
	}
}
