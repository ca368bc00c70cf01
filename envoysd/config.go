// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"github.com/xmidt-org/retry"
)

// Config is the overload-signal portion of this module's configuration.
// This will typically be obtained externally via the host application's
// own configuration.
type Config struct {
	// Retry is the backoff configuration for retrying overload signal
	// fetches. If not supplied, no retries are performed.
	Retry retry.Config `json:"retry" yaml:"retry"`

	// Managers holds the set of named overload-signal definitions this
	// application should poll.
	Managers []ManagerDefinition `json:"managers" yaml:"managers"`
}

// buildDefinitions converts Config's flat Managers slice into a validated
// ManagerDefinitions bundle.
func (c Config) buildDefinitions() (*ManagerDefinitions, error) {
	var b DefinitionsBuilder
	for _, def := range c.Managers {
		b.DefineManager(def)
	}

	return b.Build()
}
