// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	"go.uber.org/multierr"
)

// DefaultPollInterval is used for any ManagerDefinition that does not set
// its own Interval.
const DefaultPollInterval = 30 * time.Second

// ManagerDefinition describes a single named timer domain's overload
// signal: which Consul KV key publishes it, how often to poll it, and
// which named ScaledManager it drives.
type ManagerDefinition struct {
	// Name uniquely identifies this definition and must match a key in
	// the map[string]ManagerBinding supplied to the enclosing application.
	Name string `json:"name" yaml:"name"`

	// Key is the Consul KV key publishing this domain's overload signal,
	// a decimal string in [0,1].
	Key string `json:"key" yaml:"key"`

	// Interval is how often the key is polled. DefaultPollInterval is
	// used if this is zero.
	Interval time.Duration `json:"interval" yaml:"interval"`
}

func (def ManagerDefinition) pollInterval() time.Duration {
	if def.Interval <= 0 {
		return DefaultPollInterval
	}
	return def.Interval
}

// DefinitionsBuilder is a fluent builder for creating ManagerDefinitions
// bundles.
//
// The zero value is a ready to use builder. This builder is not safe for
// concurrent usage.
type DefinitionsBuilder struct {
	definitions map[string]ManagerDefinition
	err         error
}

func (b *DefinitionsBuilder) appendErrs(errs ...error) {
	b.err = multierr.Append(b.err, multierr.Combine(errs...))
}

// DefineManager adds a single named overload-signal definition. Any errors
// that occur can be accessed with Err() or as the result of Build().
func (b *DefinitionsBuilder) DefineManager(def ManagerDefinition) *DefinitionsBuilder {
	if len(def.Name) == 0 {
		b.appendErrs(errors.New("manager definitions must have a name"))
		return b
	}

	if len(def.Key) == 0 {
		b.appendErrs(fmt.Errorf("manager definition %q must have a KV key", def.Name))
		return b
	}

	if def.Interval < 0 {
		b.appendErrs(fmt.Errorf("manager definition %q has a negative poll interval", def.Name))
		return b
	}

	if b.definitions == nil {
		b.definitions = make(map[string]ManagerDefinition)
	}

	if _, exists := b.definitions[def.Name]; exists {
		b.appendErrs(fmt.Errorf("duplicate manager definition %q", def.Name))
		return b
	}

	b.definitions[def.Name] = def
	return b
}

// DefineManagers adds every definition in defs, applying the same
// validation as DefineManager to each.
func (b *DefinitionsBuilder) DefineManagers(defs iter.Seq[ManagerDefinition]) *DefinitionsBuilder {
	for def := range defs {
		b = b.DefineManager(def)
	}
	return b
}

// Err returns any accumulated error thus far.
func (b *DefinitionsBuilder) Err() error {
	return b.err
}

// Reset clears this builder's internal state. Build always resets the
// builder's state.
func (b *DefinitionsBuilder) Reset() *DefinitionsBuilder {
	*b = DefinitionsBuilder{}
	return b
}

// Build creates a new ManagerDefinitions bundle if possible. If any errors
// occurred during building, a nil bundle is returned along with an
// aggregate error. This method always resets the builder.
func (b *DefinitionsBuilder) Build() (r *ManagerDefinitions, err error) {
	if err = b.err; err == nil {
		r = &ManagerDefinitions{
			all: slices.Collect(maps.Values(b.definitions)),
		}
	}

	b.Reset()
	return
}

// ManagerDefinitions is an immutable bundle of ManagerDefinition values.
// Create one with a DefinitionsBuilder.
//
// The zero value is an empty, usable bundle.
type ManagerDefinitions struct {
	all []ManagerDefinition
}

func (defs *ManagerDefinitions) len() int {
	if defs == nil {
		return 0
	}
	return len(defs.all)
}

// Definitions provides iteration over the bundle's ManagerDefinition
// values.
func (defs *ManagerDefinitions) Definitions() iter.Seq[ManagerDefinition] {
	return func(f func(ManagerDefinition) bool) {
		if defs == nil {
			return
		}
		for _, def := range defs.all {
			if !f(def) {
				return
			}
		}
	}
}
