// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xmidt-org/retry"
)

// Watchers is an aggregate of multiple OverloadWatcher instances. A process
// hosting several independent timer domains has one OverloadWatcher per
// domain, and a Watchers holds the set of them.
type Watchers interface {
	// Readings returns a snapshot of the most recently applied overload
	// signal for every contained watcher, keyed by ManagerDefinition name.
	Readings() map[string]Reading

	// Len returns the count of contained watchers.
	Len() int

	// Watchers provides iteration over the contained watchers, keyed by
	// ManagerDefinition name.
	Watchers() iter.Seq2[string, *OverloadWatcher]

	// Start starts every contained watcher.
	Start(ctx context.Context) error

	// Stop stops every contained watcher, aggregating any errors.
	Stop(ctx context.Context) error
}

type watchers struct {
	all map[string]*OverloadWatcher
}

// NewWatchers creates a Watchers from defs, one OverloadWatcher per
// definition, fetching through kv with rcfg's retry policy and applying to
// the matching ManagerBinding in bindings.
//
// defs can be nil or empty, in which case a non-nil, empty Watchers is
// returned. Every definition's Name must have a corresponding entry in
// bindings, or this function returns an error.
func NewWatchers(defs *ManagerDefinitions, bindings map[string]ManagerBinding, kv KVGetter, rcfg retry.Config, log *zap.Logger) (Watchers, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ws := &watchers{all: make(map[string]*OverloadWatcher, defs.len())}
	fetch := newSignalFetcher(kv, rcfg)

	var err error
	for def := range defs.Definitions() {
		binding, ok := bindings[def.Name]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("no ScaledManager named %q", def.Name))
			continue
		}

		ws.all[def.Name] = newOverloadWatcher(def, fetch, binding, log)
	}

	if err != nil {
		return nil, err
	}

	return ws, nil
}

func (ws *watchers) Readings() map[string]Reading {
	r := make(map[string]Reading, len(ws.all))
	for name, w := range ws.all {
		r[name] = w.Reading()
	}
	return r
}

func (ws *watchers) Len() int {
	return len(ws.all)
}

func (ws *watchers) Watchers() iter.Seq2[string, *OverloadWatcher] {
	return func(f func(string, *OverloadWatcher) bool) {
		for name, w := range ws.all {
			if !f(name, w) {
				return
			}
		}
	}
}

func (ws *watchers) Start(ctx context.Context) (err error) {
	for _, w := range ws.all {
		err = multierr.Append(err, w.Start(ctx))
	}
	return
}

func (ws *watchers) Stop(ctx context.Context) (err error) {
	for _, w := range ws.all {
		err = multierr.Append(err, w.Stop(ctx))
	}
	return
}
