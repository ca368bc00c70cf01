// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akonradi/envoy"
)

// pollTimerFactory is a factory for creating timers; useful to replace in
// unit tests.
type pollTimerFactory func(time.Duration) (<-chan time.Time, func() bool)

func defaultPollTimerFactory(d time.Duration) (<-chan time.Time, func() bool) {
	t := time.NewTimer(d)
	return t.C, t.Stop
}

// Submitter marshals a function onto a dispatcher's own goroutine, the same
// goroutine its bound ScaledManager is driven from. *envoy.RunLoopDispatcher
// and eventtest.Dispatcher both implement it. OverloadWatcher uses it so its
// own background polling goroutine never calls into a ScaledManager
// directly, preserving the manager's single-threaded, lock-free discipline.
type Submitter interface {
	Submit(fn func())
}

// ManagerBinding pairs a named ScaledManager with the Submitter for the
// dispatcher that drives it.
type ManagerBinding struct {
	Manager    *envoy.ScaledManager
	Dispatcher Submitter
}

// OverloadWatcher polls a single Consul KV key on an interval and feeds the
// parsed value into a bound *envoy.ScaledManager's SetScaleFactor, via that
// manager's own dispatcher. One OverloadWatcher exists per ManagerDefinition.
type OverloadWatcher struct {
	def     ManagerDefinition
	fetch   *signalFetcher
	binding ManagerBinding
	log     *zap.Logger

	newTimer pollTimerFactory

	lock    sync.Mutex
	reading Reading

	cancel context.CancelFunc
	done   chan struct{}
}

// newOverloadWatcher creates a watcher for def, fetching values with fetch
// and applying them to binding's manager through binding's dispatcher.
func newOverloadWatcher(def ManagerDefinition, fetch *signalFetcher, binding ManagerBinding, log *zap.Logger) *OverloadWatcher {
	return &OverloadWatcher{
		def:      def,
		fetch:    fetch,
		binding:  binding,
		log:      log.With(zap.String("manager", def.Name)),
		newTimer: defaultPollTimerFactory,
		reading:  Reading{Name: def.Name, ScaleFactor: 1, Severity: Normal},
	}
}

// Reading returns the most recently applied overload signal for this
// watcher.
func (w *OverloadWatcher) Reading() Reading {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.reading
}

// Start launches the polling loop in a background goroutine and returns
// immediately. It is bound to fx.Lifecycle by Watchers.
func (w *OverloadWatcher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx)
	return nil
}

// Stop signals the polling loop to exit and waits for it to do so.
func (w *OverloadWatcher) Stop(ctx context.Context) error {
	w.cancel()

	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// run polls the configured key on the configured interval until ctx is
// canceled. A fetch failure is logged and does not change the manager's
// scale factor; the loop simply tries again on the next interval.
func (w *OverloadWatcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		scaleFactor, err := w.fetch.fetch(ctx, w.def.Key)
		switch {
		case ctx.Err() != nil:
			return

		case err != nil:
			w.log.Warn("failed to fetch overload signal, leaving scale factor unchanged", zap.Error(err))

		default:
			w.apply(scaleFactor)
		}

		ch, stop := w.newTimer(w.def.pollInterval())
		select {
		case <-ctx.Done():
			stop()
			return

		case <-ch:
			// continue polling
		}
	}
}

// apply submits the scale factor change to the bound manager's own
// dispatcher goroutine rather than calling SetScaleFactor directly from this
// watcher's polling goroutine.
func (w *OverloadWatcher) apply(scaleFactor float64) {
	w.binding.Dispatcher.Submit(func() {
		w.binding.Manager.SetScaleFactor(scaleFactor)
		applied := w.binding.Manager.ScaleFactor().Value()

		w.lock.Lock()
		w.reading = Reading{
			Name:        w.def.Name,
			ScaleFactor: applied,
			Severity:    classifySeverity(applied),
			ObservedAt:  time.Now(),
		}
		w.lock.Unlock()
	})

	w.log.Debug("applied overload signal", zap.Float64("scaleFactor", scaleFactor))
}
