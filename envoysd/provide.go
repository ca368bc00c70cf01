// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"github.com/hashicorp/consul/api"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newKVGetter(kv *api.KV) KVGetter { return kv }

// provideKV requires a consul *api.KV and produces the KVGetter interface.
// A client can further decorate this component via fx.Decorate.
func provideKV() fx.Option {
	return fx.Provide(newKVGetter)
}

type watchersIn struct {
	fx.In

	Config    Config
	Bindings  map[string]ManagerBinding `optional:"true"`
	KVGetter  KVGetter
	Log       *zap.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// newWatchers is the internal constructor for a Watchers component based on
// fx.App dependencies.
func newWatchers(in watchersIn) (Watchers, error) {
	defs, err := in.Config.buildDefinitions()
	if err != nil {
		return nil, err
	}

	ws, err := NewWatchers(defs, in.Bindings, in.KVGetter, in.Config.Retry, in.Log)
	if err != nil {
		return nil, err
	}

	in.Lifecycle.Append(fx.StartStopHook(ws.Start, ws.Stop))
	return ws, nil
}

// Provide creates the overload-signal components required to poll Consul
// KV keys and drive each named ScaledManager's scale factor.
//
// A Config must be present in the enclosing application, along with a
// map[string]ManagerBinding keyed by ManagerDefinition name for every
// manager referenced in Config.Managers. A consul *api.KV must also be
// present; this can be built with this module's root Provide or by other
// means.
func Provide() fx.Option {
	return fx.Options(
		provideKV(),
		fx.Provide(
			newWatchers,
		),
		fx.Invoke(
			func(Watchers) {},
		),
	)
}
