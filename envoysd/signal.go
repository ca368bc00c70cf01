// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/xmidt-org/retry"
)

// signalFetcher retries a single Consul KV fetch-and-parse according to a
// shared retry.Config.
type signalFetcher struct {
	kv   KVGetter
	rcfg retry.Config
}

func newSignalFetcher(kv KVGetter, rcfg retry.Config) *signalFetcher {
	return &signalFetcher{kv: kv, rcfg: rcfg}
}

// fetchTask fetches key and parses its value as a decimal scale factor in
// [0,1], storing the result through out on success. A missing key or an
// unparseable value is an error for this attempt; retry.Runner still
// subjects it to the configured policy before giving up.
func (sf *signalFetcher) fetchTask(key string, out *float64) retry.Task[bool] {
	return func(ctx context.Context) (bool, error) {
		opts := (&api.QueryOptions{}).WithContext(ctx)

		pair, _, err := sf.kv.Get(key, opts)
		if err != nil {
			return false, fmt.Errorf("fetching overload signal %q: %w", key, err)
		}

		if pair == nil {
			return false, fmt.Errorf("no overload signal published at key %q", key)
		}

		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(pair.Value)), 64)
		if err != nil {
			return false, fmt.Errorf("malformed overload signal at key %q: %w", key, err)
		}

		*out = parsed
		return true, nil
	}
}

// fetch retries the fetch-and-parse of key per the fetcher's retry.Config
// and returns the parsed scale factor on success.
func (sf *signalFetcher) fetch(ctx context.Context, key string) (float64, error) {
	runner, err := retry.NewRunner(retry.WithPolicyFactory[bool](sf.rcfg))
	if err != nil {
		return 0, fmt.Errorf("building retry runner: %w", err)
	}

	var parsed float64
	if _, err := runner.Run(ctx, sf.fetchTask(key, &parsed)); err != nil {
		return 0, err
	}

	return parsed, nil
}
