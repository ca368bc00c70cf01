// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package envoysd

import (
	"github.com/hashicorp/consul/api"
)

// KVGetter is the low-level behavior of anything that can actually fetch a
// published overload signal. The *api.KV type implements this interface.
type KVGetter interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}
