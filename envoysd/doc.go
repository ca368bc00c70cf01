// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package envoysd provides the overload-signal domain stack: a Consul
KV-backed OverloadWatcher per named timer domain, polling a published load
scalar and feeding it into that domain's envoy.ScaledManager. The envoy
package, at the root of this module, provides the scheduling core that this
package drives and depends on. That package also provides a way of
bootstrapping a consul client, but using it is optional: the *api.KV this
package needs can be built by other means.
*/
package envoysd
