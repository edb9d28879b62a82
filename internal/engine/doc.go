// SPDX-License-Identifier: MPL-2.0

// Package engine is the resolution context behind every linthub request.
//
// An Engine is built once at startup and closed at shutdown. It owns the
// first-party provider registry, the plugin library cache and the merged
// ruleset cache. Each request prepares a Session: the project's settings are
// read, provider references are resolved concurrently, the ruleset is
// discovered and merged, and the result is layered over the registry as a
// provider.Composite. Analyze, GetFixes and ApplyFix then run against a
// compiled unit loaded for the request.
package engine
