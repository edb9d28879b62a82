// SPDX-License-Identifier: MPL-2.0

// Package provider holds loaded rule providers and the sets analysis runs
// against.
//
// A Library is one loaded provider. The Registry is the process-wide set of
// first-party libraries, built once at startup. A Composite layers the
// libraries resolved for one request, plus that request's warnings and
// ruleset actions, on top of the Registry without mutating it. Both satisfy
// Set. On rule id collisions the first library added wins, and first-party
// libraries are always added first.
package provider
