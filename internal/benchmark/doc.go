// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds the benchmarks used to generate the PGO profile.
// They cover the hot paths of a request:
//   - ruleset parsing and include merging
//   - provider registry construction
//   - running the analyzers of a provider set over a compiled unit
//   - the end-to-end engine request
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
