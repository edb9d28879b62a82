// SPDX-License-Identifier: MPL-2.0

// Package ruleapi is the capability contract shared by the linthub host and
// every rule provider, first-party or plugin.
//
// A provider contributes rule analyzers and fixers through a Manifest. Plugin
// binaries (built with -buildmode=plugin) export a single symbol named
// ManifestSymbol of type func() *Manifest; the host never inspects any other
// exported symbol. Because host and plugin link the same copy of this package,
// capability checks are plain interface assertions.
//
// Rule ids travel on analysis.Diagnostic.Category. Analyzers that declare a
// single rule can leave Category empty and let NewAnalyzer stamp it.
package ruleapi
