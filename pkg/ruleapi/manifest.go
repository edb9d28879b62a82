// SPDX-License-Identifier: MPL-2.0

package ruleapi

import "errors"

// APIVersion is the version of this contract. Hosts refuse manifests built
// against a different version.
const APIVersion = 1

// ManifestSymbol is the name of the only symbol a plugin binary exports. Its
// type must be func() *Manifest.
const ManifestSymbol = "LinthubManifest"

// ErrNilInstance reports a factory that constructed a nil analyzer or fixer.
var ErrNilInstance = errors.New("factory returned a nil instance")

type (
	// AnalyzerFactory is a named no-argument analyzer constructor.
	AnalyzerFactory struct {
		Name string
		New  func() (Analyzer, error)
	}

	// FixerFactory is a named no-argument fixer constructor.
	FixerFactory struct {
		Name string
		New  func() (Fixer, error)
	}

	// Manifest is the fixed-shape description a provider exposes.
	Manifest struct {
		// APIVersion must equal the host's APIVersion.
		APIVersion int
		// Name is the logical provider name attributed to every rule the
		// provider declares.
		Name string
		// Analyzers are constructed in order.
		Analyzers []AnalyzerFactory
		// Fixers are constructed in order.
		Fixers []FixerFactory
	}

	// ManifestFunc is the type of the ManifestSymbol export.
	ManifestFunc = func() *Manifest
)

// AnalyzerOf wraps an already constructed analyzer in a factory.
func AnalyzerOf(name string, a Analyzer) AnalyzerFactory {
	return AnalyzerFactory{Name: name, New: func() (Analyzer, error) { return a, nil }}
}

// FixerOf wraps an already constructed fixer in a factory.
func FixerOf(name string, f Fixer) FixerFactory {
	return FixerFactory{Name: name, New: func() (Fixer, error) { return f, nil }}
}
