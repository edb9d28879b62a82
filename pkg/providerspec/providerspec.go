// SPDX-License-Identifier: MPL-2.0

// Package providerspec classifies rule-provider reference strings, as written
// in project settings, into the kind of resolution they need.
package providerspec

import (
	"path/filepath"
	"strings"
)

// Kind is the resolution kind of a provider reference.
type Kind int

const (
	// DirectPath references a plugin file by absolute or project-relative path.
	DirectPath Kind = iota
	// BuiltinAlias references a well-known first-party provider by placeholder.
	BuiltinAlias
	// FolderRelativeAlias references a file inside the analyzer install folder.
	FolderRelativeAlias
)

// FolderAliasPrefix is the placeholder standing for the analyzer install folder.
const FolderAliasPrefix = "${analyzerFolder}"

type (
	// Alias describes one well-known provider placeholder.
	Alias struct {
		// Placeholder is the exact reference string, e.g. "${StyleCop}".
		Placeholder string
		// Name is the logical provider name.
		Name string
		// FileName is the plugin file inside the analyzer install folder.
		FileName string
	}

	// Spec is a parsed provider reference. It is never mutated after Parse.
	Spec struct {
		// Kind is the resolution kind.
		Kind Kind
		// Raw is the reference string as given (trimmed).
		Raw string
		// Name is the logical provider name; for paths it is derived from the
		// file name without extension.
		Name string
		// FileName is the target file name (alias kinds) or the raw path.
		FileName string
	}
)

// wellKnown is the fixed alias table.
var wellKnown = []Alias{
	{Placeholder: "${StyleCop}", Name: "StyleCop", FileName: "stylecop.so"},
	{Placeholder: "${VetCop}", Name: "VetCop", FileName: "vetcop.so"},
	{Placeholder: "${SecurityCop}", Name: "SecurityCop", FileName: "securitycop.so"},
	{Placeholder: "${ModernizeCop}", Name: "ModernizeCop", FileName: "modernizecop.so"},
}

// Aliases returns the well-known alias table.
func Aliases() []Alias {
	out := make([]Alias, len(wellKnown))
	copy(out, wellKnown)
	return out
}

// Parse classifies ref. It never fails: anything that is not a known alias is
// a DirectPath.
func Parse(ref string) Spec {
	ref = strings.TrimSpace(ref)

	for _, a := range wellKnown {
		if ref == a.Placeholder {
			return Spec{Kind: BuiltinAlias, Raw: ref, Name: a.Name, FileName: a.FileName}
		}
	}

	if suffix, ok := strings.CutPrefix(ref, FolderAliasPrefix); ok {
		suffix = strings.TrimLeft(suffix, `/\`)
		return Spec{Kind: FolderRelativeAlias, Raw: ref, Name: nameFromFile(suffix), FileName: suffix}
	}

	return Spec{Kind: DirectPath, Raw: ref, Name: nameFromFile(ref), FileName: ref}
}

// IsAlias reports whether the spec resolves through the analyzer folder chain.
func (s Spec) IsAlias() bool {
	return s.Kind == BuiltinAlias || s.Kind == FolderRelativeAlias
}

// Path returns the absolute path of a DirectPath spec, resolving relative
// paths against projectRoot. For alias kinds it returns the empty string.
func (s Spec) Path(projectRoot string) string {
	if s.Kind != DirectPath || s.FileName == "" {
		return ""
	}
	p := s.FileName
	if !filepath.IsAbs(p) {
		p = filepath.Join(projectRoot, p)
	}
	return filepath.Clean(p)
}

// String returns the raw reference.
func (s Spec) String() string { return s.Raw }

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case BuiltinAlias:
		return "builtin-alias"
	case FolderRelativeAlias:
		return "folder-alias"
	default:
		return "path"
	}
}

func nameFromFile(p string) string {
	base := filepath.Base(filepath.FromSlash(p))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
