// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"slices"

	"github.com/linthub/linthub/internal/ruleset"
	"github.com/linthub/linthub/pkg/ruleapi"
)

type (
	// Set is the capability shared by the Registry and a Composite.
	Set interface {
		Libraries() []*Library
		Analyzers() []ruleapi.Analyzer
		Fixers() []ruleapi.Fixer
		FixersFor(id string) []ruleapi.Fixer
		Descriptor(id string) (ruleapi.Descriptor, bool)
		ProviderOf(id string) (string, bool)
		HasFix(id string) bool
		// Warnings lists resolution problems met while building the set.
		Warnings() []string
		// Actions returns the ruleset overrides; nil when no ruleset applies.
		Actions() ruleset.ActionMap
	}

	// index is the merged view of a list of libraries.
	index struct {
		libs        []*Library
		analyzers   []ruleapi.Analyzer
		fixers      []ruleapi.Fixer
		descriptors map[string]ruleapi.Descriptor
		providers   map[string]string
		fixersByID  map[string][]ruleapi.Fixer
	}
)

func newIndex() index {
	return index{
		descriptors: make(map[string]ruleapi.Descriptor),
		providers:   make(map[string]string),
		fixersByID:  make(map[string][]ruleapi.Fixer),
	}
}

// add appends lib. Descriptor and provider entries are first-write-wins.
func (x *index) add(lib *Library) {
	x.libs = append(x.libs, lib)
	x.analyzers = append(x.analyzers, lib.Analyzers...)
	x.fixers = append(x.fixers, lib.Fixers...)

	for _, a := range lib.Analyzers {
		for _, d := range a.SupportedRules() {
			if _, ok := x.descriptors[d.ID]; ok || d.ID == "" {
				continue
			}
			x.descriptors[d.ID] = lib.Descriptors[d.ID]
			x.providers[d.ID] = lib.Name
		}
	}

	for _, f := range lib.Fixers {
		for _, id := range f.FixableRuleIDs() {
			if id == "" {
				continue
			}
			x.fixersByID[id] = append(x.fixersByID[id], f)
		}
	}
}

func (x *index) Libraries() []*Library { return slices.Clone(x.libs) }

func (x *index) Analyzers() []ruleapi.Analyzer { return slices.Clone(x.analyzers) }

func (x *index) Fixers() []ruleapi.Fixer { return slices.Clone(x.fixers) }

func (x *index) FixersFor(id string) []ruleapi.Fixer { return slices.Clone(x.fixersByID[id]) }

func (x *index) Descriptor(id string) (ruleapi.Descriptor, bool) {
	d, ok := x.descriptors[id]
	return d, ok
}

func (x *index) ProviderOf(id string) (string, bool) {
	name, ok := x.providers[id]
	return name, ok
}

func (x *index) HasFix(id string) bool { return len(x.fixersByID[id]) > 0 }
