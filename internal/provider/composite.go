// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"slices"

	"github.com/linthub/linthub/internal/ruleset"
)

// Composite is the per-request union of the registry and resolved libraries.
type Composite struct {
	index
	warnings []string
	actions  ruleset.ActionMap
}

var _ Set = (*Composite)(nil)

// NewComposite layers libs over reg. Libraries named like a first-party
// provider are dropped, as are repeated entries of the same library. The
// registry is not modified. A nil actions map means no ruleset applies.
func NewComposite(reg *Registry, libs []*Library, warnings []string, actions ruleset.ActionMap) *Composite {
	c := &Composite{
		index:    newIndex(),
		warnings: slices.Clone(warnings),
		actions:  actions.Clone(),
	}

	for _, lib := range reg.libs {
		c.add(lib)
	}

	seen := make(map[*Library]bool, len(libs))
	for _, lib := range libs {
		if lib == nil || seen[lib] || reg.Has(lib.Name) {
			continue
		}
		seen[lib] = true
		c.add(lib)
	}
	return c
}

func (c *Composite) Warnings() []string { return slices.Clone(c.warnings) }

func (c *Composite) Actions() ruleset.ActionMap { return c.actions.Clone() }
