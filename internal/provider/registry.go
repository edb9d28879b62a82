// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"fmt"
	"log/slog"

	"github.com/linthub/linthub/internal/providers/stylecop"
	"github.com/linthub/linthub/internal/providers/vetcop"
	"github.com/linthub/linthub/internal/ruleset"
	"github.com/linthub/linthub/pkg/ruleapi"
)

// Registry is the fixed set of first-party providers.
type Registry struct {
	index
}

var _ Set = (*Registry)(nil)

// Builtins returns the first-party manifests in load order.
func Builtins() []ruleapi.ManifestFunc {
	return []ruleapi.ManifestFunc{stylecop.Manifest, vetcop.Manifest}
}

// NewRegistry loads manifests in order. A manifest that fails to load is
// logged and left out.
func NewRegistry(logger *slog.Logger, manifests ...ruleapi.ManifestFunc) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{index: newIndex()}
	for _, fn := range manifests {
		lib, err := loadBuiltin(fn, logger)
		if err != nil {
			logger.Error("first-party provider failed to load", "error", err)
			continue
		}
		if r.Has(lib.Name) {
			logger.Warn("duplicate first-party provider ignored", "provider", lib.Name)
			continue
		}
		r.add(lib)
	}
	return r
}

func loadBuiltin(fn ruleapi.ManifestFunc, logger *slog.Logger) (lib *Library, err error) {
	defer func() {
		if r := recover(); r != nil {
			lib, err = nil, fmt.Errorf("manifest panicked: %v", r)
		}
	}()
	return FromManifest(fn(), "", logger)
}

// Has reports whether a first-party provider is named name.
func (r *Registry) Has(name string) bool {
	for _, lib := range r.libs {
		if lib.Name == name {
			return true
		}
	}
	return false
}

// Warnings is always empty for the registry.
func (r *Registry) Warnings() []string { return nil }

// Actions is always nil for the registry.
func (r *Registry) Actions() ruleset.ActionMap { return nil }
