// SPDX-License-Identifier: MPL-2.0

// Package pluginload opens third-party provider plugins.
//
// A plugin is a Go plugin binary exporting one symbol, ruleapi.ManifestSymbol,
// of type func() *ruleapi.Manifest. The Go runtime serves every package the
// host already links from the host's own copy, so ruleapi types inside the
// plugin are identical to the host's and the capability interfaces can be
// asserted directly. A plugin built against different versions of shared
// packages is refused by the runtime at open time.
package pluginload

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"plugin"

	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/pkg/ruleapi"
)

var (
	// ErrNoManifest reports a plugin without the manifest symbol.
	ErrNoManifest = errors.New("plugin does not export " + ruleapi.ManifestSymbol)

	// ErrManifestType reports a manifest symbol of the wrong type.
	ErrManifestType = errors.New(ruleapi.ManifestSymbol + " has the wrong type")
)

type (
	// Plugin is an opened plugin binary.
	Plugin interface {
		Lookup(name string) (any, error)
	}

	// Opener opens plugin binaries.
	Opener interface {
		Open(path string) (Plugin, error)
	}

	// OpenerFunc adapts a function to Opener.
	OpenerFunc func(path string) (Plugin, error)

	// Loader turns plugin binaries into provider libraries.
	Loader struct {
		opener Opener
		logger *slog.Logger
	}

	// Option configures a Loader.
	Option func(*Loader)

	stdPlugin struct {
		p *plugin.Plugin
	}
)

func (f OpenerFunc) Open(path string) (Plugin, error) { return f(path) }

// WithOpener replaces the default plugin.Open based opener.
func WithOpener(o Opener) Option {
	return func(l *Loader) { l.opener = o }
}

// WithLogger sets the logger used for skipped factories.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// StdOpener opens plugins with the standard library plugin package. Opening
// fails on platforms without plugin support.
func StdOpener() Opener {
	return OpenerFunc(func(path string) (Plugin, error) {
		p, err := plugin.Open(path)
		if err != nil {
			return nil, err
		}
		return stdPlugin{p: p}, nil
	})
}

func (s stdPlugin) Lookup(name string) (any, error) {
	sym, err := s.p.Lookup(name)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{opener: StdOpener(), logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load opens the plugin at path and instantiates its manifest. Factories that
// fail are logged and skipped; the returned library holds whatever loaded.
func (l *Loader) Load(path string) (*provider.Library, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving plugin path %s: %w", path, err)
	}

	p, err := l.opener.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("opening plugin %s: %w", abs, err)
	}

	sym, err := p.Lookup(ruleapi.ManifestSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoManifest, abs, err)
	}

	fn, err := manifestFunc(sym)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	m, err := callManifest(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	lib, err := provider.FromManifest(m, abs, l.logger)
	if err != nil {
		return nil, fmt.Errorf("loading plugin %s: %w", abs, err)
	}
	l.logger.Debug("plugin loaded", "provider", lib.Name, "path", abs,
		"analyzers", len(lib.Analyzers), "fixers", len(lib.Fixers))
	return lib, nil
}

// manifestFunc accepts both an exported function and an exported variable
// holding one; Lookup returns a pointer for the latter.
func manifestFunc(sym any) (ruleapi.ManifestFunc, error) {
	switch fn := sym.(type) {
	case func() *ruleapi.Manifest:
		return fn, nil
	case *func() *ruleapi.Manifest:
		if fn == nil || *fn == nil {
			return nil, ErrManifestType
		}
		return *fn, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrManifestType, sym)
	}
}

func callManifest(fn ruleapi.ManifestFunc) (m *ruleapi.Manifest, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("manifest panicked: %v", r)
		}
	}()
	return fn(), nil
}
