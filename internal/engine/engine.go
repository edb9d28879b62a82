// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/linthub/linthub/internal/config"
	"github.com/linthub/linthub/internal/libresolve"
	"github.com/linthub/linthub/internal/libresolve/download"
	"github.com/linthub/linthub/internal/pluginload"
	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/internal/ruleset"
	"github.com/linthub/linthub/internal/settings"
	"github.com/linthub/linthub/internal/workspace"
	"github.com/linthub/linthub/pkg/providerspec"
	"github.com/linthub/linthub/pkg/ruleapi"
)

// resolveLimit bounds concurrent provider resolutions per request.
const resolveLimit = 4

// ErrClosed is returned by every call made after Close.
var ErrClosed = errors.New("engine is closed")

type (
	// Options configures an Engine. Zero values select the defaults derived
	// from Config.
	Options struct {
		Config *config.Config
		Logger *slog.Logger
		// Builtins overrides the first-party manifests.
		Builtins []ruleapi.ManifestFunc
		// Workspace loads compiled units.
		Workspace workspace.Loader
		// Plugins loads plugin files.
		Plugins libresolve.Loader
		// Installer performs the analyzer bundle download.
		Installer libresolve.Installer
		// HTTPClient is used for release downloads and remote rulesets.
		HTTPClient *http.Client
		// UserAgent identifies linthub to GitHub.
		UserAgent string
		// Getenv replaces os.Getenv for location overrides.
		Getenv func(string) string
		// NoDotEnv skips loading the project .env file.
		NoDotEnv bool
	}

	// Engine owns the process-wide caches. It is safe for concurrent use.
	Engine struct {
		registry  *provider.Registry
		resolver  *libresolve.Resolver
		rulesets  *ruleset.Loader
		workspace workspace.Loader
		logger    *slog.Logger
		noDotEnv  bool
		closed    atomic.Bool
	}

	// Request names the project a call works on.
	Request struct {
		// Dir is the project directory.
		Dir string
		// Analyzers are provider references added to the editor settings ones.
		Analyzers []string
	}

	// Session is the prepared state of one request.
	Session struct {
		ID      string
		Project *settings.Project
		Set     *provider.Composite
		// Ruleset is the merged top-level ruleset, or "" when none applies.
		Ruleset string
		Logger  *slog.Logger
	}
)

// New builds an Engine. The registry loads eagerly.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	builtins := opts.Builtins
	if builtins == nil {
		builtins = provider.Builtins()
	}

	cacheDir := cfg.Analyzers.CacheDir
	if cacheDir == "" {
		base, err := config.DefaultCacheDir()
		if err != nil {
			logger.Warn("no user cache directory; analyzer download disabled", "error", err)
		} else {
			cacheDir = filepath.Join(base, "analyzers")
		}
	}

	installer := opts.Installer
	if installer == nil && cfg.Analyzers.Download.Enabled && cacheDir != "" {
		clientOpts := []download.ClientOption{
			download.WithHTTPClient(httpClient),
			download.WithBaseURL(cfg.Analyzers.Download.BaseURL),
			download.WithRepo(cfg.Analyzers.Download.Owner, cfg.Analyzers.Download.Repo),
			download.WithToken(os.Getenv("GITHUB_TOKEN")),
		}
		if opts.UserAgent != "" {
			clientOpts = append(clientOpts, download.WithUserAgent(opts.UserAgent))
		}
		installer = download.NewInstaller(download.NewClient(clientOpts...), cacheDir, download.WithLogger(logger))
	}

	plugins := opts.Plugins
	if plugins == nil {
		plugins = pluginload.New(pluginload.WithLogger(logger))
	}

	resolver, err := libresolve.New(plugins, libresolve.Options{
		InstallDir: cfg.Analyzers.InstallDir,
		CacheDir:   cacheDir,
		Installer:  installer,
		CacheSize:  cfg.Cache.Libraries,
		Getenv:     opts.Getenv,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	rulesets, err := ruleset.NewLoader(
		ruleset.WithHTTPClient(httpClient),
		ruleset.WithFetchTimeout(cfg.Rulesets.FetchTimeout),
		ruleset.WithCacheSize(cfg.Cache.Rulesets),
		ruleset.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	ws := opts.Workspace
	if ws == nil {
		ws = &workspace.PackagesLoader{Logger: logger}
	}

	return &Engine{
		registry:  provider.NewRegistry(logger, builtins...),
		resolver:  resolver,
		rulesets:  rulesets,
		workspace: ws,
		logger:    logger,
		noDotEnv:  opts.NoDotEnv,
	}, nil
}

// Registry returns the first-party providers.
func (e *Engine) Registry() *provider.Registry { return e.registry }

// Resolver returns the plugin library resolver.
func (e *Engine) Resolver() *libresolve.Resolver { return e.resolver }

// Close drops the caches. Calls made afterwards fail with ErrClosed.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	e.resolver.Purge()
	e.rulesets.Purge()
	return nil
}

// Refresh drops the cached rulesets so edited ruleset files are read again.
// Loaded plugin libraries stay cached.
func (e *Engine) Refresh() {
	e.rulesets.Purge()
}

// Prepare resolves the providers and ruleset that apply to req.Dir.
// Resolution problems become warnings on the session's provider set.
func (e *Engine) Prepare(ctx context.Context, req Request) (*Session, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	logger := e.logger.With("request", id)

	dir := req.Dir
	if dir == "" {
		dir = "."
	}
	proj, err := settings.Load(dir, logger)
	if err != nil {
		return nil, err
	}
	warnings := append([]string(nil), proj.Warnings...)

	var env map[string]string
	if !e.noDotEnv {
		if env, err = settings.ReadEnv(proj.Dir); err != nil {
			logger.Warn("ignoring .env", "error", err)
			warnings = append(warnings, err.Error())
		}
	}

	refs := append(append([]string(nil), proj.Editor.Analyzers...), req.Analyzers...)
	libs, resolveWarnings := e.resolveAll(ctx, refs, proj.Dir, env, logger)
	warnings = append(warnings, resolveWarnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		actions ruleset.ActionMap
		top     string
	)
	if ref, ok := ruleset.Discover(proj); ok {
		res := e.rulesets.Load(ctx, ref, proj.CI.EnableExternalRulesets)
		top, actions = res.Path, res.Actions
		warnings = append(warnings, res.Warnings...)
		logger.Debug("ruleset merged", "path", top, "rules", len(actions))
	}

	return &Session{
		ID:      id,
		Project: proj,
		Set:     provider.NewComposite(e.registry, libs, warnings, actions),
		Ruleset: top,
		Logger:  logger,
	}, nil
}

// resolveAll resolves refs concurrently, with env layered under the process
// environment, and returns the libraries in ref order. References to first-party providers and repeated references are
// skipped.
func (e *Engine) resolveAll(ctx context.Context, refs []string, root string, env map[string]string, logger *slog.Logger) ([]*provider.Library, []string) {
	var specs []providerspec.Spec
	seen := make(map[string]bool)
	for _, ref := range refs {
		spec := providerspec.Parse(ref)
		if spec.Raw == "" || seen[spec.Raw] {
			continue
		}
		seen[spec.Raw] = true
		if spec.Kind == providerspec.BuiltinAlias && e.registry.Has(spec.Name) {
			logger.Debug("provider is built in", "ref", spec.Raw)
			continue
		}
		specs = append(specs, spec)
	}

	libs := make([]*provider.Library, len(specs))
	errs := make([]error, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i, spec := range specs {
		g.Go(func() error {
			libs[i], errs[i] = e.resolver.Resolve(gctx, spec, root, libresolve.WithEnv(env))
			return nil
		})
	}
	_ = g.Wait()

	var (
		out      []*provider.Library
		warnings []string
	)
	for i, spec := range specs {
		if errs[i] != nil {
			logger.Warn("provider not loaded", "ref", spec.Raw, "error", errs[i])
			warnings = append(warnings, fmt.Sprintf("provider %s: %v", spec.Raw, errs[i]))
			continue
		}
		out = append(out, libs[i])
	}
	return out, warnings
}
